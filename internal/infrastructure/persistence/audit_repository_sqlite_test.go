package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/infrastructure/persistence/models"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InvoiceAuditModel{})
	require.NoError(t, err)

	return db
}

func appendEvent(t *testing.T, repo *GormAuditRepository, propertyID, invoiceID uuid.UUID, action ledger.AuditAction) *ledger.AuditEvent {
	t.Helper()
	event, err := ledger.NewAuditEvent(propertyID, invoiceID, action, ledger.AuditDetails{"source": "test"}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), event))
	return event
}

func TestGormAuditRepository_FindByInvoice(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	propertyID := uuid.New()
	invoiceID := uuid.New()

	t.Run("returns events newest first", func(t *testing.T) {
		first := appendEvent(t, repo, propertyID, invoiceID, ledger.AuditActionCreateInvoice)
		// sqlite timestamps need a nudge to differ
		time.Sleep(5 * time.Millisecond)
		second := appendEvent(t, repo, propertyID, invoiceID, ledger.AuditActionPaymentApplied)

		events, err := repo.FindByInvoice(ctx, propertyID, invoiceID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, second.ID, events[0].ID)
		assert.Equal(t, first.ID, events[1].ID)
	})

	t.Run("scopes by property", func(t *testing.T) {
		events, err := repo.FindByInvoice(ctx, uuid.New(), invoiceID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("round-trips detail payload", func(t *testing.T) {
		otherInvoice := uuid.New()
		event, err := ledger.NewAuditEvent(propertyID, otherInvoice, ledger.AuditActionUpdateTotal,
			ledger.AuditDetails{"old_total": "100.00", "new_total": "150.00"}, uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, event))

		events, err := repo.FindByInvoice(ctx, propertyID, otherInvoice)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "150.00", events[0].Details["new_total"])
	})
}

func TestGormAuditRepository_CountByAction(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	propertyID := uuid.New()
	invoiceID := uuid.New()

	appendEvent(t, repo, propertyID, invoiceID, ledger.AuditActionCreateInvoice)
	appendEvent(t, repo, propertyID, invoiceID, ledger.AuditActionPaymentApplied)
	appendEvent(t, repo, propertyID, invoiceID, ledger.AuditActionPaymentApplied)
	appendEvent(t, repo, uuid.New(), invoiceID, ledger.AuditActionVoidInvoice)

	counts, err := repo.CountByAction(ctx, propertyID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts[ledger.AuditActionCreateInvoice])
	assert.Equal(t, int64(2), counts[ledger.AuditActionPaymentApplied])
	_, hasVoid := counts[ledger.AuditActionVoidInvoice]
	assert.False(t, hasVoid, "events of other properties must not be counted")
}
