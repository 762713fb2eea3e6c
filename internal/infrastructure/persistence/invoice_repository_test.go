package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds existing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		propertyID := uuid.New()
		companyID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "property_id", "invoice_number", "company_id", "company_name", "subtotal", "tax", "balance", "currency", "status"}).
			AddRow(invoiceID, 1, propertyID, "INV-1001", companyID, "Acme Travel", decimal.RequireFromString("450"), decimal.RequireFromString("50"), decimal.RequireFromString("500"), "USD", "open")

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(property_id = \$1 AND id = \$2\) AND "invoices"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(propertyID, invoiceID, 1).
			WillReturnRows(rows)

		invoice, err := repo.FindByID(context.Background(), propertyID, invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, invoice)
		assert.Equal(t, invoiceID, invoice.ID)
		assert.Equal(t, "INV-1001", invoice.InvoiceNumber)
		assert.Equal(t, ledger.InvoiceStatusOpen, invoice.Status)
		assert.True(t, invoice.Balance.Amount().Equal(decimal.RequireFromString("500")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		propertyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE .*`).
			WithArgs(propertyID, invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByID(context.Background(), propertyID, invoiceID)

		assert.NoError(t, err)
		assert.Nil(t, invoice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_ExistsByNumber(t *testing.T) {
	t.Run("reports taken number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		propertyID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE \(property_id = \$1 AND invoice_number = \$2\) AND "invoices"\."deleted_at" IS NULL`).
			WithArgs(propertyID, "INV-1001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByNumber(context.Background(), propertyID, "INV-1001")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	newLockedInvoice := func(t *testing.T) *ledger.Invoice {
		t.Helper()
		invoice, err := ledger.NewInvoice(
			uuid.New(), "INV-1001", uuid.New(), "Acme Travel",
			valueobject.NewMoneyUSDFromFloat(450), valueobject.NewMoneyUSDFromFloat(50),
			mustDate("2026-01-10"), mustDate("2026-02-10"),
			mustDate("2026-01-05"), mustDate("2026-01-08"),
			valueobject.NewMoneyUSDFromFloat(150),
		)
		require.NoError(t, err)
		invoice.IncrementVersion()
		return invoice
	}

	t.Run("stale version returns conflict", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newLockedInvoice(t)

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE \(id = \$\d+ AND version = \$\d+\) AND "invoices"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), invoice)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("matching version updates", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newLockedInvoice(t)

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE \(id = \$\d+ AND version = \$\d+\) AND "invoices"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SoftDelete(t *testing.T) {
	newStoredInvoice := func(t *testing.T) *ledger.Invoice {
		t.Helper()
		invoice, err := ledger.NewInvoice(
			uuid.New(), "INV-1001", uuid.New(), "Acme Travel",
			valueobject.NewMoneyUSDFromFloat(450), valueobject.NewMoneyUSDFromFloat(50),
			mustDate("2026-01-10"), mustDate("2026-02-10"),
			mustDate("2026-01-05"), mustDate("2026-01-08"),
			valueobject.NewMoneyUSDFromFloat(150),
		)
		require.NoError(t, err)
		return invoice
	}

	t.Run("tombstone is version guarded", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newStoredInvoice(t)

		mock.ExpectExec(`UPDATE "invoices" SET "deleted_at"=.* WHERE \(property_id = \$\d+ AND id = \$\d+ AND version = \$\d+\) AND "invoices"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SoftDelete(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version returns conflict", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newStoredInvoice(t)

		mock.ExpectExec(`UPDATE "invoices" SET "deleted_at"=.* WHERE \(property_id = \$\d+ AND id = \$\d+ AND version = \$\d+\) AND "invoices"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SoftDelete(context.Background(), invoice)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
