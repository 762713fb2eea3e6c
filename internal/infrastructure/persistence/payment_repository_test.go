package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

func TestGormPaymentRepository_Delete(t *testing.T) {
	newStoredPayment := func(t *testing.T) *ledger.Payment {
		t.Helper()
		payment, err := ledger.NewPayment(
			uuid.New(), valueobject.NewMoneyUSDFromFloat(800),
			ledger.PaymentMethodCheck, "CHK-2001", mustDate("2026-01-12"),
		)
		require.NoError(t, err)
		return payment
	}

	t.Run("tombstone is version guarded", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRepository(gormDB)

		payment := newStoredPayment(t)

		mock.ExpectExec(`UPDATE "payments" SET "deleted_at"=.* WHERE \(property_id = \$\d+ AND id = \$\d+ AND version = \$\d+\) AND "payments"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), payment)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version returns conflict", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRepository(gormDB)

		payment := newStoredPayment(t)

		mock.ExpectExec(`UPDATE "payments" SET "deleted_at"=.* WHERE \(property_id = \$\d+ AND id = \$\d+ AND version = \$\d+\) AND "payments"\."deleted_at" IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), payment)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
