package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// ReconciliationService covers the correction workflows: adjusting an
// invoice total after the fact and voiding an invoice, plus the guarded
// payment delete. Each operation mutates and audits atomically.
type ReconciliationService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(txScope TransactionScope, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		txScope: txScope,
		logger:  logger,
	}
}

// UpdateTotal adjusts an invoice's total. Existing allocations stay
// untouched; when the new total drops below the paid-to-date sum the
// balance clamps at zero and the invoice reads paid, which is accepted
// rather than rejected since correcting a quoted total after payment is a
// normal back-office case.
func (s *ReconciliationService) UpdateTotal(
	ctx context.Context,
	scope ledger.AccessScope,
	invoiceID uuid.UUID,
	newTotal decimal.Decimal,
) (*ReconciliationResult, error) {
	if err := scope.RequireInvoice(invoiceID); err != nil {
		return nil, err
	}

	var result *ReconciliationResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, scope.PropertyID, invoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", "Invoice not found")
			}

			oldTotal := invoice.Total()
			if err := invoice.ChangeTotal(valueobject.NewMoneyUSD(newTotal)); err != nil {
				return err
			}

			paidToDate, err := repos.AllocationRepo().SumByInvoice(ctx, scope.PropertyID, invoice.ID)
			if err != nil {
				return err
			}
			oldStatus := invoice.Status
			statusChanged := invoice.Recompute(paidToDate)

			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}

			totalEvent, err := ledger.NewAuditEvent(scope.PropertyID, invoice.ID, ledger.AuditActionUpdateTotal, ledger.AuditDetails{
				"old_total": oldTotal.StringFixed(2),
				"new_total": invoice.Total().StringFixed(2),
			}, scope.ActorID)
			if err != nil {
				return err
			}
			if err := repos.AuditRepo().Append(ctx, totalEvent); err != nil {
				return err
			}

			if statusChanged {
				statusEvent, err := ledger.NewAuditEvent(scope.PropertyID, invoice.ID, ledger.AuditActionStatusChange, ledger.AuditDetails{
					"from": oldStatus.String(),
					"to":   invoice.Status.String(),
				}, scope.ActorID)
				if err != nil {
					return err
				}
				if err := repos.AuditRepo().Append(ctx, statusEvent); err != nil {
					return err
				}
			}

			result = &ReconciliationResult{
				InvoiceID: invoice.ID,
				Balance:   invoice.Balance.Amount(),
				Status:    invoice.Status.String(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice total updated",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("actor_id", scope.ActorID.String()),
		zap.String("new_total", newTotal.StringFixed(2)))

	return result, nil
}

// VoidInvoice voids an invoice: all of its allocations are removed (the
// parent payments keep their amounts and may be re-allocated elsewhere),
// monetary fields zero out and status becomes void. Irreversible.
func (s *ReconciliationService) VoidInvoice(
	ctx context.Context,
	scope ledger.AccessScope,
	invoiceID uuid.UUID,
	reason string,
) (*ReconciliationResult, error) {
	if err := scope.RequireInvoice(invoiceID); err != nil {
		return nil, err
	}

	var result *ReconciliationResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, scope.PropertyID, invoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", "Invoice not found")
			}

			removed, err := repos.AllocationRepo().SoftDeleteByInvoice(ctx, scope.PropertyID, invoice.ID)
			if err != nil {
				return err
			}

			if err := invoice.Void(reason); err != nil {
				return err
			}
			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}

			details := ledger.AuditDetails{
				"allocations_removed": removed,
			}
			if reason != "" {
				details["note"] = reason
			}
			voidEvent, err := ledger.NewAuditEvent(scope.PropertyID, invoice.ID, ledger.AuditActionVoidInvoice, details, scope.ActorID)
			if err != nil {
				return err
			}
			if err := repos.AuditRepo().Append(ctx, voidEvent); err != nil {
				return err
			}

			result = &ReconciliationResult{
				InvoiceID: invoice.ID,
				Balance:   invoice.Balance.Amount(),
				Status:    invoice.Status.String(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice voided",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("actor_id", scope.ActorID.String()))

	return result, nil
}

// DeletePayment tombstones a payment. The caller must have removed every
// allocation of the payment first; a payment with live allocations rejects
// with HAS_ALLOCATIONS instead of cascading, so no invoice balance is ever
// orphaned by a silent cascade.
func (s *ReconciliationService) DeletePayment(
	ctx context.Context,
	scope ledger.AccessScope,
	paymentID uuid.UUID,
) error {
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payment, err := repos.PaymentRepo().FindByID(ctx, scope.PropertyID, paymentID)
			if err != nil {
				return err
			}
			if payment == nil {
				return shared.NewDomainError("NOT_FOUND", "Payment not found")
			}

			count, err := repos.AllocationRepo().CountByPayment(ctx, scope.PropertyID, paymentID)
			if err != nil {
				return err
			}
			if count > 0 {
				return ledger.ErrPaymentHasAllocations
			}

			// Version-guarded tombstone: an allocation applied between
			// the count above and the delete bumps the payment version
			// and turns this into a conflict instead of an orphan.
			return repos.PaymentRepo().Delete(ctx, payment)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("actor_id", scope.ActorID.String()))

	return nil
}
