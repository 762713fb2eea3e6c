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

// AllocationTarget names one invoice and the amount of the payment to apply
// to it
type AllocationTarget struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// AllocationService distributes payments across invoices and keeps each
// touched invoice's balance and status consistent with its allocation rows.
// All mutations run in a single transaction with optimistic locking on the
// payment and every touched invoice; a lock conflict is retried once.
type AllocationService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(txScope TransactionScope, logger *zap.Logger) *AllocationService {
	return &AllocationService{
		txScope: txScope,
		logger:  logger,
	}
}

// ApplyPayment applies a payment to one or more invoices. Either every
// target succeeds or none are persisted. Each target is checked against the
// invoice-side invariant (allocated sum never exceeds invoice total) and the
// whole batch against the payment-side invariant (allocated sum never
// exceeds payment amount); violations reject with OVER_ALLOCATION naming
// the exact overshoot.
func (s *AllocationService) ApplyPayment(
	ctx context.Context,
	scope ledger.AccessScope,
	paymentID uuid.UUID,
	targets []AllocationTarget,
) ([]InvoiceAllocationResult, error) {
	if len(targets) == 0 {
		return nil, shared.NewDomainError("INVALID_TARGETS", "At least one allocation target is required")
	}
	for _, target := range targets {
		if target.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
		}
		if err := scope.RequireInvoice(target.InvoiceID); err != nil {
			return nil, err
		}
	}

	var results []InvoiceAllocationResult
	err := withConflictRetry(func() error {
		var attemptErr error
		results, attemptErr = s.applyOnce(ctx, scope, paymentID, targets)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.String("payment_id", paymentID.String()),
		zap.String("actor_id", scope.ActorID.String()),
		zap.Int("targets", len(targets)))

	return results, nil
}

func (s *AllocationService) applyOnce(
	ctx context.Context,
	scope ledger.AccessScope,
	paymentID uuid.UUID,
	targets []AllocationTarget,
) ([]InvoiceAllocationResult, error) {
	results := make([]InvoiceAllocationResult, 0, len(targets))

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, scope.PropertyID, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}

		allocated, err := repos.AllocationRepo().SumByPayment(ctx, scope.PropertyID, paymentID)
		if err != nil {
			return err
		}

		batchTotal := valueobject.ZeroUSD()
		for _, target := range targets {
			batchTotal = batchTotal.MustAdd(valueobject.NewMoneyUSD(target.Amount))
		}
		afterBatch := allocated.MustAdd(batchTotal)
		if afterBatch.Amount().GreaterThan(payment.Amount.Amount()) {
			excess := afterBatch.MustSubtract(payment.Amount)
			return ledger.NewPaymentOverAllocationError(excess)
		}

		for _, target := range targets {
			if err := s.applyTarget(ctx, repos, scope, payment, target, &results); err != nil {
				return err
			}
		}

		// Bumping the payment version inside the same transaction makes
		// concurrent allocations against this payment conflict instead of
		// both passing the sum check against a stale snapshot.
		payment.IncrementVersion()
		return repos.PaymentRepo().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (s *AllocationService) applyTarget(
	ctx context.Context,
	repos TransactionalRepositories,
	scope ledger.AccessScope,
	payment *ledger.Payment,
	target AllocationTarget,
	results *[]InvoiceAllocationResult,
) error {
	invoice, err := repos.InvoiceRepo().FindByID(ctx, scope.PropertyID, target.InvoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	if invoice.IsVoid() {
		return ledger.NewVoidInvoiceError(invoice.InvoiceNumber)
	}

	amount := valueobject.NewMoneyUSD(target.Amount)

	paidToDate, err := repos.AllocationRepo().SumByInvoice(ctx, scope.PropertyID, invoice.ID)
	if err != nil {
		return err
	}
	afterApply := paidToDate.MustAdd(amount)
	if afterApply.Amount().GreaterThan(invoice.Total().Amount()) {
		excess := afterApply.MustSubtract(invoice.Total())
		return ledger.NewInvoiceOverAllocationError(excess)
	}

	allocation, err := ledger.NewAllocation(scope.PropertyID, payment.ID, invoice.ID, amount)
	if err != nil {
		return err
	}
	if err := repos.AllocationRepo().Create(ctx, allocation); err != nil {
		return err
	}

	oldStatus := invoice.Status
	statusChanged := invoice.Recompute(afterApply)
	invoice.IncrementVersion()
	if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
		return err
	}

	appliedEvent, err := ledger.NewAuditEvent(scope.PropertyID, invoice.ID, ledger.AuditActionPaymentApplied, ledger.AuditDetails{
		"payment_id":  payment.ID.String(),
		"amount":      amount.StringFixed(2),
		"new_balance": invoice.Balance.StringFixed(2),
		"new_status":  invoice.Status.String(),
	}, scope.ActorID)
	if err != nil {
		return err
	}
	if err := repos.AuditRepo().Append(ctx, appliedEvent); err != nil {
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

	*results = append(*results, InvoiceAllocationResult{
		InvoiceID:  invoice.ID,
		NewBalance: invoice.Balance.Amount(),
		NewStatus:  invoice.Status.String(),
	})

	return nil
}

// RemoveAllocation deletes one allocation and recomputes the owning
// invoice's balance and status. No audit event is written for manual
// reallocation; the recompute is visible through the invoice itself.
func (s *AllocationService) RemoveAllocation(
	ctx context.Context,
	scope ledger.AccessScope,
	allocationID uuid.UUID,
) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			allocation, err := repos.AllocationRepo().FindByID(ctx, scope.PropertyID, allocationID)
			if err != nil {
				return err
			}
			if allocation == nil {
				return shared.NewDomainError("NOT_FOUND", "Allocation not found")
			}
			if err := scope.RequireInvoice(allocation.InvoiceID); err != nil {
				return err
			}

			if err := repos.AllocationRepo().SoftDelete(ctx, scope.PropertyID, allocation.ID); err != nil {
				return err
			}

			invoice, err := repos.InvoiceRepo().FindByID(ctx, scope.PropertyID, allocation.InvoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", "Invoice not found")
			}

			paidToDate, err := repos.AllocationRepo().SumByInvoice(ctx, scope.PropertyID, invoice.ID)
			if err != nil {
				return err
			}
			invoice.Recompute(paidToDate)
			invoice.IncrementVersion()
			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
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

	s.logger.Info("allocation removed",
		zap.String("allocation_id", allocationID.String()),
		zap.String("actor_id", scope.ActorID.String()))

	return result, nil
}

// ListByInvoice returns the active allocations of an invoice
func (s *AllocationService) ListByInvoice(
	ctx context.Context,
	scope ledger.AccessScope,
	invoiceID uuid.UUID,
) ([]AllocationResponse, error) {
	if err := scope.RequireInvoice(invoiceID); err != nil {
		return nil, err
	}

	var responses []AllocationResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		allocations, err := repos.AllocationRepo().FindByInvoice(ctx, scope.PropertyID, invoiceID)
		if err != nil {
			return err
		}
		responses = make([]AllocationResponse, len(allocations))
		for i, a := range allocations {
			responses[i] = *toAllocationResponse(a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}
