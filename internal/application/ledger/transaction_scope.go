package ledger

import (
	"context"

	"github.com/stayops/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// Every mutating ledger operation runs inside one scope so the
// over-allocation check, the writes and the audit append commit or roll
// back as a single unit. A failed audit write aborts the whole operation.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - InvoiceRepo and PaymentRepo own their aggregates; derived invoice
//     fields (balance, status) are only written through these after a
//     recompute from the allocation rows.
//   - AllocationRepo owns the join edge between the two aggregates. Neither
//     aggregate embeds its allocations; sums are queried, never cached.
//   - AuditRepo is append-only and shares the transaction of whichever
//     operation triggered the event.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() ledger.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() ledger.PaymentRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() ledger.AllocationRepository
	// AuditRepo returns the audit repository scoped to the current transaction
	AuditRepo() ledger.AuditRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	invoiceRepo    ledger.InvoiceRepository
	paymentRepo    ledger.PaymentRepository
	allocationRepo ledger.AllocationRepository
	auditRepo      ledger.AuditRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	allocationRepo ledger.AllocationRepository,
	auditRepo ledger.AuditRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		auditRepo:      auditRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() ledger.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository {
	return s.paymentRepo
}

// AllocationRepo returns the allocation repository.
func (s *NoOpTransactionScope) AllocationRepo() ledger.AllocationRepository {
	return s.allocationRepo
}

// AuditRepo returns the audit repository.
func (s *NoOpTransactionScope) AuditRepo() ledger.AuditRepository {
	return s.auditRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
