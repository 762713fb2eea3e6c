package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// InvoiceFilter filters invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status    *InvoiceStatus
	CompanyID *uuid.UUID
}

// PaymentFilter filters payment listings
type PaymentFilter struct {
	shared.Filter
	Method *PaymentMethod
}

// InvoiceRepository defines the persistence contract for invoices.
// Tombstoned (soft-deleted) invoices are invisible to every method.
type InvoiceRepository interface {
	// FindByID retrieves an invoice by ID within a property
	FindByID(ctx context.Context, propertyID, id uuid.UUID) (*Invoice, error)

	// FindByIDs retrieves multiple invoices by ID within a property
	FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*Invoice, error)

	// FindAll retrieves invoices with filtering and pagination
	FindAll(ctx context.Context, propertyID uuid.UUID, filter InvoiceFilter) (shared.Paginated[*Invoice], error)

	// FindForAging retrieves all non-void invoices of a property for
	// aging computation
	FindForAging(ctx context.Context, propertyID uuid.UUID) ([]*Invoice, error)

	// ExistsByNumber checks whether an invoice number is already taken
	// within a property
	ExistsByNumber(ctx context.Context, propertyID uuid.UUID, number string) (bool, error)

	// Save persists an invoice (create or update)
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock persists an invoice with an optimistic version check,
	// returning CONCURRENCY_CONFLICT when another writer got there first
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// SoftDelete tombstones an invoice, guarded by the version the caller
	// loaded. A concurrent writer bumping the version makes the tombstone
	// miss and return CONCURRENCY_CONFLICT.
	SoftDelete(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository defines the persistence contract for payments
type PaymentRepository interface {
	// FindByID retrieves a payment by ID within a property
	FindByID(ctx context.Context, propertyID, id uuid.UUID) (*Payment, error)

	// FindAll retrieves payments with filtering and pagination
	FindAll(ctx context.Context, propertyID uuid.UUID, filter PaymentFilter) (shared.Paginated[*Payment], error)

	// Save persists a payment (create or update)
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock persists a payment with an optimistic version check
	SaveWithLock(ctx context.Context, payment *Payment) error

	// Delete tombstones a payment, guarded by the version the caller
	// loaded. Callers enforce the no-live-allocations precondition first;
	// the version check keeps that precondition honest under concurrent
	// ApplyPayment.
	Delete(ctx context.Context, payment *Payment) error
}

// AllocationRepository defines the persistence contract for allocations.
// Allocations are looked up by foreign key, never through an embedded
// collection on the aggregates they join.
type AllocationRepository interface {
	// FindByID retrieves an allocation by ID within a property
	FindByID(ctx context.Context, propertyID, id uuid.UUID) (*Allocation, error)

	// FindByInvoice retrieves all active allocations for an invoice
	FindByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) ([]*Allocation, error)

	// FindByPayment retrieves all active allocations for a payment
	FindByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) ([]*Allocation, error)

	// SumByInvoice returns the invoice's paid-to-date sum over active
	// allocations
	SumByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) (valueobject.Money, error)

	// SumByPayment returns the payment's allocated sum over active
	// allocations
	SumByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (valueobject.Money, error)

	// CountByPayment counts a payment's active allocations
	CountByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (int64, error)

	// Create persists a new allocation
	Create(ctx context.Context, allocation *Allocation) error

	// SoftDelete tombstones a single allocation
	SoftDelete(ctx context.Context, propertyID, id uuid.UUID) error

	// SoftDeleteByInvoice tombstones all active allocations of an invoice,
	// returning how many were removed
	SoftDeleteByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) (int64, error)
}

// AuditRepository defines the persistence contract for the append-only
// invoice audit trail. There is no update or delete path.
type AuditRepository interface {
	// Append inserts a new audit event
	Append(ctx context.Context, event *AuditEvent) error

	// FindByInvoice retrieves an invoice's audit events, newest first
	FindByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) ([]*AuditEvent, error)

	// CountByAction counts a property's audit events per action tag
	CountByAction(ctx context.Context, propertyID uuid.UUID) (map[AuditAction]int64, error)
}
