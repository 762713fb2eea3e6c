package ledger

import (
	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// Allocation records that part (or all) of one payment was applied to one
// invoice. It is the join edge between the two aggregates and the only
// record the derived invoice balance is computed from.
type Allocation struct {
	shared.BaseEntity
	PropertyID uuid.UUID         `json:"property_id"`
	PaymentID  uuid.UUID         `json:"payment_id"`
	InvoiceID  uuid.UUID         `json:"invoice_id"`
	Amount     valueobject.Money `json:"amount"`
}

// NewAllocation creates a new allocation linking a payment to an invoice
func NewAllocation(propertyID, paymentID, invoiceID uuid.UUID, amount valueobject.Money) (*Allocation, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}

	return &Allocation{
		BaseEntity: shared.NewBaseEntity(),
		PropertyID: propertyID,
		PaymentID:  paymentID,
		InvoiceID:  invoiceID,
		Amount:     amount,
	}, nil
}

// SumAllocations returns the total amount across the given allocations
func SumAllocations(allocations []*Allocation) valueobject.Money {
	sum := valueobject.ZeroUSD()
	for _, a := range allocations {
		sum = sum.MustAdd(a.Amount)
	}
	return sum
}
