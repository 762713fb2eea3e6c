package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCheck PaymentMethod = "check"
	PaymentMethodACH   PaymentMethod = "ach"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodOther PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCheck, PaymentMethodACH, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment represents money received from a company, created standalone and
// later distributed across invoices through allocations. A payment never
// holds a back-reference to its allocations; the allocated sum is queried.
type Payment struct {
	shared.PropertyAggregateRoot
	Amount       valueobject.Money `json:"amount"`
	Method       PaymentMethod     `json:"method"`
	Reference    string            `json:"reference"`
	ReceivedDate time.Time         `json:"received_date"`
	Notes        string            `json:"notes"`
}

// NewPayment creates a new payment
func NewPayment(
	propertyID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	reference string,
	receivedDate time.Time,
) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if receivedDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIVED_DATE", "Received date cannot be empty")
	}

	p := &Payment{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(propertyID),
		Amount:                amount,
		Method:                method,
		Reference:             reference,
		ReceivedDate:          receivedDate,
	}

	p.AddDomainEvent(NewPaymentReceivedEvent(p))

	return p, nil
}

// Unallocated returns the remaining allocatable amount given the sum of the
// payment's active allocations, never negative
func (p *Payment) Unallocated(allocated valueobject.Money) valueobject.Money {
	remaining := p.Amount.MustSubtract(allocated)
	if remaining.IsNegative() {
		return valueobject.ZeroUSD()
	}
	return remaining
}

// CanAllocate checks whether adding amount on top of the already allocated
// sum would exceed the payment amount
func (p *Payment) CanAllocate(allocated, amount valueobject.Money) bool {
	return !allocated.MustAdd(amount).Amount().GreaterThan(p.Amount.Amount())
}

// SetNotes sets free-form notes
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
