package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice.
// Status is always derived from (total, paid-to-date) except the explicit
// void override, see DeriveStatus.
type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "open"    // No allocations applied
	InvoiceStatusPartial InvoiceStatus = "partial" // 0 < paid-to-date < total
	InvoiceStatusPaid    InvoiceStatus = "paid"    // paid-to-date >= total
	InvoiceStatusVoid    InvoiceStatus = "void"    // Explicitly voided, terminal
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanAcceptAllocations returns true if allocations may be applied in this status
func (s InvoiceStatus) CanAcceptAllocations() bool {
	return s != InvoiceStatusVoid
}

// DeriveStatus computes the invoice status from its total and paid-to-date.
// Rules apply in order: nothing paid reads open even at a zero total, and
// void is never derived here since voiding is an explicit operation.
func DeriveStatus(total, paidToDate valueobject.Money) InvoiceStatus {
	if paidToDate.Amount().LessThanOrEqual(decimal.Zero) {
		return InvoiceStatusOpen
	}
	if paidToDate.Amount().GreaterThanOrEqual(total.Amount()) {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPartial
}

// Invoice represents a hotel stay invoice aggregate root.
// Balance and Status are derived fields owned by the allocation and
// reconciliation operations; they are never set independently.
type Invoice struct {
	shared.PropertyAggregateRoot
	InvoiceNumber string             `json:"invoice_number"`
	CompanyID     uuid.UUID          `json:"company_id"`
	CompanyName   string             `json:"company_name"`
	Subtotal      valueobject.Money  `json:"subtotal"`
	Tax           valueobject.Money  `json:"tax"`
	Balance       valueobject.Money  `json:"balance"`
	Status        InvoiceStatus      `json:"status"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       time.Time          `json:"due_date"`
	CheckIn       time.Time          `json:"check_in"`
	CheckOut      time.Time          `json:"check_out"`
	Nights        int                `json:"nights"`
	RateNight     valueobject.Money  `json:"rate_night"`
	Notes         string             `json:"notes"`
	VoidedAt      *time.Time         `json:"voided_at"`
	VoidReason    string             `json:"void_reason,omitempty"`
}

// NewInvoice creates a new invoice in status open with balance = total
func NewInvoice(
	propertyID uuid.UUID,
	invoiceNumber string,
	companyID uuid.UUID,
	companyName string,
	subtotal valueobject.Money,
	tax valueobject.Money,
	issueDate time.Time,
	dueDate time.Time,
	checkIn time.Time,
	checkOut time.Time,
	rateNight valueobject.Money,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if subtotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SUBTOTAL", "Subtotal cannot be negative")
	}
	if tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax cannot be negative")
	}
	if rateNight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Nightly rate cannot be negative")
	}
	if checkOut.Before(checkIn) {
		return nil, shared.NewDomainError("INVALID_DATES", "Check-out cannot be earlier than check-in")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be earlier than issue date")
	}

	total := subtotal.MustAdd(tax)

	inv := &Invoice{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(propertyID),
		InvoiceNumber:         invoiceNumber,
		CompanyID:             companyID,
		CompanyName:           companyName,
		Subtotal:              subtotal,
		Tax:                   tax,
		Balance:               total,
		Status:                InvoiceStatusOpen,
		IssueDate:             issueDate,
		DueDate:               dueDate,
		CheckIn:               checkIn,
		CheckOut:              checkOut,
		Nights:                WholeNights(checkIn, checkOut),
		RateNight:             rateNight,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// calendarDate normalizes t to midnight UTC of its calendar date. Date
// arithmetic runs on these so a DST-shortened 23-hour night still counts
// as one night.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WholeNights returns the number of calendar nights between check-in and
// check-out, never negative
func WholeNights(checkIn, checkOut time.Time) int {
	nights := int(calendarDate(checkOut).Sub(calendarDate(checkIn)).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// Total returns subtotal + tax
func (i *Invoice) Total() valueobject.Money {
	return i.Subtotal.MustAdd(i.Tax)
}

// Recompute recalculates balance and status from the given paid-to-date sum.
// Balance clamps at zero; a void invoice keeps its void status. Returns true
// when the derived status changed.
func (i *Invoice) Recompute(paidToDate valueobject.Money) bool {
	balance := i.Total().MustSubtract(paidToDate)
	if balance.IsNegative() {
		balance = valueobject.ZeroUSD()
	}
	i.Balance = balance

	if i.Status == InvoiceStatusVoid {
		return false
	}

	oldStatus := i.Status
	i.Status = DeriveStatus(i.Total(), paidToDate)
	return i.Status != oldStatus
}

// ChangeTotal adjusts the invoice total to newTotal, keeping tax fixed and
// absorbing the change into the subtotal. Existing allocations are untouched;
// the caller recomputes balance and status from the unchanged paid-to-date.
func (i *Invoice) ChangeTotal(newTotal valueobject.Money) error {
	if i.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Cannot adjust the total of a void invoice")
	}
	if newTotal.IsNegative() {
		return shared.NewDomainError("INVALID_TOTAL", "New total cannot be negative")
	}
	newSubtotal, err := newTotal.Subtract(i.Tax)
	if err != nil {
		return shared.NewDomainError("INVALID_TOTAL", "New total currency does not match invoice")
	}
	if newSubtotal.IsNegative() {
		return shared.NewDomainError("INVALID_TOTAL", "New total cannot be less than tax")
	}

	oldTotal := i.Total()
	i.Subtotal = newSubtotal
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInvoiceTotalChangedEvent(i, oldTotal, newTotal))

	return nil
}

// Void marks the invoice void and zeroes its monetary fields. Irreversible:
// there is no un-void, a mistaken void requires a new invoice. The caller is
// responsible for removing the invoice's allocations in the same transaction.
func (i *Invoice) Void(reason string) error {
	if i.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already void")
	}

	now := time.Now()
	i.Subtotal = valueobject.ZeroUSD()
	i.Tax = valueobject.ZeroUSD()
	i.Balance = valueobject.ZeroUSD()
	i.Status = InvoiceStatusVoid
	i.VoidedAt = &now
	i.VoidReason = reason
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInvoiceVoidedEvent(i, reason))

	return nil
}

// SetNotes sets free-form notes
func (i *Invoice) SetNotes(notes string) {
	i.Notes = notes
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// IsVoid returns true if the invoice has been voided
func (i *Invoice) IsVoid() bool {
	return i.Status == InvoiceStatusVoid
}

// IsPaid returns true if the invoice is fully paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// PaidToDate returns total - balance, the amount covered by active allocations
func (i *Invoice) PaidToDate() valueobject.Money {
	return i.Total().MustSubtract(i.Balance)
}

// DaysPastDue returns calendar days elapsed since the due date as of the
// given date, negative when the invoice is not yet due
func (i *Invoice) DaysPastDue(asOf time.Time) int {
	return int(calendarDate(asOf).Sub(calendarDate(i.DueDate)).Hours() / 24)
}
