package ledger

import (
	"fmt"

	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// Ledger-specific domain errors. Every rejected mutation names the invariant
// that would have been violated, including the exact overshoot for
// over-allocations.
var (
	ErrPaymentHasAllocations = shared.NewDomainError("HAS_ALLOCATIONS", "Payment has active allocations; remove them before deleting")
	ErrInvoiceHasAllocations = shared.NewDomainError("HAS_ALLOCATIONS", "Invoice has active allocations; remove them before deleting")
)

// NewInvoiceOverAllocationError reports an allocation that would push an
// invoice's allocated sum past its total, by the given excess
func NewInvoiceOverAllocationError(excess valueobject.Money) *shared.DomainError {
	return shared.NewDomainError("OVER_ALLOCATION",
		fmt.Sprintf("Allocation exceeds invoice total by $%s", excess.StringFixed(2)))
}

// NewPaymentOverAllocationError reports an allocation that would push a
// payment's allocated sum past its amount, by the given excess
func NewPaymentOverAllocationError(excess valueobject.Money) *shared.DomainError {
	return shared.NewDomainError("OVER_ALLOCATION",
		fmt.Sprintf("Allocation exceeds payment amount by $%s", excess.StringFixed(2)))
}

// NewVoidInvoiceError reports an attempt to allocate against a void invoice
func NewVoidInvoiceError(invoiceNumber string) *shared.DomainError {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Invoice %s is void and cannot accept allocations", invoiceNumber))
}
