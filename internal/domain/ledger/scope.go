package ledger

import (
	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared"
)

// AccessScope is the resolved capability a caller carries into every ledger
// operation. It is built once at the boundary (from the session collaborator)
// and passed explicitly; the ledger never queries identity state itself.
//
// A nil InvoiceIDs set means the caller may act on any invoice of the
// property. A non-nil set restricts the caller to exactly those invoices.
type AccessScope struct {
	ActorID    uuid.UUID
	PropertyID uuid.UUID
	InvoiceIDs map[uuid.UUID]struct{}
}

// NewAccessScope creates an unrestricted scope for a property
func NewAccessScope(actorID, propertyID uuid.UUID) AccessScope {
	return AccessScope{
		ActorID:    actorID,
		PropertyID: propertyID,
	}
}

// Restrict returns a copy of the scope limited to the given invoice ids
func (s AccessScope) Restrict(invoiceIDs []uuid.UUID) AccessScope {
	allowed := make(map[uuid.UUID]struct{}, len(invoiceIDs))
	for _, id := range invoiceIDs {
		allowed[id] = struct{}{}
	}
	return AccessScope{
		ActorID:    s.ActorID,
		PropertyID: s.PropertyID,
		InvoiceIDs: allowed,
	}
}

// CanAccessInvoice returns true if the scope covers the given invoice
func (s AccessScope) CanAccessInvoice(invoiceID uuid.UUID) bool {
	if s.InvoiceIDs == nil {
		return true
	}
	_, ok := s.InvoiceIDs[invoiceID]
	return ok
}

// RequireInvoice rejects out-of-scope invoice ids with FORBIDDEN
func (s AccessScope) RequireInvoice(invoiceID uuid.UUID) error {
	if !s.CanAccessInvoice(invoiceID) {
		return shared.ErrForbidden
	}
	return nil
}
