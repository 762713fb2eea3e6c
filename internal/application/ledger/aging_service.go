package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stayops/backend/internal/domain/ledger"
)

// AgingService exposes the read-side aging reports. It only ever reads
// settled ledger state and delegates the bucketing to the pure domain
// functions, so repeated calls over unchanged state return identical
// results.
type AgingService struct {
	invoiceRepo ledger.InvoiceRepository
	logger      *zap.Logger
}

// NewAgingService creates a new AgingService
func NewAgingService(invoiceRepo ledger.InvoiceRepository, logger *zap.Logger) *AgingService {
	return &AgingService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// scopedInvoices loads the property's non-void invoices and drops those the
// caller's scope does not cover
func (s *AgingService) scopedInvoices(ctx context.Context, scope ledger.AccessScope) ([]*ledger.Invoice, error) {
	invoices, err := s.invoiceRepo.FindForAging(ctx, scope.PropertyID)
	if err != nil {
		return nil, err
	}
	if scope.InvoiceIDs == nil {
		return invoices, nil
	}
	visible := make([]*ledger.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if scope.CanAccessInvoice(inv.ID) {
			visible = append(visible, inv)
		}
	}
	return visible, nil
}

// Summary buckets the property's open balances by age as of the given date
// (defaulting to now)
func (s *AgingService) Summary(ctx context.Context, scope ledger.AccessScope, asOf *time.Time) (ledger.AgingSummary, error) {
	invoices, err := s.scopedInvoices(ctx, scope)
	if err != nil {
		return ledger.AgingSummary{}, err
	}

	at := time.Now()
	if asOf != nil {
		at = *asOf
	}

	summary := ledger.Summarize(invoices, at)

	s.logger.Debug("aging summary computed",
		zap.String("property_id", scope.PropertyID.String()),
		zap.Int("open_invoices", summary.OpenCount))

	return summary, nil
}

// CompanyBreakdown spreads each company's open balance across the aging
// buckets as of the given date (defaulting to now)
func (s *AgingService) CompanyBreakdown(ctx context.Context, scope ledger.AccessScope, asOf *time.Time) ([]ledger.CompanyAging, error) {
	invoices, err := s.scopedInvoices(ctx, scope)
	if err != nil {
		return nil, err
	}

	at := time.Now()
	if asOf != nil {
		at = *asOf
	}

	return ledger.BreakdownByCompany(invoices, at), nil
}
