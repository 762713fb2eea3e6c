package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayops/backend/internal/domain/ledger"
)

// AuditService is the read side of the audit trail. Writes only ever happen
// inside the mutating operations' transactions; there is no standalone
// append path here.
type AuditService struct {
	auditRepo ledger.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo ledger.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// GetInvoiceAudit returns an invoice's audit events, newest first
func (s *AuditService) GetInvoiceAudit(ctx context.Context, scope ledger.AccessScope, invoiceID uuid.UUID) ([]AuditEventResponse, error) {
	if err := scope.RequireInvoice(invoiceID); err != nil {
		return nil, err
	}

	events, err := s.auditRepo.FindByInvoice(ctx, scope.PropertyID, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]AuditEventResponse, len(events))
	for i, e := range events {
		responses[i] = *toAuditEventResponse(e)
	}
	return responses, nil
}

// GetActionSummary returns the property's audit event counts per action tag
func (s *AuditService) GetActionSummary(ctx context.Context, scope ledger.AccessScope) (map[string]int64, error) {
	counts, err := s.auditRepo.CountByAction(ctx, scope.PropertyID)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]int64, len(counts))
	for action, count := range counts {
		summary[action.String()] = count
	}
	return summary, nil
}
