package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements AuditRepository using GORM.
// The table is append-only; this repository never updates or deletes rows.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts a new audit event
func (r *GormAuditRepository) Append(ctx context.Context, event *ledger.AuditEvent) error {
	model := models.InvoiceAuditModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByInvoice retrieves an invoice's audit events, newest first
func (r *GormAuditRepository) FindByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) ([]*ledger.AuditEvent, error) {
	var auditModels []models.InvoiceAuditModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND invoice_id = ?", propertyID, invoiceID).
		Order("created_at DESC").
		Find(&auditModels).Error; err != nil {
		return nil, err
	}
	events := make([]*ledger.AuditEvent, len(auditModels))
	for i := range auditModels {
		events[i] = auditModels[i].ToDomain()
	}
	return events, nil
}

// CountByAction counts a property's audit events per action tag
func (r *GormAuditRepository) CountByAction(ctx context.Context, propertyID uuid.UUID) (map[ledger.AuditAction]int64, error) {
	var rows []struct {
		Action ledger.AuditAction
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceAuditModel{}).
		Select("action, COUNT(*) as count").
		Where("property_id = ?", propertyID).
		Group("action").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[ledger.AuditAction]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

// Ensure GormAuditRepository implements AuditRepository
var _ ledger.AuditRepository = (*GormAuditRepository)(nil)
