package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID within a property. Returns (nil, nil)
// when no live row matches.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND id = ?", propertyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple invoices by ID within a property. Missing or
// tombstoned IDs are silently absent from the result.
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*ledger.Invoice, error) {
	if len(ids) == 0 {
		return []*ledger.Invoice{}, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND id IN ?", propertyID, ids).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// FindAll finds invoices for a property with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, propertyID uuid.UUID, filter ledger.InvoiceFilter) (shared.Paginated[*ledger.Invoice], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("property_id = ?", propertyID)
	query = r.applyInvoiceFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*ledger.Invoice]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	offset := (filter.Page - 1) * filter.PageSize

	var invoiceModels []models.InvoiceModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(offset).
		Limit(filter.PageSize).
		Find(&invoiceModels).Error; err != nil {
		return shared.Paginated[*ledger.Invoice]{}, err
	}

	invoices := make([]*ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return shared.NewPaginated(invoices, total, filter.Page, filter.PageSize), nil
}

// FindForAging finds all non-void invoices of a property for aging computation
func (r *GormInvoiceRepository) FindForAging(ctx context.Context, propertyID uuid.UUID) ([]*ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status <> ?", propertyID, ledger.InvoiceStatusVoid).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// ExistsByNumber checks whether an invoice number is already taken within a property
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, propertyID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("property_id = ? AND invoice_number = ?", propertyID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. Select("*") forces zero-valued
// columns through, a recomputed balance of zero must still be written.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SoftDelete tombstones an invoice. The version predicate makes the
// tombstone miss when a concurrent writer touched the row after the caller
// loaded it, so a freshly allocated invoice cannot be swept away.
func (r *GormInvoiceRepository) SoftDelete(ctx context.Context, invoice *ledger.Invoice) error {
	result := r.db.WithContext(ctx).
		Delete(&models.InvoiceModel{}, "property_id = ? AND id = ? AND version = ?",
			invoice.PropertyID, invoice.ID, invoice.Version)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyInvoiceFilter applies filter options to the query, without pagination
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter ledger.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR company_name ILIKE ?",
			searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
