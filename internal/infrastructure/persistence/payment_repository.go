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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID within a property. Returns (nil, nil)
// when no live row matches.
func (r *GormPaymentRepository) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
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

// FindAll finds payments for a property with filtering and pagination
func (r *GormPaymentRepository) FindAll(ctx context.Context, propertyID uuid.UUID, filter ledger.PaymentFilter) (shared.Paginated[*ledger.Payment], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("property_id = ?", propertyID)
	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*ledger.Payment]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	offset := (filter.Page - 1) * filter.PageSize

	var paymentModels []models.PaymentModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(offset).
		Limit(filter.PageSize).
		Find(&paymentModels).Error; err != nil {
		return shared.Paginated[*ledger.Payment]{}, err
	}

	payments := make([]*ledger.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return shared.NewPaginated(payments, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
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

// Delete tombstones a payment. The version predicate makes the tombstone
// miss when a concurrent allocation bumped the row after the caller's
// has-allocations check, surfacing as a conflict instead of an orphan.
func (r *GormPaymentRepository) Delete(ctx context.Context, payment *ledger.Payment) error {
	result := r.db.WithContext(ctx).
		Delete(&models.PaymentModel{}, "property_id = ? AND id = ? AND version = ?",
			payment.PropertyID, payment.ID, payment.Version)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
