package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
	"github.com/stayops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by ID within a property. Returns (nil, nil)
// when no live row matches.
func (r *GormAllocationRepository) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*ledger.Allocation, error) {
	var model models.AllocationModel
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

// FindByInvoice finds all active allocations for an invoice
func (r *GormAllocationRepository) FindByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) ([]*ledger.Allocation, error) {
	var allocationModels []models.AllocationModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND invoice_id = ?", propertyID, invoiceID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainAllocations(allocationModels), nil
}

// FindByPayment finds all active allocations for a payment
func (r *GormAllocationRepository) FindByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) ([]*ledger.Allocation, error) {
	var allocationModels []models.AllocationModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND payment_id = ?", propertyID, paymentID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainAllocations(allocationModels), nil
}

// SumByInvoice returns the invoice's paid-to-date sum over active allocations
func (r *GormAllocationRepository) SumByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) (valueobject.Money, error) {
	return r.sum(ctx, "property_id = ? AND invoice_id = ?", propertyID, invoiceID)
}

// SumByPayment returns the payment's allocated sum over active allocations
func (r *GormAllocationRepository) SumByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (valueobject.Money, error) {
	return r.sum(ctx, "property_id = ? AND payment_id = ?", propertyID, paymentID)
}

func (r *GormAllocationRepository) sum(ctx context.Context, cond string, args ...any) (valueobject.Money, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AllocationModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where(cond, args...).
		Scan(&result).Error; err != nil {
		return valueobject.ZeroUSD(), err
	}
	return valueobject.NewMoneyUSD(result.Total), nil
}

// CountByPayment counts a payment's active allocations
func (r *GormAllocationRepository) CountByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AllocationModel{}).
		Where("property_id = ? AND payment_id = ?", propertyID, paymentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new allocation
func (r *GormAllocationRepository) Create(ctx context.Context, allocation *ledger.Allocation) error {
	model := models.AllocationModelFromDomain(allocation)
	return r.db.WithContext(ctx).Create(model).Error
}

// SoftDelete tombstones a single allocation
func (r *GormAllocationRepository) SoftDelete(ctx context.Context, propertyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.AllocationModel{}, "property_id = ? AND id = ?", propertyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDeleteByInvoice tombstones all active allocations of an invoice,
// returning how many were removed
func (r *GormAllocationRepository) SoftDeleteByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.AllocationModel{}, "property_id = ? AND invoice_id = ?", propertyID, invoiceID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func toDomainAllocations(allocationModels []models.AllocationModel) []*ledger.Allocation {
	allocations := make([]*ledger.Allocation, len(allocationModels))
	for i := range allocationModels {
		allocations[i] = allocationModels[i].ToDomain()
	}
	return allocations
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ ledger.AllocationRepository = (*GormAllocationRepository)(nil)
