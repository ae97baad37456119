package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeeRateRepository implements FeeRateRepository using GORM
type GormFeeRateRepository struct {
	db *gorm.DB
}

// NewGormFeeRateRepository creates a new GormFeeRateRepository
func NewGormFeeRateRepository(db *gorm.DB) *GormFeeRateRepository {
	return &GormFeeRateRepository{db: db}
}

// FindByID finds a fee rate by its ID
func (r *GormFeeRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeRate, error) {
	var model models.FeeRateModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveRate finds the active rate effective at the given time for a
// (fee type, vehicle type) pair. The newest effective_from wins when
// several windows overlap.
func (r *GormFeeRateRepository) FindActiveRate(ctx context.Context, feeType billing.FeeType, vehicleType *housing.VehicleType, at time.Time) (*billing.FeeRate, error) {
	query := dbFrom(ctx, r.db).WithContext(ctx).
		Where("fee_type = ? AND active = ?", feeType, true).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at)

	if vehicleType != nil {
		query = query.Where("vehicle_type = ?", *vehicleType)
	} else {
		query = query.Where("vehicle_type IS NULL")
	}

	var model models.FeeRateModel
	if err := query.Order("effective_from DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds fee rates with pagination, newest window first
func (r *GormFeeRateRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.FeeRate], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.FeeRateModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var rateModels []models.FeeRateModel
	if err := query.
		Order("effective_from DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rateModels).Error; err != nil {
		return nil, err
	}

	rates := make([]*billing.FeeRate, len(rateModels))
	for i := range rateModels {
		rates[i] = rateModels[i].ToDomain()
	}
	return shared.NewPaginated(rates, total, page, pageSize), nil
}

// Save creates or updates a fee rate
func (r *GormFeeRateRepository) Save(ctx context.Context, rate *billing.FeeRate) error {
	model := models.FeeRateModelFromDomain(rate)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a fee rate
func (r *GormFeeRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.FeeRateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
