package persistence

import (
	"context"
	"errors"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/dormhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements MeterReadingRepository using GORM
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// FindByID finds a reading by its ID
func (r *GormMeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityMeterReading, error) {
	var model models.MeterReadingModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByPeriod finds all readings of a billing period, grouped by room in
// a stable order
func (r *GormMeterReadingRepository) FindByPeriod(ctx context.Context, period valueobject.BillingPeriod) ([]*billing.UtilityMeterReading, error) {
	var readingModels []models.MeterReadingModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("period = ?", period.String()).
		Order("room_id ASC, meter_type ASC").
		Find(&readingModels).Error; err != nil {
		return nil, err
	}

	readings := make([]*billing.UtilityMeterReading, len(readingModels))
	for i := range readingModels {
		reading, err := readingModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		readings[i] = reading
	}
	return readings, nil
}

// FindLatestPrior finds the most recent reading of the meter strictly
// before the given period. The period column's "YYYY-MM" form sorts
// chronologically as text.
func (r *GormMeterReadingRepository) FindLatestPrior(ctx context.Context, roomID uuid.UUID, meterType billing.MeterType, before valueobject.BillingPeriod) (*billing.UtilityMeterReading, error) {
	var model models.MeterReadingModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("room_id = ? AND meter_type = ? AND period < ?", roomID, meterType, before.String()).
		Order("period DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List finds readings with pagination, newest period first
func (r *GormMeterReadingRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.UtilityMeterReading], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.MeterReadingModel{})

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

	var readingModels []models.MeterReadingModel
	if err := query.
		Order("period DESC, room_id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&readingModels).Error; err != nil {
		return nil, err
	}

	readings := make([]*billing.UtilityMeterReading, len(readingModels))
	for i := range readingModels {
		reading, err := readingModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		readings[i] = reading
	}
	return shared.NewPaginated(readings, total, page, pageSize), nil
}

// Save creates or updates a reading
func (r *GormMeterReadingRepository) Save(ctx context.Context, reading *billing.UtilityMeterReading) error {
	model := models.MeterReadingModelFromDomain(reading)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a reading
func (r *GormMeterReadingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.MeterReadingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
