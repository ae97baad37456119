package persistence

import (
	"context"
	"errors"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormResidentRepository implements ResidentRepository using GORM
type GormResidentRepository struct {
	db *gorm.DB
}

// NewGormResidentRepository creates a new GormResidentRepository
func NewGormResidentRepository(db *gorm.DB) *GormResidentRepository {
	return &GormResidentRepository{db: db}
}

// FindByID finds a resident by its ID
func (r *GormResidentRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Resident, error) {
	var model models.ResidentModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActivelyRentingWithRoom finds every resident with a live rental and
// a room assignment. This is the room-fee pass's candidate set.
func (r *GormResidentRepository) FindActivelyRentingWithRoom(ctx context.Context) ([]*housing.Resident, error) {
	var residentModels []models.ResidentModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("status = ? AND room_id IS NOT NULL", housing.ResidentStatusActivelyRenting).
		Order("full_name ASC").
		Find(&residentModels).Error; err != nil {
		return nil, err
	}

	residents := make([]*housing.Resident, len(residentModels))
	for i := range residentModels {
		residents[i] = residentModels[i].ToDomain()
	}
	return residents, nil
}

// List finds residents with pagination
func (r *GormResidentRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.Resident], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.ResidentModel{})
	if filter.Search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

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

	var residentModels []models.ResidentModel
	if err := query.
		Order("full_name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&residentModels).Error; err != nil {
		return nil, err
	}

	residents := make([]*housing.Resident, len(residentModels))
	for i := range residentModels {
		residents[i] = residentModels[i].ToDomain()
	}
	return shared.NewPaginated(residents, total, page, pageSize), nil
}

// Save creates or updates a resident
func (r *GormResidentRepository) Save(ctx context.Context, resident *housing.Resident) error {
	model := models.ResidentModelFromDomain(resident)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a resident
func (r *GormResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.ResidentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
