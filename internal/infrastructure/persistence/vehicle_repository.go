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

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by its ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Vehicle, error) {
	var model models.VehicleModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByResident finds the active vehicle registrations of one resident
func (r *GormVehicleRepository) FindActiveByResident(ctx context.Context, residentID uuid.UUID) ([]*housing.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("resident_id = ? AND active = ?", residentID, true).
		Order("created_at ASC").
		Find(&vehicleModels).Error; err != nil {
		return nil, err
	}
	return toVehicles(vehicleModels), nil
}

// FindAllActive finds every active vehicle registration. This is the
// parking pass's candidate set.
func (r *GormVehicleRepository) FindAllActive(ctx context.Context) ([]*housing.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("active = ?", true).
		Order("license_plate ASC").
		Find(&vehicleModels).Error; err != nil {
		return nil, err
	}
	return toVehicles(vehicleModels), nil
}

// Save creates or updates a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *housing.Vehicle) error {
	model := models.VehicleModelFromDomain(vehicle)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a vehicle
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.VehicleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toVehicles(vehicleModels []models.VehicleModel) []*housing.Vehicle {
	vehicles := make([]*housing.Vehicle, len(vehicleModels))
	for i := range vehicleModels {
		vehicles[i] = vehicleModels[i].ToDomain()
	}
	return vehicles
}
