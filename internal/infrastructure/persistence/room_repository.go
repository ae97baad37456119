package persistence

import (
	"context"
	"errors"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoomRepository implements RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Room, error) {
	var model models.RoomModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a room with a row-level lock. Occupancy moves
// go through this so concurrent transfers serialize on the room row.
func (r *GormRoomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*housing.Room, error) {
	var model models.RoomModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds rooms with pagination, ordered by room number
func (r *GormRoomRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.Room], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.RoomModel{})
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
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

	var roomModels []models.RoomModel
	if err := query.
		Order("number ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&roomModels).Error; err != nil {
		return nil, err
	}

	rooms := make([]*housing.Room, len(roomModels))
	for i := range roomModels {
		rooms[i] = roomModels[i].ToDomain()
	}
	return shared.NewPaginated(rooms, total, page, pageSize), nil
}

// Save creates or updates a room
func (r *GormRoomRepository) Save(ctx context.Context, room *housing.Room) error {
	model := models.RoomModelFromDomain(room)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormRoomRepository) SaveWithLock(ctx context.Context, room *housing.Room) error {
	model := models.RoomModelFromDomain(room)
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.RoomModel{}).
		Where("id = ? AND version = ?", room.ID, room.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The room has been modified by another transaction")
	}
	return nil
}

// Delete removes a room
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.RoomModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
