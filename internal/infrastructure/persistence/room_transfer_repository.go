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

// GormRoomTransferRepository implements RoomTransferRepository using GORM
type GormRoomTransferRepository struct {
	db *gorm.DB
}

// NewGormRoomTransferRepository creates a new GormRoomTransferRepository
func NewGormRoomTransferRepository(db *gorm.DB) *GormRoomTransferRepository {
	return &GormRoomTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormRoomTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.RoomTransfer, error) {
	var model models.RoomTransferModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a transfer with a row-level lock. Must run inside
// a transaction.
func (r *GormRoomTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*housing.RoomTransfer, error) {
	var model models.RoomTransferModel
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

// HasOutstandingForResident reports whether the resident already has a
// PENDING or APPROVED transfer
func (r *GormRoomTransferRepository) HasOutstandingForResident(ctx context.Context, residentID uuid.UUID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.RoomTransferModel{}).
		Where("resident_id = ? AND status IN ?", residentID,
			[]housing.TransferStatus{housing.TransferStatusPending, housing.TransferStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List finds transfers with pagination, newest request first
func (r *GormRoomTransferRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.RoomTransfer], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.RoomTransferModel{})
	if filter.Search != "" {
		query = query.Where("reason ILIKE ?", "%"+filter.Search+"%")
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

	var transferModels []models.RoomTransferModel
	if err := query.
		Order("requested_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transferModels).Error; err != nil {
		return nil, err
	}

	transfers := make([]*housing.RoomTransfer, len(transferModels))
	for i := range transferModels {
		transfers[i] = transferModels[i].ToDomain()
	}
	return shared.NewPaginated(transfers, total, page, pageSize), nil
}

// Save creates or updates a transfer
func (r *GormRoomTransferRepository) Save(ctx context.Context, transfer *housing.RoomTransfer) error {
	model := models.RoomTransferModelFromDomain(transfer)
	return dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormRoomTransferRepository) SaveWithLock(ctx context.Context, transfer *housing.RoomTransfer) error {
	model := models.RoomTransferModelFromDomain(transfer)
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.RoomTransferModel{}).
		Where("id = ? AND version = ?", transfer.ID, transfer.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The transfer has been modified by another transaction")
	}
	return nil
}

// Delete removes a transfer
func (r *GormRoomTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.RoomTransferModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
