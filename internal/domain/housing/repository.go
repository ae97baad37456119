package housing

import (
	"context"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoomRepository persists Room aggregates
type RoomRepository interface {
	Save(ctx context.Context, room *Room) error
	SaveWithLock(ctx context.Context, room *Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	// FindByIDForUpdate locks the room row for the duration of the current
	// transaction. Must be called inside one.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Room], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResidentRepository persists Resident aggregates
type ResidentRepository interface {
	Save(ctx context.Context, resident *Resident) error
	FindByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	// FindActivelyRentingWithRoom returns residents in ACTIVELY_RENTING
	// status that currently have a room assignment.
	FindActivelyRentingWithRoom(ctx context.Context) ([]*Resident, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Resident], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VehicleRepository persists Vehicle registrations
type VehicleRepository interface {
	Save(ctx context.Context, vehicle *Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindActiveByResident(ctx context.Context, residentID uuid.UUID) ([]*Vehicle, error)
	// FindAllActive returns every active registration, used by the parking
	// billing pass.
	FindAllActive(ctx context.Context) ([]*Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoomTransferRepository persists RoomTransfer aggregates
type RoomTransferRepository interface {
	Save(ctx context.Context, transfer *RoomTransfer) error
	SaveWithLock(ctx context.Context, transfer *RoomTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*RoomTransfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RoomTransfer, error)
	// HasOutstandingForResident reports whether the resident already has a
	// PENDING or APPROVED transfer.
	HasOutstandingForResident(ctx context.Context, residentID uuid.UUID) (bool, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*RoomTransfer], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
