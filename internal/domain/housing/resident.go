package housing

import (
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResidentStatus represents the rental state of a resident
type ResidentStatus string

const (
	ResidentStatusPending         ResidentStatus = "PENDING"          // Application accepted, not yet moved in
	ResidentStatusActivelyRenting ResidentStatus = "ACTIVELY_RENTING" // Has a live rental contract
	ResidentStatusTerminated      ResidentStatus = "TERMINATED"       // Moved out
)

// IsValid checks if the status is a valid ResidentStatus
func (s ResidentStatus) IsValid() bool {
	switch s {
	case ResidentStatusPending, ResidentStatusActivelyRenting, ResidentStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of ResidentStatus
func (s ResidentStatus) String() string {
	return string(s)
}

// Resident is a dormitory tenant. RoomID is nil while the resident has no
// assignment; it is only moved by the transfer workflow or move-in/move-out.
type Resident struct {
	shared.BaseAggregateRoot
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Status   ResidentStatus `json:"status"`
	RoomID   *uuid.UUID     `json:"room_id"`
}

// NewResident creates a resident in PENDING status with no room assignment
func NewResident(fullName, email, phone string) (*Resident, error) {
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Resident name cannot be empty")
	}

	return &Resident{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FullName:          fullName,
		Email:             email,
		Phone:             phone,
		Status:            ResidentStatusPending,
	}, nil
}

// IsActivelyRenting returns true if the resident has a live contract
func (r *Resident) IsActivelyRenting() bool {
	return r.Status == ResidentStatusActivelyRenting
}

// HasRoom returns true if the resident currently has a room assignment
func (r *Resident) HasRoom() bool {
	return r.RoomID != nil && *r.RoomID != uuid.Nil
}

// AssignRoom moves the resident's assignment to the given room and marks
// them actively renting.
func (r *Resident) AssignRoom(roomID uuid.UUID) error {
	if roomID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	r.RoomID = &roomID
	r.Status = ResidentStatusActivelyRenting
	r.Touch()
	r.IncrementVersion()
	return nil
}

// ClearRoom removes the resident's room assignment
func (r *Resident) ClearRoom() {
	r.RoomID = nil
	r.Touch()
	r.IncrementVersion()
}

// Terminate ends the resident's rental
func (r *Resident) Terminate() error {
	if r.Status == ResidentStatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "Resident is already terminated")
	}
	r.Status = ResidentStatusTerminated
	r.RoomID = nil
	r.Touch()
	r.IncrementVersion()
	return nil
}
