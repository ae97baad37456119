package housing

import (
	"fmt"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RoomStatus represents the availability of a room
type RoomStatus string

const (
	RoomStatusAvailable        RoomStatus = "AVAILABLE"
	RoomStatusFull             RoomStatus = "FULL"
	RoomStatusUnderMaintenance RoomStatus = "UNDER_MAINTENANCE"
)

// IsValid checks if the status is a valid RoomStatus
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusFull, RoomStatusUnderMaintenance:
		return true
	}
	return false
}

// String returns the string representation of RoomStatus
func (s RoomStatus) String() string {
	return string(s)
}

// Room is an aggregate tracking capacity and the occupancy counter that
// must always agree with resident assignments. Occupancy is only mutated
// through AddOccupant/RemoveOccupant so the capacity invariant cannot be
// bypassed.
type Room struct {
	shared.BaseAggregateRoot
	Number          string          `json:"number"`
	Floor           int             `json:"floor"`
	Capacity        int             `json:"capacity"`
	ActualOccupancy int             `json:"actual_occupancy"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	Status          RoomStatus      `json:"status"`
}

// NewRoom creates a new room
func NewRoom(number string, floor, capacity int, monthlyFee decimal.Decimal) (*Room, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot be empty")
	}
	if capacity <= 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Room capacity must be positive")
	}
	if monthlyFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Monthly fee cannot be negative")
	}

	return &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Floor:             floor,
		Capacity:          capacity,
		ActualOccupancy:   0,
		MonthlyFee:        monthlyFee,
		Status:            RoomStatusAvailable,
	}, nil
}

// HasFreeCapacity returns true if another occupant fits
func (r *Room) HasFreeCapacity() bool {
	return r.ActualOccupancy < r.Capacity
}

// IsUnderMaintenance returns true if the room is closed for maintenance
func (r *Room) IsUnderMaintenance() bool {
	return r.Status == RoomStatusUnderMaintenance
}

// AddOccupant increments the occupancy counter, marking the room FULL when
// it reaches capacity. Refused at capacity.
func (r *Room) AddOccupant() error {
	if !r.HasFreeCapacity() {
		return shared.NewDomainError("ROOM_AT_CAPACITY", fmt.Sprintf("Room %s is at capacity (%d/%d)", r.Number, r.ActualOccupancy, r.Capacity))
	}

	r.ActualOccupancy++
	if r.ActualOccupancy >= r.Capacity && r.Status != RoomStatusUnderMaintenance {
		r.Status = RoomStatusFull
	}

	r.Touch()
	r.IncrementVersion()
	return nil
}

// RemoveOccupant decrements the occupancy counter, resetting a FULL room
// back to AVAILABLE. Refused at zero.
func (r *Room) RemoveOccupant() error {
	if r.ActualOccupancy <= 0 {
		return shared.NewDomainError("INVALID_OCCUPANCY", fmt.Sprintf("Room %s has no occupants to remove", r.Number))
	}

	r.ActualOccupancy--
	if r.Status == RoomStatusFull {
		r.Status = RoomStatusAvailable
	}

	r.Touch()
	r.IncrementVersion()
	return nil
}

// SetMaintenance toggles the maintenance override. Leaving maintenance
// re-derives FULL/AVAILABLE from the occupancy counter.
func (r *Room) SetMaintenance(under bool) {
	if under {
		r.Status = RoomStatusUnderMaintenance
	} else if r.ActualOccupancy >= r.Capacity {
		r.Status = RoomStatusFull
	} else {
		r.Status = RoomStatusAvailable
	}
	r.Touch()
	r.IncrementVersion()
}

// UpdateMonthlyFee changes the room's base rent
func (r *Room) UpdateMonthlyFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Monthly fee cannot be negative")
	}
	r.MonthlyFee = fee
	r.Touch()
	r.IncrementVersion()
	return nil
}
