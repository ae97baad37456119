package housing

import (
	"fmt"
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferStatus represents the state of a room transfer request
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusRejected  TransferStatus = "REJECTED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusRejected, TransferStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that permit no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusRejected || s == TransferStatusCompleted
}

// RoomTransfer is the state machine moving a resident between rooms:
// PENDING -> APPROVED -> COMPLETED, with REJECTED reachable from PENDING.
// The occupancy counters of both rooms only move at completion.
type RoomTransfer struct {
	shared.BaseAggregateRoot
	ResidentID        uuid.UUID      `json:"resident_id"`
	SourceRoomID      *uuid.UUID     `json:"source_room_id"` // nil if the resident had no room
	DestinationRoomID uuid.UUID      `json:"destination_room_id"`
	RequestedDate     time.Time      `json:"requested_date"`
	Reason            string         `json:"reason"`
	Status            TransferStatus `json:"status"`
	ApproverID        *uuid.UUID     `json:"approver_id"`
	CompletedAt       *time.Time     `json:"completed_at"`
}

// NewRoomTransfer creates a transfer request in PENDING status, capturing
// the resident's current room (if any) as the source.
func NewRoomTransfer(residentID uuid.UUID, sourceRoomID *uuid.UUID, destinationRoomID uuid.UUID, requestedDate time.Time, reason string) (*RoomTransfer, error) {
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if destinationRoomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Destination room ID cannot be empty")
	}
	if sourceRoomID != nil && *sourceRoomID == destinationRoomID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Destination room must differ from the current room")
	}
	if requestedDate.IsZero() {
		requestedDate = time.Now()
	}

	rt := &RoomTransfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ResidentID:        residentID,
		SourceRoomID:      sourceRoomID,
		DestinationRoomID: destinationRoomID,
		RequestedDate:     requestedDate,
		Reason:            reason,
		Status:            TransferStatusPending,
	}

	rt.AddDomainEvent(NewRoomTransferRequestedEvent(rt))

	return rt, nil
}

// Approve moves the transfer from PENDING to APPROVED
func (rt *RoomTransfer) Approve(approverID uuid.UUID) error {
	if rt.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve transfer in %s status", rt.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	rt.Status = TransferStatusApproved
	rt.ApproverID = &approverID
	rt.Touch()
	rt.IncrementVersion()
	return nil
}

// Reject moves the transfer from PENDING to the terminal REJECTED state,
// clearing any approver link.
func (rt *RoomTransfer) Reject() error {
	if rt.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject transfer in %s status", rt.Status))
	}

	rt.Status = TransferStatusRejected
	rt.ApproverID = nil
	rt.Touch()
	rt.IncrementVersion()
	return nil
}

// MarkCompleted moves the transfer from APPROVED to the terminal COMPLETED
// state. The room and resident mutations happen alongside this in the same
// transaction; this method only guards the transition.
func (rt *RoomTransfer) MarkCompleted() error {
	if rt.Status != TransferStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete transfer in %s status", rt.Status))
	}

	now := time.Now()
	rt.Status = TransferStatusCompleted
	rt.CompletedAt = &now
	rt.AddDomainEvent(NewRoomTransferCompletedEvent(rt))
	rt.Touch()
	rt.IncrementVersion()
	return nil
}

// CanDelete returns true while the transfer is deletable. APPROVED and
// COMPLETED transfers are kept as audit trail.
func (rt *RoomTransfer) CanDelete() bool {
	return rt.Status == TransferStatusPending || rt.Status == TransferStatusRejected
}

// IsOutstanding returns true while the transfer blocks a new request for
// the same resident.
func (rt *RoomTransfer) IsOutstanding() bool {
	return rt.Status == TransferStatusPending || rt.Status == TransferStatusApproved
}
