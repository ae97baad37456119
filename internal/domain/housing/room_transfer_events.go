package housing

import (
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoomTransferRequestedEvent is raised when a resident requests a transfer
type RoomTransferRequestedEvent struct {
	shared.BaseDomainEvent
	TransferID        uuid.UUID  `json:"transfer_id"`
	ResidentID        uuid.UUID  `json:"resident_id"`
	SourceRoomID      *uuid.UUID `json:"source_room_id,omitempty"`
	DestinationRoomID uuid.UUID  `json:"destination_room_id"`
	RequestedDate     time.Time  `json:"requested_date"`
}

// EventType returns the event type name
func (e *RoomTransferRequestedEvent) EventType() string {
	return "RoomTransferRequested"
}

// NewRoomTransferRequestedEvent creates a new RoomTransferRequestedEvent
func NewRoomTransferRequestedEvent(rt *RoomTransfer) *RoomTransferRequestedEvent {
	return &RoomTransferRequestedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("RoomTransferRequested", rt.ID, "RoomTransfer"),
		TransferID:        rt.ID,
		ResidentID:        rt.ResidentID,
		SourceRoomID:      rt.SourceRoomID,
		DestinationRoomID: rt.DestinationRoomID,
		RequestedDate:     rt.RequestedDate,
	}
}

// RoomTransferCompletedEvent is raised when a transfer finishes and the
// resident's room assignment has moved
type RoomTransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferID        uuid.UUID  `json:"transfer_id"`
	ResidentID        uuid.UUID  `json:"resident_id"`
	SourceRoomID      *uuid.UUID `json:"source_room_id,omitempty"`
	DestinationRoomID uuid.UUID  `json:"destination_room_id"`
	CompletedAt       time.Time  `json:"completed_at"`
}

// EventType returns the event type name
func (e *RoomTransferCompletedEvent) EventType() string {
	return "RoomTransferCompleted"
}

// NewRoomTransferCompletedEvent creates a new RoomTransferCompletedEvent
func NewRoomTransferCompletedEvent(rt *RoomTransfer) *RoomTransferCompletedEvent {
	completedAt := time.Now()
	if rt.CompletedAt != nil {
		completedAt = *rt.CompletedAt
	}
	return &RoomTransferCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("RoomTransferCompleted", rt.ID, "RoomTransfer"),
		TransferID:        rt.ID,
		ResidentID:        rt.ResidentID,
		SourceRoomID:      rt.SourceRoomID,
		DestinationRoomID: rt.DestinationRoomID,
		CompletedAt:       completedAt,
	}
}
