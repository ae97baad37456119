package billing

import (
	"fmt"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TargetKind discriminates who an invoice is billed to
type TargetKind string

const (
	TargetKindResident TargetKind = "RESIDENT"
	TargetKindRoom     TargetKind = "ROOM"
)

// IsValid checks if the target kind is valid
func (k TargetKind) IsValid() bool {
	return k == TargetKindResident || k == TargetKindRoom
}

// String returns the string representation of TargetKind
func (k TargetKind) String() string {
	return string(k)
}

// BillTarget identifies the party an invoice is billed to: exactly one
// resident or exactly one room. The tagged form makes the exclusivity
// structural instead of relying on two nullable foreign keys.
type BillTarget struct {
	kind TargetKind
	id   uuid.UUID
}

// NewResidentTarget creates a BillTarget billed to a resident
func NewResidentTarget(residentID uuid.UUID) (BillTarget, error) {
	if residentID == uuid.Nil {
		return BillTarget{}, shared.NewDomainError("INVALID_TARGET", "Resident ID cannot be empty")
	}
	return BillTarget{kind: TargetKindResident, id: residentID}, nil
}

// NewRoomTarget creates a BillTarget billed to a room
func NewRoomTarget(roomID uuid.UUID) (BillTarget, error) {
	if roomID == uuid.Nil {
		return BillTarget{}, shared.NewDomainError("INVALID_TARGET", "Room ID cannot be empty")
	}
	return BillTarget{kind: TargetKindRoom, id: roomID}, nil
}

// NewBillTarget creates a BillTarget from a kind and id pair
func NewBillTarget(kind TargetKind, id uuid.UUID) (BillTarget, error) {
	switch kind {
	case TargetKindResident:
		return NewResidentTarget(id)
	case TargetKindRoom:
		return NewRoomTarget(id)
	default:
		return BillTarget{}, shared.NewDomainError("INVALID_TARGET", fmt.Sprintf("Unknown bill target kind: %s", kind))
	}
}

// Kind returns the discriminator
func (t BillTarget) Kind() TargetKind {
	return t.kind
}

// ID returns the resident or room identifier
func (t BillTarget) ID() uuid.UUID {
	return t.id
}

// IsResident returns true if the target is a resident
func (t BillTarget) IsResident() bool {
	return t.kind == TargetKindResident
}

// IsRoom returns true if the target is a room
func (t BillTarget) IsRoom() bool {
	return t.kind == TargetKindRoom
}

// IsZero returns true if the target is unset
func (t BillTarget) IsZero() bool {
	return t.kind == "" && t.id == uuid.Nil
}

// String returns a "KIND:id" representation for logs
func (t BillTarget) String() string {
	return fmt.Sprintf("%s:%s", t.kind, t.id)
}
