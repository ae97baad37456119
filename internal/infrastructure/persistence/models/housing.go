package models

import (
	"time"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoomModel is the persistence model for the Room aggregate root.
type RoomModel struct {
	AggregateModel
	Number          string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	Floor           int                `gorm:"not null"`
	Capacity        int                `gorm:"not null"`
	ActualOccupancy int                `gorm:"not null;default:0"`
	MonthlyFee      decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Status          housing.RoomStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the persistence model to a domain Room aggregate.
func (m *RoomModel) ToDomain() *housing.Room {
	return &housing.Room{
		BaseAggregateRoot: m.aggregateRoot(),
		Number:            m.Number,
		Floor:             m.Floor,
		Capacity:          m.Capacity,
		ActualOccupancy:   m.ActualOccupancy,
		MonthlyFee:        m.MonthlyFee,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Room aggregate.
func (m *RoomModel) FromDomain(r *housing.Room) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Number = r.Number
	m.Floor = r.Floor
	m.Capacity = r.Capacity
	m.ActualOccupancy = r.ActualOccupancy
	m.MonthlyFee = r.MonthlyFee
	m.Status = r.Status
}

// RoomModelFromDomain creates a new persistence model from a domain Room.
func RoomModelFromDomain(r *housing.Room) *RoomModel {
	m := &RoomModel{}
	m.FromDomain(r)
	return m
}

// ResidentModel is the persistence model for the Resident aggregate root.
type ResidentModel struct {
	AggregateModel
	FullName string                 `gorm:"type:varchar(200);not null"`
	Email    string                 `gorm:"type:varchar(200);index"`
	Phone    string                 `gorm:"type:varchar(50);index"`
	Status   housing.ResidentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RoomID   *uuid.UUID             `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ResidentModel) TableName() string {
	return "residents"
}

// ToDomain converts the persistence model to a domain Resident aggregate.
func (m *ResidentModel) ToDomain() *housing.Resident {
	return &housing.Resident{
		BaseAggregateRoot: m.aggregateRoot(),
		FullName:          m.FullName,
		Email:             m.Email,
		Phone:             m.Phone,
		Status:            m.Status,
		RoomID:            m.RoomID,
	}
}

// FromDomain populates the persistence model from a domain Resident aggregate.
func (m *ResidentModel) FromDomain(r *housing.Resident) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.FullName = r.FullName
	m.Email = r.Email
	m.Phone = r.Phone
	m.Status = r.Status
	m.RoomID = r.RoomID
}

// ResidentModelFromDomain creates a new persistence model from a domain Resident.
func ResidentModelFromDomain(r *housing.Resident) *ResidentModel {
	m := &ResidentModel{}
	m.FromDomain(r)
	return m
}

// VehicleModel is the persistence model for the Vehicle aggregate root.
type VehicleModel struct {
	AggregateModel
	ResidentID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Type         housing.VehicleType `gorm:"type:varchar(20);not null"`
	LicensePlate string              `gorm:"type:varchar(20);not null;index"`
	Active       bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a domain Vehicle aggregate.
func (m *VehicleModel) ToDomain() *housing.Vehicle {
	return &housing.Vehicle{
		BaseAggregateRoot: m.aggregateRoot(),
		ResidentID:        m.ResidentID,
		Type:              m.Type,
		LicensePlate:      m.LicensePlate,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vehicle aggregate.
func (m *VehicleModel) FromDomain(v *housing.Vehicle) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.ResidentID = v.ResidentID
	m.Type = v.Type
	m.LicensePlate = v.LicensePlate
	m.Active = v.Active
}

// VehicleModelFromDomain creates a new persistence model from a domain Vehicle.
func VehicleModelFromDomain(v *housing.Vehicle) *VehicleModel {
	m := &VehicleModel{}
	m.FromDomain(v)
	return m
}

// RoomTransferModel is the persistence model for the RoomTransfer aggregate root.
type RoomTransferModel struct {
	AggregateModel
	ResidentID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	SourceRoomID      *uuid.UUID             `gorm:"type:uuid"`
	DestinationRoomID uuid.UUID              `gorm:"type:uuid;not null;index"`
	RequestedDate     time.Time              `gorm:"not null"`
	Reason            string                 `gorm:"type:text"`
	Status            housing.TransferStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApproverID        *uuid.UUID             `gorm:"type:uuid"`
	CompletedAt       *time.Time             ``
}

// TableName returns the table name for GORM
func (RoomTransferModel) TableName() string {
	return "room_transfers"
}

// ToDomain converts the persistence model to a domain RoomTransfer aggregate.
func (m *RoomTransferModel) ToDomain() *housing.RoomTransfer {
	return &housing.RoomTransfer{
		BaseAggregateRoot: m.aggregateRoot(),
		ResidentID:        m.ResidentID,
		SourceRoomID:      m.SourceRoomID,
		DestinationRoomID: m.DestinationRoomID,
		RequestedDate:     m.RequestedDate,
		Reason:            m.Reason,
		Status:            m.Status,
		ApproverID:        m.ApproverID,
		CompletedAt:       m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain RoomTransfer.
func (m *RoomTransferModel) FromDomain(t *housing.RoomTransfer) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ResidentID = t.ResidentID
	m.SourceRoomID = t.SourceRoomID
	m.DestinationRoomID = t.DestinationRoomID
	m.RequestedDate = t.RequestedDate
	m.Reason = t.Reason
	m.Status = t.Status
	m.ApproverID = t.ApproverID
	m.CompletedAt = t.CompletedAt
}

// RoomTransferModelFromDomain creates a new persistence model from a domain transfer.
func RoomTransferModelFromDomain(t *housing.RoomTransfer) *RoomTransferModel {
	m := &RoomTransferModel{}
	m.FromDomain(t)
	return m
}
