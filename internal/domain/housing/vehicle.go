package housing

import (
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleType classifies a registered vehicle for parking billing
type VehicleType string

const (
	VehicleTypeMotorbike    VehicleType = "MOTORBIKE"
	VehicleTypeCar          VehicleType = "CAR"
	VehicleTypeBicycle      VehicleType = "BICYCLE"
	VehicleTypeElectricBike VehicleType = "ELECTRIC_BIKE"
)

// IsValid checks if the vehicle type is valid
func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeMotorbike, VehicleTypeCar, VehicleTypeBicycle, VehicleTypeElectricBike:
		return true
	}
	return false
}

// String returns the string representation of VehicleType
func (t VehicleType) String() string {
	return string(t)
}

// Vehicle is a parking registration owned by a resident
type Vehicle struct {
	shared.BaseAggregateRoot
	ResidentID   uuid.UUID   `json:"resident_id"`
	Type         VehicleType `json:"type"`
	LicensePlate string      `json:"license_plate"`
	Active       bool        `json:"active"`
}

// NewVehicle registers a vehicle for a resident
func NewVehicle(residentID uuid.UUID, vehicleType VehicleType, licensePlate string) (*Vehicle, error) {
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if !vehicleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VEHICLE_TYPE", "Unknown vehicle type")
	}

	return &Vehicle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ResidentID:        residentID,
		Type:              vehicleType,
		LicensePlate:      licensePlate,
		Active:            true,
	}, nil
}

// Deactivate ends the parking registration
func (v *Vehicle) Deactivate() {
	v.Active = false
	v.Touch()
	v.IncrementVersion()
}
