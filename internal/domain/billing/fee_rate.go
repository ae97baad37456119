package billing

import (
	"time"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeType classifies what a fee rate prices
type FeeType string

const (
	FeeTypeRoom        FeeType = "ROOM"
	FeeTypeElectricity FeeType = "ELECTRICITY"
	FeeTypeWater       FeeType = "WATER"
	FeeTypeParking     FeeType = "PARKING"
)

// IsValid checks if the fee type is valid
func (t FeeType) IsValid() bool {
	switch t {
	case FeeTypeRoom, FeeTypeElectricity, FeeTypeWater, FeeTypeParking:
		return true
	}
	return false
}

// String returns the string representation of FeeType
func (t FeeType) String() string {
	return string(t)
}

// ItemType maps a fee type to the invoice item type it produces
func (t FeeType) ItemType() ItemType {
	switch t {
	case FeeTypeRoom:
		return ItemTypeRoomFee
	case FeeTypeElectricity:
		return ItemTypeElectricity
	case FeeTypeWater:
		return ItemTypeWater
	case FeeTypeParking:
		return ItemTypeParking
	default:
		return ItemTypeOther
	}
}

// FeeRate is a versioned price entry in the fee rate registry. Parking
// rates carry a vehicle-type qualifier; utility and room rates do not.
// At most one active open-ended rate per (fee type, vehicle type) pair is
// enforced administratively, not by the aggregate.
type FeeRate struct {
	shared.BaseAggregateRoot
	FeeType       FeeType              `json:"fee_type"`
	VehicleType   *housing.VehicleType `json:"vehicle_type"` // only set for PARKING rates
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	EffectiveFrom time.Time            `json:"effective_from"`
	EffectiveTo   *time.Time           `json:"effective_to"` // nil = open-ended
	Active        bool                 `json:"active"`
}

// NewFeeRate creates a fee rate entry
func NewFeeRate(feeType FeeType, vehicleType *housing.VehicleType, unitPrice decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time) (*FeeRate, error) {
	if !feeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEE_TYPE", "Unknown fee type")
	}
	if feeType == FeeTypeParking {
		if vehicleType == nil || !vehicleType.IsValid() {
			return nil, shared.NewDomainError("INVALID_VEHICLE_TYPE", "Parking rates require a valid vehicle type")
		}
	} else if vehicleType != nil {
		return nil, shared.NewDomainError("INVALID_VEHICLE_TYPE", "Only parking rates may carry a vehicle type")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Effective-from date is required")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Effective-to must be after effective-from")
	}

	return &FeeRate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FeeType:           feeType,
		VehicleType:       vehicleType,
		UnitPrice:         unitPrice,
		EffectiveFrom:     effectiveFrom,
		EffectiveTo:       effectiveTo,
		Active:            true,
	}, nil
}

// IsEffectiveAt reports whether the rate applies at the given time
func (fr *FeeRate) IsEffectiveAt(t time.Time) bool {
	if !fr.Active {
		return false
	}
	if t.Before(fr.EffectiveFrom) {
		return false
	}
	if fr.EffectiveTo != nil && !t.Before(*fr.EffectiveTo) {
		return false
	}
	return true
}

// Deactivate retires the rate
func (fr *FeeRate) Deactivate() {
	fr.Active = false
	fr.Touch()
	fr.IncrementVersion()
}

// Close sets the effective-to date, ending the rate's validity window
func (fr *FeeRate) Close(effectiveTo time.Time) error {
	if !effectiveTo.After(fr.EffectiveFrom) {
		return shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Effective-to must be after effective-from")
	}
	fr.EffectiveTo = &effectiveTo
	fr.Touch()
	fr.IncrementVersion()
	return nil
}
