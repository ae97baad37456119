package billing

import (
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterType identifies a utility meter
type MeterType string

const (
	MeterTypeElectricity MeterType = "ELECTRICITY"
	MeterTypeWater       MeterType = "WATER"
)

// IsValid checks if the meter type is valid
func (t MeterType) IsValid() bool {
	return t == MeterTypeElectricity || t == MeterTypeWater
}

// String returns the string representation of MeterType
func (t MeterType) String() string {
	return string(t)
}

// FeeType maps the meter type to the fee rate that prices its consumption
func (t MeterType) FeeType() FeeType {
	if t == MeterTypeWater {
		return FeeTypeWater
	}
	return FeeTypeElectricity
}

// UtilityMeterReading is an absolute meter index recorded for a room in a
// billing period. Consumption is the differential against the most recent
// prior-period reading for the same room and meter type.
type UtilityMeterReading struct {
	shared.BaseAggregateRoot
	RoomID      uuid.UUID                 `json:"room_id"`
	MeterType   MeterType                 `json:"meter_type"`
	Period      valueobject.BillingPeriod `json:"period"`
	IndexValue  decimal.Decimal           `json:"index_value"`
	ReadingDate time.Time                 `json:"reading_date"`
}

// NewUtilityMeterReading records a meter index for a room and period
func NewUtilityMeterReading(roomID uuid.UUID, meterType MeterType, period valueobject.BillingPeriod, indexValue decimal.Decimal, readingDate time.Time) (*UtilityMeterReading, error) {
	if roomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	if !meterType.IsValid() {
		return nil, shared.NewDomainError("INVALID_METER_TYPE", "Unknown meter type")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Billing period is required")
	}
	if indexValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INDEX", "Meter index cannot be negative")
	}
	if readingDate.IsZero() {
		readingDate = time.Now()
	}

	return &UtilityMeterReading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RoomID:            roomID,
		MeterType:         meterType,
		Period:            period,
		IndexValue:        indexValue,
		ReadingDate:       readingDate,
	}, nil
}

// ConsumptionSince returns the differential against a prior reading, or the
// absolute index value when no prior reading exists.
func (r *UtilityMeterReading) ConsumptionSince(prior *UtilityMeterReading) decimal.Decimal {
	if prior == nil {
		return r.IndexValue
	}
	diff := r.IndexValue.Sub(prior.IndexValue)
	if diff.IsNegative() {
		// Meter was replaced or rolled over; bill the new absolute index.
		return r.IndexValue
	}
	return diff
}
