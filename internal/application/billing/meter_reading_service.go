package billing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MeterReadingService records and queries utility meter readings
type MeterReadingService struct {
	meterRepo billing.MeterReadingRepository
	logger    *zap.Logger
}

// RecordReadingRequest records a meter index for a room and period
type RecordReadingRequest struct {
	RoomID      uuid.UUID       `json:"room_id" binding:"required"`
	MeterType   string          `json:"meter_type" binding:"required,oneof=ELECTRICITY WATER"`
	Period      string          `json:"period" binding:"required"`
	IndexValue  decimal.Decimal `json:"index_value" binding:"required"`
	ReadingDate *time.Time      `json:"reading_date"`
}

// MeterReadingResponse represents a reading in API responses
type MeterReadingResponse struct {
	ID          uuid.UUID       `json:"id"`
	RoomID      uuid.UUID       `json:"room_id"`
	MeterType   string          `json:"meter_type"`
	Period      string          `json:"period"`
	IndexValue  decimal.Decimal `json:"index_value"`
	Consumption decimal.Decimal `json:"consumption"`
	ReadingDate time.Time       `json:"reading_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewMeterReadingService creates a new MeterReadingService
func NewMeterReadingService(meterRepo billing.MeterReadingRepository, logger *zap.Logger) *MeterReadingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeterReadingService{meterRepo: meterRepo, logger: logger}
}

// RecordReading stores a meter reading and returns it with the computed
// consumption differential.
func (s *MeterReadingService) RecordReading(ctx context.Context, req RecordReadingRequest) (*MeterReadingResponse, error) {
	period, err := valueobject.ParseBillingPeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	readingDate := time.Now()
	if req.ReadingDate != nil {
		readingDate = *req.ReadingDate
	}

	reading, err := billing.NewUtilityMeterReading(req.RoomID, billing.MeterType(req.MeterType), period, req.IndexValue, readingDate)
	if err != nil {
		return nil, err
	}

	if err := s.meterRepo.Save(ctx, reading); err != nil {
		return nil, err
	}

	s.logger.Info("Meter reading recorded",
		zap.String("room_id", req.RoomID.String()),
		zap.String("meter_type", req.MeterType),
		zap.String("period", period.String()),
		zap.String("index", req.IndexValue.String()))

	return s.toResponse(ctx, reading)
}

// GetReading returns a reading with its consumption differential
func (s *MeterReadingService) GetReading(ctx context.Context, id uuid.UUID) (*MeterReadingResponse, error) {
	reading, err := s.meterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, reading)
}

// ListReadingsByPeriod lists all readings of a billing period
func (s *MeterReadingService) ListReadingsByPeriod(ctx context.Context, periodStr string) ([]*MeterReadingResponse, error) {
	period, err := valueobject.ParseBillingPeriod(periodStr)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	readings, err := s.meterRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	responses := make([]*MeterReadingResponse, len(readings))
	for i, r := range readings {
		resp, err := s.toResponse(ctx, r)
		if err != nil {
			return nil, err
		}
		responses[i] = resp
	}
	return responses, nil
}

// DeleteReading removes a reading
func (s *MeterReadingService) DeleteReading(ctx context.Context, id uuid.UUID) error {
	if _, err := s.meterRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.meterRepo.Delete(ctx, id)
}

func (s *MeterReadingService) toResponse(ctx context.Context, reading *billing.UtilityMeterReading) (*MeterReadingResponse, error) {
	prior, err := s.meterRepo.FindLatestPrior(ctx, reading.RoomID, reading.MeterType, reading.Period)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	return &MeterReadingResponse{
		ID:          reading.ID,
		RoomID:      reading.RoomID,
		MeterType:   reading.MeterType.String(),
		Period:      reading.Period.String(),
		IndexValue:  reading.IndexValue,
		Consumption: reading.ConsumptionSince(prior),
		ReadingDate: reading.ReadingDate,
		CreatedAt:   reading.CreatedAt,
	}, nil
}
