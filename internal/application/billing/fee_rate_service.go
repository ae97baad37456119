package billing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeRateService manages the fee rate registry
type FeeRateService struct {
	feeRateRepo billing.FeeRateRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewFeeRateService creates a new FeeRateService
func NewFeeRateService(feeRateRepo billing.FeeRateRepository, txManager shared.TransactionManager, logger *zap.Logger) *FeeRateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeRateService{feeRateRepo: feeRateRepo, txManager: txManager, logger: logger}
}

// CreateFeeRateRequest registers a new rate
type CreateFeeRateRequest struct {
	FeeType       string          `json:"fee_type" binding:"required,oneof=ROOM ELECTRICITY WATER PARKING"`
	VehicleType   *string         `json:"vehicle_type"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	EffectiveFrom time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time      `json:"effective_to"`
}

// FeeRateResponse represents a fee rate in API responses
type FeeRateResponse struct {
	ID            uuid.UUID       `json:"id"`
	FeeType       string          `json:"fee_type"`
	VehicleType   *string         `json:"vehicle_type,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateFeeRate registers a new rate, closing the previous open-ended
// active rate for the same (fee type, vehicle type) pair so at most one
// stays open.
func (s *FeeRateService) CreateFeeRate(ctx context.Context, req CreateFeeRateRequest) (*FeeRateResponse, error) {
	var vehicleType *housing.VehicleType
	if req.VehicleType != nil {
		vt := housing.VehicleType(*req.VehicleType)
		vehicleType = &vt
	}

	rate, err := billing.NewFeeRate(billing.FeeType(req.FeeType), vehicleType, req.UnitPrice, req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}

	// Closing the previous window and opening the new one is one unit of
	// work; a failure between the two would leave no open rate at all.
	err = s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if prev, err := s.feeRateRepo.FindActiveRate(txCtx, rate.FeeType, vehicleType, req.EffectiveFrom); err == nil {
			if prev.EffectiveTo == nil {
				if err := prev.Close(req.EffectiveFrom); err != nil {
					return err
				}
				if err := s.feeRateRepo.Save(txCtx, prev); err != nil {
					return err
				}
			}
		} else if !shared.IsNotFound(err) {
			return err
		}

		return s.feeRateRepo.Save(txCtx, rate)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fee rate created",
		zap.String("fee_rate_id", rate.ID.String()),
		zap.String("fee_type", rate.FeeType.String()),
		zap.String("unit_price", rate.UnitPrice.String()))

	return toFeeRateResponse(rate), nil
}

// GetFeeRate returns a rate by id
func (s *FeeRateService) GetFeeRate(ctx context.Context, id uuid.UUID) (*FeeRateResponse, error) {
	rate, err := s.feeRateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFeeRateResponse(rate), nil
}

// ListFeeRates lists rates with pagination
func (s *FeeRateService) ListFeeRates(ctx context.Context, filter shared.Filter) (*shared.Paginated[*FeeRateResponse], error) {
	page, err := s.feeRateRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]*FeeRateResponse, len(page.Items))
	for i, r := range page.Items {
		responses[i] = toFeeRateResponse(r)
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// DeactivateFeeRate retires a rate
func (s *FeeRateService) DeactivateFeeRate(ctx context.Context, id uuid.UUID) (*FeeRateResponse, error) {
	rate, err := s.feeRateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rate.Deactivate()
	if err := s.feeRateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}

	s.logger.Info("Fee rate deactivated", zap.String("fee_rate_id", id.String()))
	return toFeeRateResponse(rate), nil
}

func toFeeRateResponse(rate *billing.FeeRate) *FeeRateResponse {
	var vehicleType *string
	if rate.VehicleType != nil {
		vt := rate.VehicleType.String()
		vehicleType = &vt
	}
	return &FeeRateResponse{
		ID:            rate.ID,
		FeeType:       rate.FeeType.String(),
		VehicleType:   vehicleType,
		UnitPrice:     rate.UnitPrice,
		EffectiveFrom: rate.EffectiveFrom,
		EffectiveTo:   rate.EffectiveTo,
		Active:        rate.Active,
		CreatedAt:     rate.CreatedAt,
		UpdatedAt:     rate.UpdatedAt,
	}
}
