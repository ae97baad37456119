package billing

import (
	"context"
	"testing"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFeeRateService_CreateFeeRate_ClosesPreviousOpenRate(t *testing.T) {
	feeRateRepo := new(MockFeeRateRepository)
	svc := NewFeeRateService(feeRateRepo, fakeTxManager{}, nil)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prev, err := billing.NewFeeRate(billing.FeeTypeElectricity, nil, decimal.NewFromInt(3200), from.AddDate(-1, 0, 0), nil)
	require.NoError(t, err)

	feeRateRepo.On("FindActiveRate", mock.Anything, billing.FeeTypeElectricity, (*housing.VehicleType)(nil), from).Return(prev, nil)
	feeRateRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FeeRate")).Return(nil)

	resp, err := svc.CreateFeeRate(context.Background(), CreateFeeRateRequest{
		FeeType:       "ELECTRICITY",
		UnitPrice:     decimal.NewFromInt(3500),
		EffectiveFrom: from,
	})
	require.NoError(t, err)

	assert.True(t, resp.UnitPrice.Equal(decimal.NewFromInt(3500)))
	assert.True(t, resp.Active)
	// Previous open-ended rate got an end date matching the new rate's start
	require.NotNil(t, prev.EffectiveTo)
	assert.True(t, prev.EffectiveTo.Equal(from))
	feeRateRepo.AssertNumberOfCalls(t, "Save", 2)
}

func TestFeeRateService_CreateFeeRate_CloseAndCreateInOneTransaction(t *testing.T) {
	feeRateRepo := new(MockFeeRateRepository)
	txManager := &countingTxManager{}
	svc := NewFeeRateService(feeRateRepo, txManager, nil)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prev, err := billing.NewFeeRate(billing.FeeTypeElectricity, nil, decimal.NewFromInt(3200), from.AddDate(-1, 0, 0), nil)
	require.NoError(t, err)

	feeRateRepo.On("FindActiveRate", mock.Anything, billing.FeeTypeElectricity, (*housing.VehicleType)(nil), from).Return(prev, nil)
	feeRateRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FeeRate")).Return(nil)

	_, err = svc.CreateFeeRate(context.Background(), CreateFeeRateRequest{
		FeeType:       "ELECTRICITY",
		UnitPrice:     decimal.NewFromInt(3500),
		EffectiveFrom: from,
	})
	require.NoError(t, err)

	// Both saves ran inside a single unit of work
	feeRateRepo.AssertNumberOfCalls(t, "Save", 2)
	assert.Equal(t, 1, txManager.calls)
}

func TestFeeRateService_CreateFeeRate_NoPriorRate(t *testing.T) {
	feeRateRepo := new(MockFeeRateRepository)
	svc := NewFeeRateService(feeRateRepo, fakeTxManager{}, nil)

	vt := "MOTORBIKE"
	mbType := housing.VehicleTypeMotorbike
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	feeRateRepo.On("FindActiveRate", mock.Anything, billing.FeeTypeParking, &mbType, from).Return(nil, shared.ErrNotFound)
	feeRateRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.FeeRate")).Return(nil)

	resp, err := svc.CreateFeeRate(context.Background(), CreateFeeRateRequest{
		FeeType:       "PARKING",
		VehicleType:   &vt,
		UnitPrice:     decimal.NewFromInt(100000),
		EffectiveFrom: from,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.VehicleType)
	assert.Equal(t, "MOTORBIKE", *resp.VehicleType)
	feeRateRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestFeeRateService_CreateFeeRate_ParkingRequiresVehicleType(t *testing.T) {
	svc := NewFeeRateService(new(MockFeeRateRepository), fakeTxManager{}, nil)

	_, err := svc.CreateFeeRate(context.Background(), CreateFeeRateRequest{
		FeeType:       "PARKING",
		UnitPrice:     decimal.NewFromInt(100000),
		EffectiveFrom: time.Now(),
	})
	require.Error(t, err)
}

func TestFeeRateService_DeactivateFeeRate(t *testing.T) {
	feeRateRepo := new(MockFeeRateRepository)
	svc := NewFeeRateService(feeRateRepo, fakeTxManager{}, nil)

	rate, err := billing.NewFeeRate(billing.FeeTypeWater, nil, decimal.NewFromInt(15000), time.Now().AddDate(-1, 0, 0), nil)
	require.NoError(t, err)

	feeRateRepo.On("FindByID", mock.Anything, rate.ID).Return(rate, nil)
	feeRateRepo.On("Save", mock.Anything, rate).Return(nil)

	resp, err := svc.DeactivateFeeRate(context.Background(), rate.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)
}
