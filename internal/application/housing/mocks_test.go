package housing

import (
	"context"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Shared mocks for housing application service tests
// =============================================================================

type fakeTxManager struct{}

func (fakeTxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockRoomTransferRepository is a mock housing.RoomTransferRepository
type MockRoomTransferRepository struct {
	mock.Mock
}

func (m *MockRoomTransferRepository) Save(ctx context.Context, transfer *housing.RoomTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockRoomTransferRepository) SaveWithLock(ctx context.Context, transfer *housing.RoomTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockRoomTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.RoomTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*housing.RoomTransfer), args.Error(1)
}

func (m *MockRoomTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*housing.RoomTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*housing.RoomTransfer), args.Error(1)
}

func (m *MockRoomTransferRepository) HasOutstandingForResident(ctx context.Context, residentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, residentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomTransferRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.RoomTransfer], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*housing.RoomTransfer]), args.Error(1)
}

func (m *MockRoomTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResidentRepository is a mock housing.ResidentRepository
type MockResidentRepository struct {
	mock.Mock
}

func (m *MockResidentRepository) Save(ctx context.Context, resident *housing.Resident) error {
	args := m.Called(ctx, resident)
	return args.Error(0)
}

func (m *MockResidentRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Resident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*housing.Resident), args.Error(1)
}

func (m *MockResidentRepository) FindActivelyRentingWithRoom(ctx context.Context) ([]*housing.Resident, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*housing.Resident), args.Error(1)
}

func (m *MockResidentRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.Resident], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*housing.Resident]), args.Error(1)
}

func (m *MockResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoomRepository is a mock housing.RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Save(ctx context.Context, room *housing.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) SaveWithLock(ctx context.Context, room *housing.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*housing.Room), args.Error(1)
}

func (m *MockRoomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*housing.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*housing.Room), args.Error(1)
}

func (m *MockRoomRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*housing.Room], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*housing.Room]), args.Error(1)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
