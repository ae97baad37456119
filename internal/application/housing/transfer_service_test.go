package housing

import (
	"context"
	"testing"
	"time"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	transferRepo *MockRoomTransferRepository
	residentRepo *MockResidentRepository
	roomRepo     *MockRoomRepository
	svc          *TransferService
}

func newTransferFixture() *transferFixture {
	f := &transferFixture{
		transferRepo: new(MockRoomTransferRepository),
		residentRepo: new(MockResidentRepository),
		roomRepo:     new(MockRoomRepository),
	}
	f.svc = NewTransferService(f.transferRepo, f.residentRepo, f.roomRepo, &fakeTxManager{}, nil)
	return f
}

func rentingResident(t *testing.T, roomID uuid.UUID) *housing.Resident {
	resident, err := housing.NewResident("Le Van C", "c@example.com", "0900000003")
	require.NoError(t, err)
	require.NoError(t, resident.AssignRoom(roomID))
	return resident
}

func roomWithOccupancy(t *testing.T, number string, capacity, occupancy int) *housing.Room {
	room, err := housing.NewRoom(number, 1, capacity, decimal.NewFromInt(1200000))
	require.NoError(t, err)
	for i := 0; i < occupancy; i++ {
		require.NoError(t, room.AddOccupant())
	}
	return room
}

func approvedTransfer(t *testing.T, residentID uuid.UUID, sourceRoomID *uuid.UUID, destRoomID uuid.UUID) *housing.RoomTransfer {
	transfer, err := housing.NewRoomTransfer(residentID, sourceRoomID, destRoomID, time.Now(), "closer to campus")
	require.NoError(t, err)
	require.NoError(t, transfer.Approve(uuid.New()))
	return transfer
}

// =============================================================================
// RequestTransfer
// =============================================================================

func TestTransferService_RequestTransfer(t *testing.T) {
	f := newTransferFixture()

	source := roomWithOccupancy(t, "A-101", 4, 1)
	destination := roomWithOccupancy(t, "B-202", 4, 2)
	resident := rentingResident(t, source.ID)

	f.residentRepo.On("FindByID", mock.Anything, resident.ID).Return(resident, nil)
	f.transferRepo.On("HasOutstandingForResident", mock.Anything, resident.ID).Return(false, nil)
	f.roomRepo.On("FindByID", mock.Anything, destination.ID).Return(destination, nil)
	f.transferRepo.On("Save", mock.Anything, mock.AnythingOfType("*housing.RoomTransfer")).Return(nil)

	resp, err := f.svc.RequestTransfer(context.Background(), RequestTransferRequest{
		ResidentID:        resident.ID,
		DestinationRoomID: destination.ID,
		Reason:            "closer to campus",
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	require.NotNil(t, resp.SourceRoomID)
	assert.Equal(t, source.ID, *resp.SourceRoomID)
	assert.Equal(t, destination.ID, resp.DestinationRoomID)
}

func TestTransferService_RequestTransfer_DestinationFull(t *testing.T) {
	f := newTransferFixture()

	source := roomWithOccupancy(t, "A-101", 4, 1)
	destination := roomWithOccupancy(t, "B-202", 2, 2)
	resident := rentingResident(t, source.ID)

	f.residentRepo.On("FindByID", mock.Anything, resident.ID).Return(resident, nil)
	f.transferRepo.On("HasOutstandingForResident", mock.Anything, resident.ID).Return(false, nil)
	f.roomRepo.On("FindByID", mock.Anything, destination.ID).Return(destination, nil)

	_, err := f.svc.RequestTransfer(context.Background(), RequestTransferRequest{
		ResidentID:        resident.ID,
		DestinationRoomID: destination.ID,
	})
	assert.ErrorIs(t, err, shared.ErrRoomAtCapacity)
	f.transferRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTransferService_RequestTransfer_OutstandingConflict(t *testing.T) {
	f := newTransferFixture()

	resident := rentingResident(t, uuid.New())
	f.residentRepo.On("FindByID", mock.Anything, resident.ID).Return(resident, nil)
	f.transferRepo.On("HasOutstandingForResident", mock.Anything, resident.ID).Return(true, nil)

	_, err := f.svc.RequestTransfer(context.Background(), RequestTransferRequest{
		ResidentID:        resident.ID,
		DestinationRoomID: uuid.New(),
	})
	assert.True(t, shared.IsConflict(err))
}

func TestTransferService_RequestTransfer_NotRenting(t *testing.T) {
	f := newTransferFixture()

	resident, err := housing.NewResident("Pham Thi D", "d@example.com", "0900000004")
	require.NoError(t, err)
	f.residentRepo.On("FindByID", mock.Anything, resident.ID).Return(resident, nil)

	_, err = f.svc.RequestTransfer(context.Background(), RequestTransferRequest{
		ResidentID:        resident.ID,
		DestinationRoomID: uuid.New(),
	})
	require.Error(t, err)
}

// =============================================================================
// SetStatus
// =============================================================================

func TestTransferService_SetStatus_Approve(t *testing.T) {
	f := newTransferFixture()

	sourceID := uuid.New()
	transfer, err := housing.NewRoomTransfer(uuid.New(), &sourceID, uuid.New(), time.Now(), "")
	require.NoError(t, err)

	f.transferRepo.On("FindByIDForUpdate", mock.Anything, transfer.ID).Return(transfer, nil)
	f.transferRepo.On("Save", mock.Anything, transfer).Return(nil)

	approver := uuid.New()
	resp, err := f.svc.SetStatus(context.Background(), transfer.ID, SetTransferStatusRequest{
		Status:     "APPROVED",
		ApproverID: &approver,
	})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)
	require.NotNil(t, resp.ApproverID)
	assert.Equal(t, approver, *resp.ApproverID)
}

func TestTransferService_SetStatus_ApproveWithoutApprover(t *testing.T) {
	f := newTransferFixture()

	transfer, err := housing.NewRoomTransfer(uuid.New(), nil, uuid.New(), time.Now(), "")
	require.NoError(t, err)
	f.transferRepo.On("FindByIDForUpdate", mock.Anything, transfer.ID).Return(transfer, nil)

	_, err = f.svc.SetStatus(context.Background(), transfer.ID, SetTransferStatusRequest{Status: "APPROVED"})
	require.Error(t, err)
	f.transferRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTransferService_SetStatus_Complete_MovesOccupancy(t *testing.T) {
	f := newTransferFixture()

	source := roomWithOccupancy(t, "A-101", 4, 2)
	destination := roomWithOccupancy(t, "B-202", 4, 1)
	resident := rentingResident(t, source.ID)
	transfer := approvedTransfer(t, resident.ID, &source.ID, destination.ID)

	f.transferRepo.On("FindByIDForUpdate", mock.Anything, transfer.ID).Return(transfer, nil)
	f.roomRepo.On("FindByIDForUpdate", mock.Anything, destination.ID).Return(destination, nil)
	f.roomRepo.On("FindByIDForUpdate", mock.Anything, source.ID).Return(source, nil)
	f.roomRepo.On("Save", mock.Anything, mock.AnythingOfType("*housing.Room")).Return(nil)
	f.residentRepo.On("FindByID", mock.Anything, resident.ID).Return(resident, nil)
	f.residentRepo.On("Save", mock.Anything, resident).Return(nil)
	f.transferRepo.On("Save", mock.Anything, transfer).Return(nil)

	resp, err := f.svc.SetStatus(context.Background(), transfer.ID, SetTransferStatusRequest{Status: "COMPLETED"})
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", resp.Status)
	assert.NotNil(t, resp.CompletedAt)
	assert.Equal(t, 2, destination.ActualOccupancy)
	assert.Equal(t, 1, source.ActualOccupancy)
	require.NotNil(t, resident.RoomID)
	assert.Equal(t, destination.ID, *resident.RoomID)
}

func TestTransferService_SetStatus_Complete_DestinationFilledUp(t *testing.T) {
	f := newTransferFixture()

	source := roomWithOccupancy(t, "A-101", 4, 2)
	// Room filled to capacity between approval and completion
	destination := roomWithOccupancy(t, "B-202", 2, 2)
	resident := rentingResident(t, source.ID)
	transfer := approvedTransfer(t, resident.ID, &source.ID, destination.ID)

	f.transferRepo.On("FindByIDForUpdate", mock.Anything, transfer.ID).Return(transfer, nil)
	f.roomRepo.On("FindByIDForUpdate", mock.Anything, destination.ID).Return(destination, nil)

	_, err := f.svc.SetStatus(context.Background(), transfer.ID, SetTransferStatusRequest{Status: "COMPLETED"})
	require.Error(t, err)
	f.roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.residentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTransferService_SetStatus_CompletePending(t *testing.T) {
	f := newTransferFixture()

	destination := roomWithOccupancy(t, "B-202", 4, 0)
	transfer, err := housing.NewRoomTransfer(uuid.New(), nil, destination.ID, time.Now(), "")
	require.NoError(t, err)

	f.transferRepo.On("FindByIDForUpdate", mock.Anything, transfer.ID).Return(transfer, nil)
	f.roomRepo.On("FindByIDForUpdate", mock.Anything, destination.ID).Return(destination, nil)

	// A transfer must be approved before it can complete
	_, err = f.svc.SetStatus(context.Background(), transfer.ID, SetTransferStatusRequest{Status: "COMPLETED"})
	require.Error(t, err)
	assert.Equal(t, 0, destination.ActualOccupancy)
}

// =============================================================================
// DeleteTransfer
// =============================================================================

func TestTransferService_DeleteTransfer(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(t *testing.T, tr *housing.RoomTransfer)
		deletable bool
	}{
		{name: "pending is deletable", prepare: func(t *testing.T, tr *housing.RoomTransfer) {}, deletable: true},
		{
			name:      "rejected is deletable",
			prepare:   func(t *testing.T, tr *housing.RoomTransfer) { require.NoError(t, tr.Reject()) },
			deletable: true,
		},
		{
			name:      "approved is kept",
			prepare:   func(t *testing.T, tr *housing.RoomTransfer) { require.NoError(t, tr.Approve(uuid.New())) },
			deletable: false,
		},
		{
			name: "completed is kept",
			prepare: func(t *testing.T, tr *housing.RoomTransfer) {
				require.NoError(t, tr.Approve(uuid.New()))
				require.NoError(t, tr.MarkCompleted())
			},
			deletable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture()
			transfer, err := housing.NewRoomTransfer(uuid.New(), nil, uuid.New(), time.Now(), "")
			require.NoError(t, err)
			tt.prepare(t, transfer)

			f.transferRepo.On("FindByID", mock.Anything, transfer.ID).Return(transfer, nil)
			if tt.deletable {
				f.transferRepo.On("Delete", mock.Anything, transfer.ID).Return(nil)
			}

			err = f.svc.DeleteTransfer(context.Background(), transfer.ID)
			if tt.deletable {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				f.transferRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
		})
	}
}
