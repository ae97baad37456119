package housing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService drives the room transfer workflow. Completion moves the
// resident's assignment and both occupancy counters inside one transaction,
// re-reading the destination room under lock so concurrent completions into
// the same room cannot exceed its capacity.
type TransferService struct {
	transferRepo housing.RoomTransferRepository
	residentRepo housing.ResidentRepository
	roomRepo     housing.RoomRepository
	txManager    shared.TransactionManager
	logger       *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	transferRepo housing.RoomTransferRepository,
	residentRepo housing.ResidentRepository,
	roomRepo housing.RoomRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		transferRepo: transferRepo,
		residentRepo: residentRepo,
		roomRepo:     roomRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// RequestTransferRequest creates a transfer request
type RequestTransferRequest struct {
	ResidentID        uuid.UUID  `json:"resident_id" binding:"required"`
	DestinationRoomID uuid.UUID  `json:"destination_room_id" binding:"required"`
	RequestedDate     *time.Time `json:"requested_date"`
	Reason            string     `json:"reason"`
}

// SetTransferStatusRequest moves a transfer through its state machine
type SetTransferStatusRequest struct {
	Status     string     `json:"status" binding:"required,oneof=APPROVED REJECTED COMPLETED"`
	ApproverID *uuid.UUID `json:"approver_id"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID                uuid.UUID  `json:"id"`
	ResidentID        uuid.UUID  `json:"resident_id"`
	SourceRoomID      *uuid.UUID `json:"source_room_id,omitempty"`
	DestinationRoomID uuid.UUID  `json:"destination_room_id"`
	RequestedDate     time.Time  `json:"requested_date"`
	Reason            string     `json:"reason,omitempty"`
	Status            string     `json:"status"`
	ApproverID        *uuid.UUID `json:"approver_id,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// RequestTransfer validates the resident and destination room and creates
// a PENDING transfer capturing the resident's current room as source.
func (s *TransferService) RequestTransfer(ctx context.Context, req RequestTransferRequest) (*TransferResponse, error) {
	resident, err := s.residentRepo.FindByID(ctx, req.ResidentID)
	if err != nil {
		return nil, err
	}
	if !resident.IsActivelyRenting() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only actively renting residents can request a transfer")
	}

	outstanding, err := s.transferRepo.HasOutstandingForResident(ctx, req.ResidentID)
	if err != nil {
		return nil, err
	}
	if outstanding {
		return nil, shared.NewDomainError("CONFLICT", "Resident already has an outstanding transfer request")
	}

	destination, err := s.roomRepo.FindByID(ctx, req.DestinationRoomID)
	if err != nil {
		return nil, err
	}
	if destination.IsUnderMaintenance() {
		return nil, shared.NewDomainError("INVALID_STATE", "Destination room is under maintenance")
	}
	if !destination.HasFreeCapacity() {
		return nil, shared.ErrRoomAtCapacity
	}

	requestedDate := time.Now()
	if req.RequestedDate != nil {
		requestedDate = *req.RequestedDate
	}

	transfer, err := housing.NewRoomTransfer(req.ResidentID, resident.RoomID, req.DestinationRoomID, requestedDate, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.transferRepo.Save(ctx, transfer); err != nil {
		return nil, err
	}

	s.logger.Info("Room transfer requested",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("resident_id", req.ResidentID.String()),
		zap.String("destination_room_id", req.DestinationRoomID.String()))

	return toTransferResponse(transfer), nil
}

// SetStatus transitions a transfer. COMPLETED re-validates destination
// capacity at execution time and moves the resident and both occupancy
// counters in the same transaction.
func (s *TransferService) SetStatus(ctx context.Context, id uuid.UUID, req SetTransferStatusRequest) (*TransferResponse, error) {
	var transfer *housing.RoomTransfer

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.transferRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		switch housing.TransferStatus(req.Status) {
		case housing.TransferStatusApproved:
			if req.ApproverID == nil {
				return shared.NewDomainError("INVALID_APPROVER", "Approver is required for approval")
			}
			if err := transfer.Approve(*req.ApproverID); err != nil {
				return err
			}
		case housing.TransferStatusRejected:
			if err := transfer.Reject(); err != nil {
				return err
			}
		case housing.TransferStatusCompleted:
			if err := s.complete(txCtx, transfer); err != nil {
				return err
			}
		default:
			return shared.NewDomainError("INVALID_STATUS", "Unknown transfer status")
		}

		return s.transferRepo.Save(txCtx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Room transfer status changed",
		zap.String("transfer_id", id.String()),
		zap.String("status", transfer.Status.String()))

	return toTransferResponse(transfer), nil
}

// complete moves the resident's assignment and both occupancy counters.
// Runs inside the caller's transaction.
func (s *TransferService) complete(ctx context.Context, transfer *housing.RoomTransfer) error {
	// Capacity is re-checked under lock, not trusted from request time
	destination, err := s.roomRepo.FindByIDForUpdate(ctx, transfer.DestinationRoomID)
	if err != nil {
		return err
	}
	if destination.IsUnderMaintenance() {
		return shared.NewDomainError("INVALID_STATE", "Destination room is under maintenance")
	}

	if err := transfer.MarkCompleted(); err != nil {
		return err
	}

	if err := destination.AddOccupant(); err != nil {
		return err
	}
	if err := s.roomRepo.Save(ctx, destination); err != nil {
		return err
	}

	if transfer.SourceRoomID != nil {
		source, err := s.roomRepo.FindByIDForUpdate(ctx, *transfer.SourceRoomID)
		if err != nil {
			return err
		}
		if err := source.RemoveOccupant(); err != nil {
			return err
		}
		if err := s.roomRepo.Save(ctx, source); err != nil {
			return err
		}
	}

	resident, err := s.residentRepo.FindByID(ctx, transfer.ResidentID)
	if err != nil {
		return err
	}
	if err := resident.AssignRoom(transfer.DestinationRoomID); err != nil {
		return err
	}
	return s.residentRepo.Save(ctx, resident)
}

// GetTransfer returns a transfer by id
func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(transfer), nil
}

// ListTransfers lists transfers with pagination
func (s *TransferService) ListTransfers(ctx context.Context, filter shared.Filter) (*shared.Paginated[*TransferResponse], error) {
	page, err := s.transferRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]*TransferResponse, len(page.Items))
	for i, t := range page.Items {
		responses[i] = toTransferResponse(t)
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// DeleteTransfer removes a transfer while it is still PENDING or REJECTED.
// Approved and completed transfers are kept as audit trail.
func (s *TransferService) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !transfer.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Approved or completed transfers cannot be deleted")
	}
	if err := s.transferRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Room transfer deleted", zap.String("transfer_id", id.String()))
	return nil
}

func toTransferResponse(t *housing.RoomTransfer) *TransferResponse {
	return &TransferResponse{
		ID:                t.ID,
		ResidentID:        t.ResidentID,
		SourceRoomID:      t.SourceRoomID,
		DestinationRoomID: t.DestinationRoomID,
		RequestedDate:     t.RequestedDate,
		Reason:            t.Reason,
		Status:            t.Status.String(),
		ApproverID:        t.ApproverID,
		CompletedAt:       t.CompletedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
