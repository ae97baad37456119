package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BulkInvoiceService batch-generates the recurring invoices of a billing
// period: room fees, parking fees and metered utilities. The run as a
// whole is not transactional; each invoice's creation is. Partial progress
// on failure is acceptable and resumable because every pass re-checks its
// duplicate guard per resident or room.
type BulkInvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	feeRateRepo  billing.FeeRateRepository
	meterRepo    billing.MeterReadingRepository
	residentRepo housing.ResidentRepository
	roomRepo     housing.RoomRepository
	vehicleRepo  housing.VehicleRepository
	txManager    shared.TransactionManager
	dueDays      int
	logger       *zap.Logger
}

// NewBulkInvoiceService creates a new BulkInvoiceService
func NewBulkInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	feeRateRepo billing.FeeRateRepository,
	meterRepo billing.MeterReadingRepository,
	residentRepo housing.ResidentRepository,
	roomRepo housing.RoomRepository,
	vehicleRepo housing.VehicleRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *BulkInvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkInvoiceService{
		invoiceRepo:  invoiceRepo,
		feeRateRepo:  feeRateRepo,
		meterRepo:    meterRepo,
		residentRepo: residentRepo,
		roomRepo:     roomRepo,
		vehicleRepo:  vehicleRepo,
		txManager:    txManager,
		dueDays:      14,
		logger:       logger,
	}
}

// SetInvoiceDueDays overrides the default payment term on generated invoices
func (s *BulkInvoiceService) SetInvoiceDueDays(days int) {
	if days > 0 {
		s.dueDays = days
	}
}

// PassResult summarizes one generation pass
type PassResult struct {
	Created    int         `json:"created"`
	Skipped    int         `json:"skipped"`
	InvoiceIDs []uuid.UUID `json:"invoice_ids"`
}

// GenerationSummary aggregates the three pass results of one run
type GenerationSummary struct {
	Period   string     `json:"period"`
	RoomFees PassResult `json:"room_fees"`
	Parking  PassResult `json:"parking"`
	Utility  PassResult `json:"utility"`
}

// TotalCreated returns the number of invoices created across all passes
func (s *GenerationSummary) TotalCreated() int {
	return s.RoomFees.Created + s.Parking.Created + s.Utility.Created
}

// Generate runs all three passes for the period
func (s *BulkInvoiceService) Generate(ctx context.Context, period valueobject.BillingPeriod) (*GenerationSummary, error) {
	summary := &GenerationSummary{Period: period.String()}

	roomFees, err := s.GenerateRoomFees(ctx, period)
	if err != nil {
		return nil, err
	}
	summary.RoomFees = *roomFees

	parking, err := s.GenerateParkingFees(ctx, period)
	if err != nil {
		return nil, err
	}
	summary.Parking = *parking

	utility, err := s.GenerateUtilityInvoices(ctx, period)
	if err != nil {
		return nil, err
	}
	summary.Utility = *utility

	s.logger.Info("Bulk invoice generation finished",
		zap.String("period", period.String()),
		zap.Int("room_fees", summary.RoomFees.Created),
		zap.Int("parking", summary.Parking.Created),
		zap.Int("utility", summary.Utility.Created))

	return summary, nil
}

// GenerateRoomFees creates one resident-billed invoice with a single
// ROOM_FEE item for every actively-renting resident that has a room
// assignment. Residents already billed for the period are skipped.
func (s *BulkInvoiceService) GenerateRoomFees(ctx context.Context, period valueobject.BillingPeriod) (*PassResult, error) {
	residents, err := s.residentRepo.FindActivelyRentingWithRoom(ctx)
	if err != nil {
		return nil, err
	}

	result := &PassResult{InvoiceIDs: []uuid.UUID{}}
	for _, resident := range residents {
		if !resident.HasRoom() {
			result.Skipped++
			continue
		}

		target, err := billing.NewResidentTarget(resident.ID)
		if err != nil {
			return nil, err
		}

		exists, err := s.invoiceRepo.ExistsForTargetPeriodType(ctx, target, period, billing.ItemTypeRoomFee)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		room, err := s.roomRepo.FindByID(ctx, *resident.RoomID)
		if err != nil {
			return nil, err
		}
		if !room.MonthlyFee.IsPositive() {
			result.Skipped++
			continue
		}

		item, err := billing.NewInvoiceItem(
			billing.ItemTypeRoomFee,
			fmt.Sprintf("Room fee %s room %s", period, room.Number),
			valueobject.NewMoneyVND(room.MonthlyFee),
		)
		if err != nil {
			return nil, err
		}

		invoice, err := s.createInvoice(ctx, target, period, []billing.InvoiceItem{item})
		if err != nil {
			return nil, err
		}

		result.Created++
		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)
	}

	return result, nil
}

// GenerateParkingFees creates one resident-billed invoice with a PARKING
// item per active vehicle registration of an actively-renting resident.
// Vehicles with no matching active fee rate are skipped, not errors.
func (s *BulkInvoiceService) GenerateParkingFees(ctx context.Context, period valueobject.BillingPeriod) (*PassResult, error) {
	vehicles, err := s.vehicleRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	at := period.Start()
	result := &PassResult{InvoiceIDs: []uuid.UUID{}}
	for _, vehicle := range vehicles {
		resident, err := s.residentRepo.FindByID(ctx, vehicle.ResidentID)
		if err != nil {
			if shared.IsNotFound(err) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		if !resident.IsActivelyRenting() {
			result.Skipped++
			continue
		}

		rate, err := s.feeRateRepo.FindActiveRate(ctx, billing.FeeTypeParking, &vehicle.Type, at)
		if err != nil {
			if shared.IsNotFound(err) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		target, err := billing.NewResidentTarget(resident.ID)
		if err != nil {
			return nil, err
		}

		exists, err := s.invoiceRepo.ExistsForTargetPeriodType(ctx, target, period, billing.ItemTypeParking)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		item, err := billing.NewInvoiceItem(
			billing.ItemTypeParking,
			fmt.Sprintf("Parking fee %s %s %s", period, vehicle.Type, vehicle.LicensePlate),
			valueobject.NewMoneyVND(rate.UnitPrice),
		)
		if err != nil {
			return nil, err
		}

		invoice, err := s.createInvoice(ctx, target, period, []billing.InvoiceItem{item})
		if err != nil {
			return nil, err
		}

		result.Created++
		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)
	}

	return result, nil
}

// GenerateUtilityInvoices creates one room-billed invoice per room with
// positive metered consumption in the period, containing one item per
// meter type. Consumption is the differential against the most recent
// prior-period reading, or the absolute index for a first reading.
func (s *BulkInvoiceService) GenerateUtilityInvoices(ctx context.Context, period valueobject.BillingPeriod) (*PassResult, error) {
	readings, err := s.meterRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	// Group the period's readings by room
	byRoom := make(map[uuid.UUID][]*billing.UtilityMeterReading)
	roomOrder := make([]uuid.UUID, 0)
	for _, r := range readings {
		if _, seen := byRoom[r.RoomID]; !seen {
			roomOrder = append(roomOrder, r.RoomID)
		}
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}

	at := period.Start()
	result := &PassResult{InvoiceIDs: []uuid.UUID{}}
	for _, roomID := range roomOrder {
		target, err := billing.NewRoomTarget(roomID)
		if err != nil {
			return nil, err
		}

		items, err := s.buildUtilityItems(ctx, roomID, byRoom[roomID], period, at)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			result.Skipped++
			continue
		}

		// One guard check per meter item type present on the invoice
		duplicate := false
		for _, item := range items {
			exists, err := s.invoiceRepo.ExistsForTargetPeriodType(ctx, target, period, item.Type)
			if err != nil {
				return nil, err
			}
			if exists {
				duplicate = true
				break
			}
		}
		if duplicate {
			result.Skipped++
			continue
		}

		invoice, err := s.createInvoice(ctx, target, period, items)
		if err != nil {
			return nil, err
		}

		result.Created++
		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)
	}

	return result, nil
}

func (s *BulkInvoiceService) buildUtilityItems(ctx context.Context, roomID uuid.UUID, readings []*billing.UtilityMeterReading, period valueobject.BillingPeriod, at time.Time) ([]billing.InvoiceItem, error) {
	items := make([]billing.InvoiceItem, 0, 2)
	for _, reading := range readings {
		prior, err := s.meterRepo.FindLatestPrior(ctx, roomID, reading.MeterType, period)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}

		consumption := reading.ConsumptionSince(prior)
		if consumption.LessThanOrEqual(decimal.Zero) {
			continue
		}

		rate, err := s.feeRateRepo.FindActiveRate(ctx, reading.MeterType.FeeType(), nil, at)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		item, err := billing.NewMeteredInvoiceItem(
			reading.MeterType.FeeType().ItemType(),
			fmt.Sprintf("%s %s", reading.MeterType, period),
			consumption,
			valueobject.NewMoneyVND(rate.UnitPrice),
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *BulkInvoiceService) createInvoice(ctx context.Context, target billing.BillTarget, period valueobject.BillingPeriod, items []billing.InvoiceItem) (*billing.Invoice, error) {
	issueDate := time.Now()
	dueDate := issueDate.AddDate(0, 0, s.dueDays)

	invoice, err := billing.NewInvoice(target, period, issueDate, dueDate, nil, items, "", nil)
	if err != nil {
		return nil, err
	}
	err = s.txManager.InTx(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
