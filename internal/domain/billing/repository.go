package billing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status     *InvoiceStatus
	TargetKind *TargetKind
	TargetID   *uuid.UUID
	Period     *valueobject.BillingPeriod
}

// InvoiceRepository persists Invoice aggregates together with their items
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate locks the invoice row for the duration of the
	// current transaction. Must be called inside one.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// ExistsForTargetPeriodType reports whether an invoice already exists
	// for the target and period containing an item of the given type. The
	// bulk generator's duplicate guard.
	ExistsForTargetPeriodType(ctx context.Context, target BillTarget, period valueobject.BillingPeriod, itemType ItemType) (bool, error)
	List(ctx context.Context, filter InvoiceFilter) (*shared.Paginated[*Invoice], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository persists Payment aggregates
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Payment], error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByInvoice removes all payments of an invoice, the first step of
	// cascading invoice deletion.
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// FeeRateRepository persists the fee rate registry
type FeeRateRepository interface {
	Save(ctx context.Context, rate *FeeRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*FeeRate, error)
	// FindActiveRate returns the active rate effective at the given time
	// for a (fee type, vehicle type) pair, or shared.ErrNotFound.
	FindActiveRate(ctx context.Context, feeType FeeType, vehicleType *housing.VehicleType, at time.Time) (*FeeRate, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*FeeRate], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MeterReadingRepository persists utility meter readings
type MeterReadingRepository interface {
	Save(ctx context.Context, reading *UtilityMeterReading) error
	FindByID(ctx context.Context, id uuid.UUID) (*UtilityMeterReading, error)
	// FindByPeriod returns all readings recorded for the period, across
	// all rooms and meter types. Drives the utility billing pass.
	FindByPeriod(ctx context.Context, period valueobject.BillingPeriod) ([]*UtilityMeterReading, error)
	// FindLatestPrior returns the most recent reading for the room and
	// meter type from a period strictly before the given one, or
	// shared.ErrNotFound when none exists.
	FindLatestPrior(ctx context.Context, roomID uuid.UUID, meterType MeterType, before valueobject.BillingPeriod) (*UtilityMeterReading, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*UtilityMeterReading], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
