package models

import (
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/housing"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The target pair and the period are flattened into scalar columns; the
// composite unique index backs the bulk generator's duplicate guard queries.
type InvoiceModel struct {
	AggregateModel
	TargetKind      billing.TargetKind    `gorm:"type:varchar(20);not null;index:idx_invoices_target,priority:1"`
	TargetID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoices_target,priority:2"`
	Period          string                `gorm:"type:varchar(7);not null;index"`
	IssueDate       time.Time             `gorm:"not null"`
	DueDate         time.Time             `gorm:"not null"`
	PaymentDeadline *time.Time            ``
	TotalAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status          billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	Notes           string                `gorm:"type:text"`
	Items           []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() (*billing.Invoice, error) {
	target, err := billing.NewBillTarget(m.TargetKind, m.TargetID)
	if err != nil {
		return nil, err
	}
	period, err := valueobject.ParseBillingPeriod(m.Period)
	if err != nil {
		return nil, err
	}

	items := make([]billing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = item.ToDomain()
	}

	return &billing.Invoice{
		BaseAggregateRoot: m.aggregateRoot(),
		Target:            target,
		Period:            period,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaymentDeadline:   m.PaymentDeadline,
		Items:             items,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		Status:            m.Status,
		Notes:             m.Notes,
	}, nil
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.TargetKind = inv.Target.Kind()
	m.TargetID = inv.Target.ID()
	m.Period = inv.Period.String()
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaymentDeadline = inv.PaymentDeadline
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Status = inv.Status
	m.Notes = inv.Notes

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModelFromDomain(inv.ID, item)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for one invoice line item.
type InvoiceItemModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type        billing.ItemType `gorm:"type:varchar(20);not null"`
	Description string           `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:          m.ID,
		Type:        m.Type,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
	}
}

// InvoiceItemModelFromDomain creates a persistence model from a domain item.
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, item billing.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		Type:        item.Type,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
	}
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	InvoiceID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	ResidentID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method     billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status     billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'CONFIRMED';index"`
	TxnRef     string                `gorm:"type:varchar(100);index"`
	PaidAt     time.Time             `gorm:"not null"`
	Note       string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment aggregate.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.aggregateRoot(),
		InvoiceID:         m.InvoiceID,
		ResidentID:        m.ResidentID,
		Amount:            m.Amount,
		Method:            m.Method,
		Status:            m.Status,
		TxnRef:            m.TxnRef,
		PaidAt:            m.PaidAt,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain Payment aggregate.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.ResidentID = p.ResidentID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Status = p.Status
	m.TxnRef = p.TxnRef
	m.PaidAt = p.PaidAt
	m.Note = p.Note
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// FeeRateModel is the persistence model for the FeeRate aggregate root.
type FeeRateModel struct {
	AggregateModel
	FeeType       billing.FeeType      `gorm:"type:varchar(20);not null;index:idx_fee_rates_type,priority:1"`
	VehicleType   *housing.VehicleType `gorm:"type:varchar(20);index:idx_fee_rates_type,priority:2"`
	UnitPrice     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	EffectiveFrom time.Time            `gorm:"not null;index"`
	EffectiveTo   *time.Time           ``
	Active        bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (FeeRateModel) TableName() string {
	return "fee_rates"
}

// ToDomain converts the persistence model to a domain FeeRate aggregate.
func (m *FeeRateModel) ToDomain() *billing.FeeRate {
	return &billing.FeeRate{
		BaseAggregateRoot: m.aggregateRoot(),
		FeeType:           m.FeeType,
		VehicleType:       m.VehicleType,
		UnitPrice:         m.UnitPrice,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveTo:       m.EffectiveTo,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain FeeRate aggregate.
func (m *FeeRateModel) FromDomain(r *billing.FeeRate) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.FeeType = r.FeeType
	m.VehicleType = r.VehicleType
	m.UnitPrice = r.UnitPrice
	m.EffectiveFrom = r.EffectiveFrom
	m.EffectiveTo = r.EffectiveTo
	m.Active = r.Active
}

// FeeRateModelFromDomain creates a new persistence model from a domain FeeRate.
func FeeRateModelFromDomain(r *billing.FeeRate) *FeeRateModel {
	m := &FeeRateModel{}
	m.FromDomain(r)
	return m
}

// MeterReadingModel is the persistence model for UtilityMeterReading.
// One reading per (room, meter type, period) is enforced at the schema level.
type MeterReadingModel struct {
	AggregateModel
	RoomID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_meter_readings_room_type_period,priority:1"`
	MeterType   billing.MeterType `gorm:"type:varchar(20);not null;uniqueIndex:idx_meter_readings_room_type_period,priority:2"`
	Period      string            `gorm:"type:varchar(7);not null;uniqueIndex:idx_meter_readings_room_type_period,priority:3;index"`
	IndexValue  decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	ReadingDate time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "utility_meter_readings"
}

// ToDomain converts the persistence model to a domain UtilityMeterReading.
func (m *MeterReadingModel) ToDomain() (*billing.UtilityMeterReading, error) {
	period, err := valueobject.ParseBillingPeriod(m.Period)
	if err != nil {
		return nil, err
	}
	return &billing.UtilityMeterReading{
		BaseAggregateRoot: m.aggregateRoot(),
		RoomID:            m.RoomID,
		MeterType:         m.MeterType,
		Period:            period,
		IndexValue:        m.IndexValue,
		ReadingDate:       m.ReadingDate,
	}, nil
}

// FromDomain populates the persistence model from a domain reading.
func (m *MeterReadingModel) FromDomain(r *billing.UtilityMeterReading) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.RoomID = r.RoomID
	m.MeterType = r.MeterType
	m.Period = r.Period.String()
	m.IndexValue = r.IndexValue
	m.ReadingDate = r.ReadingDate
}

// MeterReadingModelFromDomain creates a new persistence model from a domain reading.
func MeterReadingModelFromDomain(r *billing.UtilityMeterReading) *MeterReadingModel {
	m := &MeterReadingModel{}
	m.FromDomain(r)
	return m
}
