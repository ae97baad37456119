package billing

import (
	"fmt"
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "UNPAID"         // No payment recorded
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < paid < total
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // paid >= total
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"      // Explicitly voided
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanAcceptPayment returns true if payments can be recorded in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPartiallyPaid
}

// ItemType classifies an invoice line item
type ItemType string

const (
	ItemTypeRoomFee     ItemType = "ROOM_FEE"
	ItemTypeElectricity ItemType = "ELECTRICITY"
	ItemTypeWater       ItemType = "WATER"
	ItemTypeParking     ItemType = "PARKING"
	ItemTypeOther       ItemType = "OTHER"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRoomFee, ItemTypeElectricity, ItemTypeWater, ItemTypeParking, ItemTypeOther:
		return true
	}
	return false
}

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// InvoiceItem is a line item belonging to exactly one invoice.
// Items are immutable once created; the invoice mutates them only as a
// whole-replacement set.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`   // zero for flat-fee items
	UnitPrice   decimal.Decimal `json:"unit_price"` // zero for flat-fee items
	Amount      decimal.Decimal `json:"amount"`
}

// NewInvoiceItem creates a flat-fee line item
func NewInvoiceItem(itemType ItemType, description string, amount valueobject.Money) (InvoiceItem, error) {
	if !itemType.IsValid() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Unknown invoice item type: %s", itemType))
	}
	if description == "" {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !amount.IsPositive() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM_AMOUNT", "Item amount must be positive")
	}
	return InvoiceItem{
		ID:          uuid.New(),
		Type:        itemType,
		Description: description,
		Quantity:    decimal.Zero,
		UnitPrice:   decimal.Zero,
		Amount:      amount.Amount(),
	}, nil
}

// NewMeteredInvoiceItem creates a line item priced as quantity * unit price,
// used for electricity and water consumption.
func NewMeteredInvoiceItem(itemType ItemType, description string, quantity decimal.Decimal, unitPrice valueobject.Money) (InvoiceItem, error) {
	if !itemType.IsValid() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Unknown invoice item type: %s", itemType))
	}
	if description == "" {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM_QUANTITY", "Item quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM_AMOUNT", "Item unit price must be positive")
	}
	return InvoiceItem{
		ID:          uuid.New(),
		Type:        itemType,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      quantity.Mul(unitPrice.Amount()),
	}, nil
}

// Invoice is the aggregate root of the invoice ledger. Its total is always
// the sum of its current items, and its status is a deterministic function
// of (paidAmount, totalAmount) unless explicitly CANCELLED.
type Invoice struct {
	shared.BaseAggregateRoot
	Target          BillTarget                `json:"target"`
	Period          valueobject.BillingPeriod `json:"period"`
	IssueDate       time.Time                 `json:"issue_date"`
	DueDate         time.Time                 `json:"due_date"`
	PaymentDeadline *time.Time                `json:"payment_deadline"`
	Items           []InvoiceItem             `json:"items"`
	TotalAmount     decimal.Decimal           `json:"total_amount"`
	PaidAmount      decimal.Decimal           `json:"paid_amount"`
	Status          InvoiceStatus             `json:"status"`
	Notes           string                    `json:"notes"`
}

// NewInvoice creates an invoice from a bill target, a billing period and a
// non-empty item set. Total is computed from the items; paid amount starts
// at zero. An initial status may be supplied to override the UNPAID default.
func NewInvoice(
	target BillTarget,
	period valueobject.BillingPeriod,
	issueDate time.Time,
	dueDate time.Time,
	paymentDeadline *time.Time,
	items []InvoiceItem,
	notes string,
	initialStatus *InvoiceStatus,
) (*Invoice, error) {
	if target.IsZero() || !target.Kind().IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET", "Invoice must be billed to exactly one resident or room")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Billing period is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must contain at least one item")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
	}

	total := decimal.Zero
	for _, item := range items {
		if !item.Type.IsValid() {
			return nil, shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Unknown invoice item type: %s", item.Type))
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_ITEM_AMOUNT", "Item amount must be positive")
		}
		total = total.Add(item.Amount)
	}

	status := InvoiceStatusUnpaid
	if initialStatus != nil {
		if !initialStatus.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", *initialStatus))
		}
		status = *initialStatus
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Target:            target,
		Period:            period,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		PaymentDeadline:   paymentDeadline,
		Items:             items,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		Status:            status,
		Notes:             notes,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// DeriveStatus computes the status implied by a (paid, total) pair.
// The zero-total case only arises through item replacement.
func DeriveStatus(paid, total decimal.Decimal) InvoiceStatus {
	if total.LessThanOrEqual(decimal.Zero) {
		if paid.GreaterThan(decimal.Zero) {
			return InvoiceStatusPaid
		}
		return InvoiceStatusCancelled
	}
	switch {
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusUnpaid
	}
}

// ReplaceItems swaps the full item set and recomputes the total, then
// re-derives status from the existing paid amount against the new total.
func (inv *Invoice) ReplaceItems(items []InvoiceItem) error {
	total := decimal.Zero
	for _, item := range items {
		if !item.Type.IsValid() {
			return shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Unknown invoice item type: %s", item.Type))
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_ITEM_AMOUNT", "Item amount must be positive")
		}
		total = total.Add(item.Amount)
	}

	inv.Items = items
	inv.TotalAmount = total
	inv.setStatus(DeriveStatus(inv.PaidAmount, inv.TotalAmount))

	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// ApplyPaymentDelta adjusts the paid amount by delta (positive when a payment
// is recorded or increased, negative when amended down or removed) and
// re-derives the status. The resulting paid amount can never go negative.
func (inv *Invoice) ApplyPaymentDelta(delta decimal.Decimal) error {
	newPaid := inv.PaidAmount.Add(delta)
	if newPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot become negative")
	}

	previous := inv.Status
	inv.PaidAmount = newPaid
	inv.setStatus(DeriveStatus(inv.PaidAmount, inv.TotalAmount))

	if inv.Status == InvoiceStatusPaid && previous != InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// OverrideStatus applies an explicit caller-supplied status, which takes
// precedence over the derived value.
func (inv *Invoice) OverrideStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", status))
	}
	inv.setStatus(status)
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// UpdateDetails patches the non-derived invoice fields
func (inv *Invoice) UpdateDetails(dueDate *time.Time, paymentDeadline *time.Time, notes *string) error {
	if dueDate != nil {
		if dueDate.Before(inv.IssueDate) {
			return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
		}
		inv.DueDate = *dueDate
	}
	if paymentDeadline != nil {
		inv.PaymentDeadline = paymentDeadline
	}
	if notes != nil {
		inv.Notes = *notes
	}
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// RemainingAmount returns total - paid, floored at zero for overpayments
func (inv *Invoice) RemainingAmount() decimal.Decimal {
	remaining := inv.TotalAmount.Sub(inv.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// TotalMoney returns the invoice total as a Money value object
func (inv *Invoice) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyVND(inv.TotalAmount)
}

// BilledResidentID returns the resident the invoice is billed to, or
// uuid.Nil when the invoice is room-billed.
func (inv *Invoice) BilledResidentID() uuid.UUID {
	if inv.Target.IsResident() {
		return inv.Target.ID()
	}
	return uuid.Nil
}

func (inv *Invoice) setStatus(status InvoiceStatus) {
	if inv.Status == status {
		return
	}
	previous := inv.Status
	inv.Status = status
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, previous))
}
