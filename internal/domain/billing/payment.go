package billing

import (
	"fmt"
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGateway      PaymentMethod = "GATEWAY"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodGateway:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"   // Awaiting gateway confirmation
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED" // Counted towards the invoice's paid amount
	PaymentStatusFailed    PaymentStatus = "FAILED"    // Gateway reported failure
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment records money received against exactly one invoice from one
// resident. Amount changes flow through the reconciler so the parent
// invoice is adjusted in the same transaction.
type Payment struct {
	shared.BaseAggregateRoot
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	ResidentID uuid.UUID       `json:"resident_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	Status     PaymentStatus   `json:"status"`
	TxnRef     string          `json:"txn_ref"` // gateway transaction reference, empty until confirmed
	PaidAt     time.Time       `json:"paid_at"`
	Note       string          `json:"note"`
}

// NewPayment creates a confirmed payment, the form produced by manual
// cash or bank-transfer entry.
func NewPayment(invoiceID, residentID uuid.UUID, amount valueobject.Money, method PaymentMethod, paidAt time.Time, note string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method: %s", method))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         invoiceID,
		ResidentID:        residentID,
		Amount:            amount.Amount(),
		Method:            method,
		Status:            PaymentStatusConfirmed,
		PaidAt:            paidAt,
		Note:              note,
	}, nil
}

// NewPendingGatewayPayment creates the pending payment row backing an
// outbound gateway redirect. It does not count towards the invoice's paid
// amount until the gateway confirms it.
func NewPendingGatewayPayment(invoiceID, residentID uuid.UUID, amount valueobject.Money) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gateway payment amount must be positive")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         invoiceID,
		ResidentID:        residentID,
		Amount:            amount.Amount(),
		Method:            PaymentMethodGateway,
		Status:            PaymentStatusPending,
		PaidAt:            time.Now(),
	}, nil
}

// IsPending returns true while the payment awaits gateway confirmation
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// AmendAmount changes the payment amount and returns the delta the
// reconciler must apply to the parent invoice.
func (p *Payment) AmendAmount(newAmount valueobject.Money) (decimal.Decimal, error) {
	if newAmount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if p.Status != PaymentStatusConfirmed {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot amend payment in %s status", p.Status))
	}

	delta := newAmount.Amount().Sub(p.Amount)
	p.Amount = newAmount.Amount()
	p.Touch()
	p.IncrementVersion()

	return delta, nil
}

// UpdateDetails patches the non-financial payment fields
func (p *Payment) UpdateDetails(method *PaymentMethod, paidAt *time.Time, note *string) error {
	if method != nil {
		if !method.IsValid() {
			return shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method: %s", *method))
		}
		p.Method = *method
	}
	if paidAt != nil {
		p.PaidAt = *paidAt
	}
	if note != nil {
		p.Note = *note
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// AssignTxnRef stores the merchant transaction reference generated for the
// outbound gateway URL.
func (p *Payment) AssignTxnRef(txnRef string) error {
	if txnRef == "" {
		return shared.NewDomainError("INVALID_TXN_REF", "Transaction reference cannot be empty")
	}
	p.TxnRef = txnRef
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Confirm transitions a pending gateway payment to CONFIRMED, recording the
// gateway's canonical transaction id. Confirming a non-pending payment is an
// error, which is what makes IPN redelivery harmless.
func (p *Payment) Confirm(gatewayTxnID string, paidAt time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm payment in %s status", p.Status))
	}
	if gatewayTxnID != "" {
		p.TxnRef = gatewayTxnID
	}
	if !paidAt.IsZero() {
		p.PaidAt = paidAt
	}
	p.Status = PaymentStatusConfirmed
	p.Touch()
	p.IncrementVersion()
	return nil
}

// MarkFailed transitions a pending gateway payment to FAILED
func (p *Payment) MarkFailed(gatewayTxnID string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail payment in %s status", p.Status))
	}
	if gatewayTxnID != "" {
		p.TxnRef = gatewayTxnID
	}
	p.Status = PaymentStatusFailed
	p.Touch()
	p.IncrementVersion()
	return nil
}

// AmountMoney returns the payment amount as a Money value object
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(p.Amount)
}
