package billing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconcileService coordinates Payment mutations with Invoice totals.
// Every operation runs inside a single transaction and re-reads the
// invoice row under lock, so the invoice never observes an intermediate
// state and concurrent payments on the same invoice cannot lose updates.
type ReconcileService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// RecordPaymentRequest records a manual payment against an invoice
type RecordPaymentRequest struct {
	InvoiceID  uuid.UUID       `json:"invoice_id" binding:"required"`
	ResidentID uuid.UUID       `json:"resident_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Method     string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER GATEWAY"`
	PaidAt     *time.Time      `json:"paid_at"`
	Note       string          `json:"note"`
}

// AmendPaymentRequest patches a payment; a non-nil amount adjusts the
// parent invoice by the delta.
type AmendPaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Method *string          `json:"method"`
	PaidAt *time.Time       `json:"paid_at"`
	Note   *string          `json:"note"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	ResidentID uuid.UUID       `json:"resident_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Status     string          `json:"status"`
	TxnRef     string          `json:"txn_ref,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// RecordPayment creates a payment and reconciles the invoice in one
// transaction. A resident-billed invoice only accepts payments from its
// own resident.
func (s *ReconcileService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	if req.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}

	var payment *billing.Payment

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, req.InvoiceID)
		if err != nil {
			return err
		}

		if invoice.Target.IsResident() && invoice.Target.ID() != req.ResidentID {
			return shared.NewDomainError("CONFLICT", "Payment resident does not match the invoice's billed resident")
		}

		paidAt := time.Time{}
		if req.PaidAt != nil {
			paidAt = *req.PaidAt
		}

		payment, err = billing.NewPayment(req.InvoiceID, req.ResidentID, valueobject.NewMoneyVND(req.Amount), billing.PaymentMethod(req.Method), paidAt, req.Note)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return err
		}

		if err := invoice.ApplyPaymentDelta(req.Amount); err != nil {
			return err
		}

		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.String()))

	return toPaymentResponse(payment), nil
}

// AmendPayment updates a payment and applies the amount delta to the
// parent invoice in the same transaction. A negative delta can move the
// invoice back to PARTIALLY_PAID or UNPAID.
func (s *ReconcileService) AmendPayment(ctx context.Context, paymentID uuid.UUID, req AmendPaymentRequest) (*PaymentResponse, error) {
	var payment *billing.Payment

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = s.paymentRepo.FindByIDForUpdate(txCtx, paymentID)
		if err != nil {
			return err
		}

		var method *billing.PaymentMethod
		if req.Method != nil {
			m := billing.PaymentMethod(*req.Method)
			method = &m
		}
		if err := payment.UpdateDetails(method, req.PaidAt, req.Note); err != nil {
			return err
		}

		if req.Amount != nil {
			delta, err := payment.AmendAmount(valueobject.NewMoneyVND(*req.Amount))
			if err != nil {
				return err
			}
			if !delta.IsZero() {
				invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, payment.InvoiceID)
				if err != nil {
					return err
				}
				if err := invoice.ApplyPaymentDelta(delta); err != nil {
					return err
				}
				if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
					return err
				}
			}
		}

		return s.paymentRepo.Save(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment amended",
		zap.String("payment_id", paymentID.String()),
		zap.String("amount", payment.Amount.String()))

	return toPaymentResponse(payment), nil
}

// RemovePayment reverses the payment's effect on the invoice and deletes
// the payment row, in one transaction. Pending gateway payments never
// counted towards the invoice, so they are deleted without reconciling.
func (s *ReconcileService) RemovePayment(ctx context.Context, paymentID uuid.UUID) error {
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(txCtx, paymentID)
		if err != nil {
			return err
		}

		if payment.Status == billing.PaymentStatusConfirmed {
			invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, payment.InvoiceID)
			if err != nil {
				return err
			}
			if err := invoice.ApplyPaymentDelta(payment.Amount.Neg()); err != nil {
				return err
			}
			if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
				return err
			}
		}

		return s.paymentRepo.Delete(txCtx, paymentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Payment removed", zap.String("payment_id", paymentID.String()))
	return nil
}

// GetPayment returns a payment by id
func (s *ReconcileService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// ListPaymentsByInvoice returns all payments recorded against an invoice
func (s *ReconcileService) ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = toPaymentResponse(p)
	}
	return responses, nil
}

func toPaymentResponse(p *billing.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		ResidentID: p.ResidentID,
		Amount:     p.Amount,
		Method:     p.Method.String(),
		Status:     string(p.Status),
		TxnRef:     p.TxnRef,
		PaidAt:     p.PaidAt,
		Note:       p.Note,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
