package billing

import (
	"context"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatewayPaymentService bridges internal Invoice/Payment pairs to the
// external redirect-based payment processor. Outbound URLs are built over
// a pending Payment row; inbound IPNs are verified, amount-matched and
// applied exactly once. The asynchronous IPN is the source of truth; the
// synchronous return only decides a human-facing redirect.
type GatewayPaymentService struct {
	gateway          billing.PaymentGateway
	invoiceRepo      billing.InvoiceRepository
	paymentRepo      billing.PaymentRepository
	txManager        shared.TransactionManager
	idempotencyStore shared.IdempotencyStore
	idempotency      shared.IdempotencyConfig
	paymentURLTTL    time.Duration
	logger           *zap.Logger
}

// NewGatewayPaymentService creates a new GatewayPaymentService
func NewGatewayPaymentService(
	gateway billing.PaymentGateway,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	txManager shared.TransactionManager,
	idempotencyStore shared.IdempotencyStore,
	logger *zap.Logger,
) *GatewayPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatewayPaymentService{
		gateway:          gateway,
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		txManager:        txManager,
		idempotencyStore: idempotencyStore,
		idempotency:      shared.DefaultIdempotencyConfig(),
		logger:           logger,
	}
}

// SetIdempotencyTTL overrides how long processed IPN keys are retained
func (s *GatewayPaymentService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotency.TTL = ttl
	}
}

// dedupeActive reports whether the IPN duplicate-delivery fast path can
// run for this notification. Correctness never depends on it; the
// payment's pending-state transition is the real guard.
func (s *GatewayPaymentService) dedupeActive(gatewayTxnID string) bool {
	return s.idempotency.Enabled && s.idempotencyStore != nil && gatewayTxnID != ""
}

// SetPaymentURLTTL sets the validity window stamped on generated payment
// URLs. Zero leaves expiry up to the gateway.
func (s *GatewayPaymentService) SetPaymentURLTTL(ttl time.Duration) {
	s.paymentURLTTL = ttl
}

// PaymentURLResponse carries the signed redirect URL and the pending
// payment backing it
type PaymentURLResponse struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	TxnRef     string    `json:"txn_ref"`
	PaymentURL string    `json:"payment_url"`
}

// IPNAck is the acknowledgement body returned to the gateway after an IPN
type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

func ackFor(code billing.IPNAckCode) *IPNAck {
	return &IPNAck{RspCode: string(code), Message: code.Message()}
}

// CreatePaymentURL creates a pending gateway payment for the invoice's
// full total and returns the signed redirect URL. Fails when the invoice
// cannot accept payments or its total is not a whole currency amount.
func (s *GatewayPaymentService) CreatePaymentURL(ctx context.Context, invoiceID uuid.UUID, residentID uuid.UUID, clientIP string) (*PaymentURLResponse, error) {
	var payment *billing.Payment
	var amount valueobject.Money

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if err != nil {
			return err
		}

		if !invoice.Status.CanAcceptPayment() {
			return shared.NewDomainError("INVALID_STATE", "Invoice cannot accept payments in its current status")
		}
		if invoice.Target.IsResident() && invoice.Target.ID() != residentID {
			return shared.NewDomainError("CONFLICT", "Resident does not match the invoice's billed resident")
		}

		amount = invoice.TotalMoney()
		if !amount.IsPositive() || !amount.IsWholeUnit() {
			return billing.ErrInvalidGatewayAmount
		}

		payment, err = billing.NewPendingGatewayPayment(invoiceID, residentID, amount)
		if err != nil {
			return err
		}
		if err := payment.AssignTxnRef(billing.FormatTxnRef(invoiceID, payment.ID)); err != nil {
			return err
		}

		return s.paymentRepo.Save(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	urlReq := &billing.PaymentURLRequest{
		TxnRef:    payment.TxnRef,
		Amount:    amount.Amount(),
		OrderInfo: "Dormitory invoice " + invoiceID.String(),
		ClientIP:  clientIP,
		CreatedAt: now,
	}
	if s.paymentURLTTL > 0 {
		urlReq.ExpiresAt = now.Add(s.paymentURLTTL)
	}

	url, err := s.gateway.BuildPaymentURL(ctx, urlReq)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Gateway payment URL created",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("txn_ref", payment.TxnRef))

	return &PaymentURLResponse{
		PaymentID:  payment.ID,
		TxnRef:     payment.TxnRef,
		PaymentURL: url,
	}, nil
}

// ProcessIPN verifies and applies an asynchronous gateway notification.
// It always returns an acknowledgement for the gateway; processing errors
// are mapped to the gateway's ack vocabulary rather than surfaced. The
// gateway redelivers on any non-success code, so replays of an already
// applied notification must ack success without re-applying.
func (s *GatewayPaymentService) ProcessIPN(ctx context.Context, params map[string]string) *IPNAck {
	notification, err := s.gateway.VerifyNotification(params)
	if err != nil {
		s.logger.Warn("IPN signature verification failed", zap.Error(err))
		return ackFor(billing.AckCodeForError(err))
	}

	_, paymentID, err := billing.ParseTxnRef(notification.TxnRef)
	if err != nil {
		s.logger.Warn("IPN transaction reference malformed",
			zap.String("txn_ref", notification.TxnRef), zap.Error(err))
		return ackFor(billing.IPNAckOrderNotFound)
	}

	// Fast path: a gateway transaction we've already marked as processed
	// acks success without touching payment or invoice rows.
	dedupeKey := "ipn:" + notification.GatewayTxnID
	if s.dedupeActive(notification.GatewayTxnID) {
		seen, err := s.idempotencyStore.IsProcessed(ctx, dedupeKey)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency lookup failed",
				zap.String("gateway_txn_id", notification.GatewayTxnID), zap.Error(err))
		case seen:
			s.logger.Info("IPN duplicate short-circuited",
				zap.String("payment_id", paymentID.String()),
				zap.String("gateway_txn_id", notification.GatewayTxnID))
			return ackFor(billing.IPNAckSuccess)
		}
	}

	var alreadyApplied bool
	err = s.txManager.InTx(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(txCtx, paymentID)
		if err != nil {
			if shared.IsNotFound(err) {
				return billing.ErrOrderNotFound
			}
			return err
		}

		// Zero-tolerance amount check against the recorded payment
		if !notification.Amount.Equal(payment.Amount) {
			return billing.ErrInvalidGatewayAmount
		}

		if !payment.IsPending() {
			// Redelivery of a notification we've already applied.
			alreadyApplied = true
			return nil
		}

		if !notification.IsSuccess() {
			if err := payment.MarkFailed(notification.GatewayTxnID); err != nil {
				return err
			}
			return s.paymentRepo.Save(txCtx, payment)
		}

		if err := payment.Confirm(notification.GatewayTxnID, notification.PayDate); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return err
		}

		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if err := invoice.ApplyPaymentDelta(payment.Amount); err != nil {
			return err
		}
		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		code := billing.AckCodeForError(err)
		log := s.logger.Warn
		if code == billing.IPNAckUnknownError {
			log = s.logger.Error
		}
		log("IPN processing failed",
			zap.String("txn_ref", notification.TxnRef),
			zap.String("gateway_txn_id", notification.GatewayTxnID),
			zap.Error(err))
		return ackFor(code)
	}

	// Mark before acking so the next delivery of this transaction takes
	// the fast path. Marking replays too re-arms the key after a TTL
	// expiry or store restart.
	if s.dedupeActive(notification.GatewayTxnID) {
		newly, err := s.idempotencyStore.MarkProcessed(ctx, dedupeKey, s.idempotency.TTL)
		if err != nil {
			s.logger.Warn("Idempotency marker write failed",
				zap.String("gateway_txn_id", notification.GatewayTxnID), zap.Error(err))
		} else if !newly {
			s.logger.Debug("Idempotency marker already present",
				zap.String("gateway_txn_id", notification.GatewayTxnID))
		}
	}

	if alreadyApplied {
		s.logger.Info("IPN replay ignored",
			zap.String("payment_id", paymentID.String()),
			zap.String("gateway_txn_id", notification.GatewayTxnID))
		return ackFor(billing.IPNAckSuccess)
	}

	s.logger.Info("IPN applied",
		zap.String("payment_id", paymentID.String()),
		zap.String("gateway_txn_id", notification.GatewayTxnID),
		zap.String("response_code", notification.ResponseCode))

	return ackFor(billing.IPNAckSuccess)
}

// VerifyReturn verifies a synchronous browser return and decides the
// human-facing redirect. It never mutates financial state.
func (s *GatewayPaymentService) VerifyReturn(ctx context.Context, params map[string]string) *billing.ReturnRedirect {
	notification, err := s.gateway.VerifyNotification(params)
	if err != nil {
		s.logger.Warn("Return signature verification failed", zap.Error(err))
		return &billing.ReturnRedirect{Success: false, ResponseCode: string(billing.IPNAckChecksumFail)}
	}

	redirect := &billing.ReturnRedirect{
		Success:      notification.IsSuccess(),
		ResponseCode: notification.ResponseCode,
	}
	if _, paymentID, err := billing.ParseTxnRef(notification.TxnRef); err == nil {
		redirect.PaymentID = paymentID
	}
	return redirect
}
