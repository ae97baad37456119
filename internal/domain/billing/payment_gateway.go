package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrChecksumMismatch     = errors.New("gateway: checksum mismatch")
	ErrOrderNotFound        = errors.New("gateway: order not found")
	ErrInvalidGatewayAmount = errors.New("gateway: invalid amount")
	ErrGatewayNotConfigured = errors.New("gateway: not configured")
)

// IPNAckCode is an acknowledgement code returned to the gateway after an
// IPN delivery. The gateway retries delivery on anything but success.
type IPNAckCode string

const (
	IPNAckSuccess       IPNAckCode = "00"
	IPNAckOrderNotFound IPNAckCode = "01"
	IPNAckInvalidAmount IPNAckCode = "04"
	IPNAckChecksumFail  IPNAckCode = "97"
	IPNAckUnknownError  IPNAckCode = "99"
)

// Message returns the human-readable text paired with the code in the
// gateway acknowledgement body.
func (c IPNAckCode) Message() string {
	switch c {
	case IPNAckSuccess:
		return "Confirm Success"
	case IPNAckOrderNotFound:
		return "Order not found"
	case IPNAckInvalidAmount:
		return "Invalid amount"
	case IPNAckChecksumFail:
		return "Invalid checksum"
	default:
		return "Unknown error"
	}
}

// AckCodeForError maps a gateway processing error to the acknowledgement
// code reported back to the gateway.
func AckCodeForError(err error) IPNAckCode {
	switch {
	case err == nil:
		return IPNAckSuccess
	case errors.Is(err, ErrChecksumMismatch):
		return IPNAckChecksumFail
	case errors.Is(err, ErrOrderNotFound):
		return IPNAckOrderNotFound
	case errors.Is(err, ErrInvalidGatewayAmount):
		return IPNAckInvalidAmount
	default:
		return IPNAckUnknownError
	}
}

// ---------------------------------------------------------------------------
// Transaction references
// ---------------------------------------------------------------------------

// FormatTxnRef builds the merchant transaction reference embedded in the
// outbound payment URL: "<invoiceID>-<paymentID>".
func FormatTxnRef(invoiceID, paymentID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", invoiceID, paymentID)
}

// ParseTxnRef extracts the invoice and payment ids from a merchant
// transaction reference.
func ParseTxnRef(ref string) (invoiceID, paymentID uuid.UUID, err error) {
	// UUIDs contain hyphens, so split on the fixed encoded length.
	const uuidLen = 36
	if len(ref) != uuidLen*2+1 || ref[uuidLen] != '-' {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed transaction reference %q", ref)
	}
	invoiceID, err = uuid.Parse(ref[:uuidLen])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed invoice id in reference %q: %w", ref, err)
	}
	paymentID, err = uuid.Parse(ref[uuidLen+1:])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed payment id in reference %q: %w", ref, err)
	}
	return invoiceID, paymentID, nil
}

// ---------------------------------------------------------------------------
// Gateway port
// ---------------------------------------------------------------------------

// PaymentURLRequest carries everything the adapter needs to build a signed
// redirect URL for one pending payment.
type PaymentURLRequest struct {
	TxnRef    string
	Amount    decimal.Decimal // whole currency units, must be integral
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
	ExpiresAt time.Time // zero means the gateway default validity window
}

// GatewayNotification is a verified, decoded IPN or return payload
type GatewayNotification struct {
	TxnRef       string          // merchant reference echoed back
	GatewayTxnID string          // gateway's canonical transaction id
	Amount       decimal.Decimal // whole currency units
	ResponseCode string          // gateway response code, "00" = success
	BankCode     string
	PayDate      time.Time
}

// IsSuccess reports whether the gateway confirmed the transaction
func (n *GatewayNotification) IsSuccess() bool {
	return n.ResponseCode == "00"
}

// PaymentGateway is the port to the external redirect-based payment
// processor. BuildPaymentURL signs outbound parameters; VerifyNotification
// checks the signature of inbound parameters and decodes them. Both are
// pure with respect to storage; bridging to Payments happens in the
// application layer.
type PaymentGateway interface {
	// Name identifies the gateway in logs and payment rows
	Name() string

	// BuildPaymentURL constructs the signed redirect URL for a pending
	// payment. Fails with ErrInvalidGatewayAmount when the amount is
	// non-positive or not a whole currency unit.
	BuildPaymentURL(ctx context.Context, req *PaymentURLRequest) (string, error)

	// VerifyNotification recomputes the signature over the received
	// parameters and decodes them. Fails with ErrChecksumMismatch when the
	// signature disagrees.
	VerifyNotification(params map[string]string) (*GatewayNotification, error)
}

// ReturnRedirect is the human-facing outcome of a synchronous return,
// rendered as query parameters on the front-end result page.
type ReturnRedirect struct {
	Success      bool
	PaymentID    uuid.UUID
	ResponseCode string
}

// QueryParams renders the redirect parameters appended to the front-end
// result URL.
func (r *ReturnRedirect) QueryParams() string {
	status := "failure"
	if r.Success {
		status = "success"
	}
	var sb strings.Builder
	sb.WriteString("status=")
	sb.WriteString(status)
	if r.PaymentID != uuid.Nil {
		sb.WriteString("&paymentId=")
		sb.WriteString(r.PaymentID.String())
	}
	if r.ResponseCode != "" {
		sb.WriteString("&code=")
		sb.WriteString(r.ResponseCode)
	}
	return sb.String()
}
