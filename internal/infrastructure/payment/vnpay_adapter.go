package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/infrastructure/config"
)

const (
	vnpayGatewayName   = "VNPAY"
	vnpayCommand       = "pay"
	vnpayCurrency      = "VND"
	vnpayOrderType     = "other"
	vnpayDateLayout    = "20060102150405"
	vnpaySecureHashKey = "vnp_SecureHash"
)

// VNPayAdapter implements the PaymentGateway port for the VNPay hosted
// payment page. Outbound parameters are signed with HMAC-SHA512 over the
// sorted, URL-encoded query string; inbound IPN and return parameters are
// verified the same way.
type VNPayAdapter struct {
	cfg *config.VNPayConfig
	now func() time.Time
}

// NewVNPayAdapter creates a new VNPay adapter
func NewVNPayAdapter(cfg *config.VNPayConfig) (*VNPayAdapter, error) {
	if !cfg.IsConfigured() {
		return nil, billing.ErrGatewayNotConfigured
	}
	return &VNPayAdapter{cfg: cfg, now: time.Now}, nil
}

// Name identifies the gateway in logs and payment rows
func (a *VNPayAdapter) Name() string {
	return vnpayGatewayName
}

// BuildPaymentURL constructs the signed redirect URL for a pending payment
func (a *VNPayAdapter) BuildPaymentURL(ctx context.Context, req *billing.PaymentURLRequest) (string, error) {
	minorUnits, err := toMinorUnits(req.Amount)
	if err != nil {
		return "", err
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = a.now()
	}

	params := map[string]string{
		"vnp_Version":    a.cfg.Version,
		"vnp_Command":    vnpayCommand,
		"vnp_TmnCode":    a.cfg.TMNCode,
		"vnp_Amount":     strconv.FormatInt(minorUnits, 10),
		"vnp_CurrCode":   vnpayCurrency,
		"vnp_TxnRef":     req.TxnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  vnpayOrderType,
		"vnp_Locale":     a.cfg.Locale,
		"vnp_ReturnUrl":  a.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": createdAt.Format(vnpayDateLayout),
	}
	if !req.ExpiresAt.IsZero() {
		params["vnp_ExpireDate"] = req.ExpiresAt.Format(vnpayDateLayout)
	}

	query := encodeSorted(params)
	signature := a.sign(query)

	return fmt.Sprintf("%s?%s&%s=%s", a.cfg.PayURL, query, vnpaySecureHashKey, signature), nil
}

// VerifyNotification recomputes the signature over the received parameters
// and decodes them into a GatewayNotification
func (a *VNPayAdapter) VerifyNotification(params map[string]string) (*billing.GatewayNotification, error) {
	received, ok := params[vnpaySecureHashKey]
	if !ok || received == "" {
		return nil, billing.ErrChecksumMismatch
	}

	// The hash itself and its legacy type marker are excluded from signing
	signable := make(map[string]string, len(params))
	for k, v := range params {
		if k == vnpaySecureHashKey || k == "vnp_SecureHashType" {
			continue
		}
		signable[k] = v
	}

	expected := a.sign(encodeSorted(signable))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, billing.ErrChecksumMismatch
	}

	amount, err := fromMinorUnits(params["vnp_Amount"])
	if err != nil {
		return nil, err
	}

	notification := &billing.GatewayNotification{
		TxnRef:       params["vnp_TxnRef"],
		GatewayTxnID: params["vnp_TransactionNo"],
		Amount:       amount,
		ResponseCode: params["vnp_ResponseCode"],
		BankCode:     params["vnp_BankCode"],
	}

	if raw := params["vnp_PayDate"]; raw != "" {
		payDate, err := time.ParseInLocation(vnpayDateLayout, raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("vnpay: malformed pay date %q: %w", raw, err)
		}
		notification.PayDate = payDate
	}

	return notification, nil
}

// sign computes the lowercase hex HMAC-SHA512 of the given data
func (a *VNPayAdapter) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(a.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeSorted renders params as a query string with keys in ascending
// order, skipping empty values. VNPay signs the encoded form, so encoding
// here must match the redirect URL byte for byte.
func encodeSorted(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}

// toMinorUnits converts a whole-unit amount to the gateway's integer
// representation (amount multiplied by 100). Fractional or non-positive
// amounts are rejected.
func toMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, billing.ErrInvalidGatewayAmount
	}
	if !amount.Equal(amount.Truncate(0)) {
		return 0, billing.ErrInvalidGatewayAmount
	}
	return amount.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// fromMinorUnits converts the gateway's integer amount back to whole units
func fromMinorUnits(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, billing.ErrInvalidGatewayAmount
	}
	minor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || minor < 0 {
		return decimal.Zero, billing.ErrInvalidGatewayAmount
	}
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)), nil
}

// Ensure VNPayAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*VNPayAdapter)(nil)
