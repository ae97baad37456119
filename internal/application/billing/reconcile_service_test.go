package billing

import (
	"context"
	"testing"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, residentID uuid.UUID, totalVND int64) *billing.Invoice {
	target, err := billing.NewResidentTarget(residentID)
	require.NoError(t, err)
	period, err := valueobject.NewBillingPeriod(2026, time.March)
	require.NoError(t, err)
	item, err := billing.NewInvoiceItem(billing.ItemTypeRoomFee, "Room fee 2026-03", valueobject.NewMoneyVNDFromInt(totalVND))
	require.NoError(t, err)

	issue := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(target, period, issue, issue.AddDate(0, 0, 14), nil, []billing.InvoiceItem{item}, "", nil)
	require.NoError(t, err)
	return inv
}

func newReconcileService(invoiceRepo *MockInvoiceRepository, paymentRepo *MockPaymentRepository) *ReconcileService {
	return NewReconcileService(invoiceRepo, paymentRepo, fakeTxManager{}, nil)
}

// =============================================================================
// RecordPayment
// =============================================================================

func TestReconcileService_RecordPayment_PartialThenFullThenAmend(t *testing.T) {
	residentID := uuid.New()
	invoice := newTestInvoice(t, residentID, 1000000)

	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)

	// Payment A: 400,000 -> PARTIALLY_PAID
	respA, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  invoice.ID,
		ResidentID: residentID,
		Amount:     decimal.NewFromInt(400000),
		Method:     "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, invoice.Status)
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(400000)))

	// Payment B: 600,000 -> PAID
	_, err = svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  invoice.ID,
		ResidentID: residentID,
		Amount:     decimal.NewFromInt(600000),
		Method:     "BANK_TRANSFER",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(1000000)))

	// Amend payment A down to 300,000 -> delta -100,000 -> PARTIALLY_PAID
	paymentA, err := billing.NewPayment(invoice.ID, residentID, valueobject.NewMoneyVNDFromInt(400000), billing.PaymentMethodCash, time.Now(), "")
	require.NoError(t, err)
	paymentA.ID = respA.ID
	paymentRepo.On("FindByIDForUpdate", mock.Anything, paymentA.ID).Return(paymentA, nil)

	newAmount := decimal.NewFromInt(300000)
	_, err = svc.AmendPayment(context.Background(), paymentA.ID, AmendPaymentRequest{Amount: &newAmount})
	require.NoError(t, err)
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(900000)))
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, invoice.Status)

	// Totals never move with payments
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(1000000)))
}

func TestReconcileService_RecordPayment_ResidentMismatch(t *testing.T) {
	invoice := newTestInvoice(t, uuid.New(), 1000000)

	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  invoice.ID,
		ResidentID: uuid.New(), // someone else
		Amount:     decimal.NewFromInt(100000),
		Method:     "CASH",
	})
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, invoice.PaidAmount.IsZero())
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReconcileService_RecordPayment_NegativeAmount(t *testing.T) {
	svc := newReconcileService(new(MockInvoiceRepository), new(MockPaymentRepository))

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  uuid.New(),
		ResidentID: uuid.New(),
		Amount:     decimal.NewFromInt(-100),
		Method:     "CASH",
	})
	assert.Error(t, err)
}

func TestReconcileService_RecordPayment_InvoiceNotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	missing := uuid.New()
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  missing,
		ResidentID: uuid.New(),
		Amount:     decimal.NewFromInt(100),
		Method:     "CASH",
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestReconcileService_RecordPayment_OverpaymentAccepted(t *testing.T) {
	residentID := uuid.New()
	invoice := newTestInvoice(t, residentID, 1000000)

	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)

	// Overpayment is accepted and simply caps status at PAID
	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:  invoice.ID,
		ResidentID: residentID,
		Amount:     decimal.NewFromInt(1500000),
		Method:     "BANK_TRANSFER",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(1500000)))
}

// =============================================================================
// RemovePayment
// =============================================================================

func TestReconcileService_RemovePayment(t *testing.T) {
	residentID := uuid.New()
	invoice := newTestInvoice(t, residentID, 1000000)
	require.NoError(t, invoice.ApplyPaymentDelta(decimal.NewFromInt(1000000)))
	require.Equal(t, billing.InvoiceStatusPaid, invoice.Status)

	payment, err := billing.NewPayment(invoice.ID, residentID, valueobject.NewMoneyVNDFromInt(600000), billing.PaymentMethodCash, time.Now(), "")
	require.NoError(t, err)

	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	paymentRepo.On("FindByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
	paymentRepo.On("Delete", mock.Anything, payment.ID).Return(nil)

	require.NoError(t, svc.RemovePayment(context.Background(), payment.ID))

	// paidAmount decreased by exactly the payment's amount
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(400000)))
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, invoice.Status)
	paymentRepo.AssertCalled(t, "Delete", mock.Anything, payment.ID)
}

func TestReconcileService_RemovePayment_PendingSkipsReconciliation(t *testing.T) {
	payment, err := billing.NewPendingGatewayPayment(uuid.New(), uuid.New(), valueobject.NewMoneyVNDFromInt(500000))
	require.NoError(t, err)

	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newReconcileService(invoiceRepo, paymentRepo)

	paymentRepo.On("FindByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
	paymentRepo.On("Delete", mock.Anything, payment.ID).Return(nil)

	require.NoError(t, svc.RemovePayment(context.Background(), payment.ID))
	invoiceRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}
