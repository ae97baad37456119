package billing

import (
	"context"
	"testing"
	"time"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInvoiceService(invoiceRepo *MockInvoiceRepository, paymentRepo *MockPaymentRepository) *InvoiceService {
	return NewInvoiceService(invoiceRepo, paymentRepo, &fakeTxManager{}, nil)
}

// =============================================================================
// CreateInvoice
// =============================================================================

func TestInvoiceService_CreateInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TargetKind: "RESIDENT",
		TargetID:   uuid.New(),
		Period:     "2026-03",
		DueDate:    time.Now().AddDate(0, 0, 14),
		Items: []InvoiceItemRequest{
			{Type: "ROOM_FEE", Description: "Room fee 2026-03", Amount: decimal.NewFromInt(1200000)},
			{Type: "ELECTRICITY", Description: "Electricity 2026-03", Quantity: decimal.NewFromInt(120), UnitPrice: decimal.NewFromInt(3500)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "UNPAID", resp.Status)
	// 1200000 + 120*3500 = 1620000
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1620000)))
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[1].Amount.Equal(decimal.NewFromInt(420000)))
}

func TestInvoiceService_CreateInvoice_WritesInOneTransaction(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	txManager := &countingTxManager{}
	svc := NewInvoiceService(invoiceRepo, new(MockPaymentRepository), txManager, nil)

	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TargetKind: "RESIDENT",
		TargetID:   uuid.New(),
		Period:     "2026-03",
		DueDate:    time.Now().AddDate(0, 0, 14),
		Items: []InvoiceItemRequest{
			{Type: "ROOM_FEE", Description: "Room fee 2026-03", Amount: decimal.NewFromInt(1200000)},
			{Type: "WATER", Description: "Water 2026-03", Amount: decimal.NewFromInt(80000)},
		},
	})
	require.NoError(t, err)

	// Invoice row and item rows must land in a single unit of work
	assert.Equal(t, 1, txManager.calls)
}

func TestInvoiceService_CreateInvoice_InvalidPeriod(t *testing.T) {
	svc := newInvoiceService(new(MockInvoiceRepository), new(MockPaymentRepository))

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TargetKind: "RESIDENT",
		TargetID:   uuid.New(),
		Period:     "March 2026",
		DueDate:    time.Now(),
		Items:      []InvoiceItemRequest{{Type: "OTHER", Description: "x", Amount: decimal.NewFromInt(1)}},
	})
	require.Error(t, err)
}

// =============================================================================
// UpdateInvoice
// =============================================================================

func TestInvoiceService_UpdateInvoice_ReplaceItems(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	invoice := newTestInvoice(t, uuid.New(), 1000000)
	require.NoError(t, invoice.ApplyPaymentDelta(decimal.NewFromInt(400000)))

	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

	// Shrink the total below what is already paid: derived status flips to PAID
	resp, err := svc.UpdateInvoice(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{
			{Type: "ROOM_FEE", Description: "Adjusted room fee", Amount: decimal.NewFromInt(300000)},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(300000)))
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(400000)))
	assert.Equal(t, "PAID", resp.Status)
}

func TestInvoiceService_UpdateInvoice_EmptyItemSetUnpaidCancels(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	invoice := newTestInvoice(t, uuid.New(), 1000000)
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

	resp, err := svc.UpdateInvoice(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.IsZero())
	assert.Equal(t, "CANCELLED", resp.Status)
}

func TestInvoiceService_UpdateInvoice_ExplicitStatusWins(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	invoice := newTestInvoice(t, uuid.New(), 1000000)
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

	status := "CANCELLED"
	resp, err := svc.UpdateInvoice(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
}

func TestInvoiceService_UpdateInvoice_NotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	id := uuid.New()
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.UpdateInvoice(context.Background(), id, UpdateInvoiceRequest{})
	assert.True(t, shared.IsNotFound(err))
}

// =============================================================================
// DeleteInvoice
// =============================================================================

func TestInvoiceService_DeleteInvoice_CascadesPayments(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newInvoiceService(invoiceRepo, paymentRepo)

	invoice := newTestInvoice(t, uuid.New(), 1000000)
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
	paymentRepo.On("DeleteByInvoice", mock.Anything, invoice.ID).Return(nil)
	invoiceRepo.On("Delete", mock.Anything, invoice.ID).Return(nil)

	err := svc.DeleteInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)

	paymentRepo.AssertCalled(t, "DeleteByInvoice", mock.Anything, invoice.ID)
	invoiceRepo.AssertCalled(t, "Delete", mock.Anything, invoice.ID)
}

func TestInvoiceService_DeleteInvoice_NotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newInvoiceService(invoiceRepo, paymentRepo)

	id := uuid.New()
	invoiceRepo.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.ErrNotFound)

	err := svc.DeleteInvoice(context.Background(), id)
	assert.True(t, shared.IsNotFound(err))
	paymentRepo.AssertNotCalled(t, "DeleteByInvoice", mock.Anything, mock.Anything)
}

// =============================================================================
// ListInvoices
// =============================================================================

func TestInvoiceService_ListInvoices(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newInvoiceService(invoiceRepo, new(MockPaymentRepository))

	invoice := newTestInvoice(t, uuid.New(), 1000000)
	invoiceRepo.On("List", mock.Anything, mock.AnythingOfType("billing.InvoiceFilter")).
		Return(shared.NewPaginated([]*billing.Invoice{invoice}, 1, 1, 20), nil)

	page, err := svc.ListInvoices(context.Background(), InvoiceListFilter{Status: "UNPAID", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, invoice.ID, page.Items[0].ID)

	filter := invoiceRepo.Calls[0].Arguments.Get(1).(billing.InvoiceFilter)
	require.NotNil(t, filter.Status)
	assert.Equal(t, billing.InvoiceStatusUnpaid, *filter.Status)
}
