package billing

import (
	"testing"
	"time"

	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestInvoice(t *testing.T, totalVND int64) *Invoice {
	target, err := NewResidentTarget(uuid.New())
	require.NoError(t, err)

	period, err := valueobject.NewBillingPeriod(2026, time.March)
	require.NoError(t, err)

	item, err := NewInvoiceItem(ItemTypeRoomFee, "Room fee 2026-03", valueobject.NewMoneyVNDFromInt(totalVND))
	require.NoError(t, err)

	issue := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(target, period, issue, issue.AddDate(0, 0, 14), nil, []InvoiceItem{item}, "", nil)
	require.NoError(t, err)
	return inv
}

// ============================================
// BillTarget Tests
// ============================================

func TestNewBillTarget(t *testing.T) {
	residentID := uuid.New()

	target, err := NewBillTarget(TargetKindResident, residentID)
	require.NoError(t, err)
	assert.True(t, target.IsResident())
	assert.False(t, target.IsRoom())
	assert.Equal(t, residentID, target.ID())

	roomID := uuid.New()
	target, err = NewBillTarget(TargetKindRoom, roomID)
	require.NoError(t, err)
	assert.True(t, target.IsRoom())

	_, err = NewBillTarget(TargetKindResident, uuid.Nil)
	assert.Error(t, err)

	_, err = NewBillTarget(TargetKind("BUILDING"), uuid.New())
	assert.Error(t, err)
}

// ============================================
// Invoice Creation Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	target, _ := NewResidentTarget(uuid.New())
	period, _ := valueobject.NewBillingPeriod(2026, time.March)
	issue := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 14)
	item, _ := NewInvoiceItem(ItemTypeRoomFee, "Room fee", valueobject.NewMoneyVNDFromInt(1000000))

	tests := []struct {
		name    string
		target  BillTarget
		period  valueobject.BillingPeriod
		due     time.Time
		items   []InvoiceItem
		wantErr bool
	}{
		{
			name:   "valid invoice",
			target: target,
			period: period,
			due:    due,
			items:  []InvoiceItem{item},
		},
		{
			name:    "zero target",
			target:  BillTarget{},
			period:  period,
			due:     due,
			items:   []InvoiceItem{item},
			wantErr: true,
		},
		{
			name:    "zero period",
			target:  target,
			period:  valueobject.BillingPeriod{},
			due:     due,
			items:   []InvoiceItem{item},
			wantErr: true,
		},
		{
			name:    "empty items",
			target:  target,
			period:  period,
			due:     due,
			items:   []InvoiceItem{},
			wantErr: true,
		},
		{
			name:    "due date before issue date",
			target:  target,
			period:  period,
			due:     issue.AddDate(0, 0, -1),
			items:   []InvoiceItem{item},
			wantErr: true,
		},
		{
			name:   "non-positive item amount",
			target: target,
			period: period,
			due:    due,
			items: []InvoiceItem{{
				ID:          uuid.New(),
				Type:        ItemTypeOther,
				Description: "bad",
				Amount:      decimal.Zero,
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := NewInvoice(tt.target, tt.period, issue, tt.due, nil, tt.items, "", nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
			assert.True(t, inv.PaidAmount.IsZero())
			assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000000)))
			assert.Len(t, inv.GetDomainEvents(), 1)
		})
	}
}

func TestNewInvoice_TotalIsSumOfItems(t *testing.T) {
	target, _ := NewRoomTarget(uuid.New())
	period, _ := valueobject.NewBillingPeriod(2026, time.March)
	issue := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	elec, err := NewMeteredInvoiceItem(ItemTypeElectricity, "Electricity 2026-03", decimal.NewFromInt(120), valueobject.NewMoneyVNDFromInt(3500))
	require.NoError(t, err)
	water, err := NewMeteredInvoiceItem(ItemTypeWater, "Water 2026-03", decimal.NewFromInt(8), valueobject.NewMoneyVNDFromInt(15000))
	require.NoError(t, err)

	inv, err := NewInvoice(target, period, issue, issue.AddDate(0, 0, 14), nil, []InvoiceItem{elec, water}, "", nil)
	require.NoError(t, err)

	// 120 * 3500 + 8 * 15000 = 540000
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(540000)))
}

func TestNewInvoice_InitialStatusOverride(t *testing.T) {
	target, _ := NewResidentTarget(uuid.New())
	period, _ := valueobject.NewBillingPeriod(2026, time.March)
	issue := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	item, _ := NewInvoiceItem(ItemTypeOther, "Deposit", valueobject.NewMoneyVNDFromInt(500000))

	status := InvoiceStatusCancelled
	inv, err := NewInvoice(target, period, issue, issue.AddDate(0, 0, 14), nil, []InvoiceItem{item}, "", &status)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)

	bad := InvoiceStatus("VOID")
	_, err = NewInvoice(target, period, issue, issue.AddDate(0, 0, 14), nil, []InvoiceItem{item}, "", &bad)
	assert.Error(t, err)
}

// ============================================
// Status Derivation Tests
// ============================================

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  int64
		total int64
		want  InvoiceStatus
	}{
		{name: "nothing paid", paid: 0, total: 1000000, want: InvoiceStatusUnpaid},
		{name: "partially paid", paid: 400000, total: 1000000, want: InvoiceStatusPartiallyPaid},
		{name: "exactly paid", paid: 1000000, total: 1000000, want: InvoiceStatusPaid},
		{name: "overpaid", paid: 1200000, total: 1000000, want: InvoiceStatusPaid},
		{name: "zero total nothing paid", paid: 0, total: 0, want: InvoiceStatusCancelled},
		{name: "zero total historically paid", paid: 200000, total: 0, want: InvoiceStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(decimal.NewFromInt(tt.paid), decimal.NewFromInt(tt.total))
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================
// Payment Delta Tests
// ============================================

func TestInvoice_ApplyPaymentDelta(t *testing.T) {
	inv := createTestInvoice(t, 1000000)

	// Payment A: 400,000
	require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(400000)))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(400000)))

	// Payment B: 600,000 -> fully paid
	require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(600000)))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(1000000)))

	// Payment A amended down to 300,000 -> delta -100,000
	require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(-100000)))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(900000)))

	// Totals never move with payments
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000000)))
}

func TestInvoice_ApplyPaymentDelta_NegativePaidRejected(t *testing.T) {
	inv := createTestInvoice(t, 1000000)

	err := inv.ApplyPaymentDelta(decimal.NewFromInt(-1))
	assert.Error(t, err)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
}

func TestInvoice_ApplyPaymentDelta_OverpaymentCapsAtPaid(t *testing.T) {
	inv := createTestInvoice(t, 1000000)

	require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(1500000)))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(1500000)))
	assert.True(t, inv.RemainingAmount().IsZero())
}

// ============================================
// Item Replacement Tests
// ============================================

func TestInvoice_ReplaceItems(t *testing.T) {
	inv := createTestInvoice(t, 1000000)
	require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(400000)))

	newItem, err := NewInvoiceItem(ItemTypeRoomFee, "Adjusted room fee", valueobject.NewMoneyVNDFromInt(400000))
	require.NoError(t, err)

	require.NoError(t, inv.ReplaceItems([]InvoiceItem{newItem}))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(400000)))
	// paid 400,000 against new total 400,000
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestInvoice_ReplaceItems_EmptySet(t *testing.T) {
	t.Run("nothing paid becomes cancelled", func(t *testing.T) {
		inv := createTestInvoice(t, 1000000)
		require.NoError(t, inv.ReplaceItems(nil))
		assert.True(t, inv.TotalAmount.IsZero())
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	})

	t.Run("historically paid becomes paid", func(t *testing.T) {
		inv := createTestInvoice(t, 1000000)
		require.NoError(t, inv.ApplyPaymentDelta(decimal.NewFromInt(200000)))
		require.NoError(t, inv.ReplaceItems(nil))
		assert.True(t, inv.TotalAmount.IsZero())
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})
}

func TestInvoice_ReplaceItems_InvalidItemRejected(t *testing.T) {
	inv := createTestInvoice(t, 1000000)

	bad := InvoiceItem{ID: uuid.New(), Type: ItemType("FUEL"), Description: "x", Amount: decimal.NewFromInt(100)}
	err := inv.ReplaceItems([]InvoiceItem{bad})
	assert.Error(t, err)
	// Invoice unchanged on rejection
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000000)))
}

// ============================================
// Status Override Tests
// ============================================

func TestInvoice_OverrideStatus(t *testing.T) {
	inv := createTestInvoice(t, 1000000)

	require.NoError(t, inv.OverrideStatus(InvoiceStatusCancelled))
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.False(t, inv.Status.CanAcceptPayment())

	assert.Error(t, inv.OverrideStatus(InvoiceStatus("VOID")))
}
