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

// InvoiceService provides application-level invoice ledger operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// InvoiceItemRequest is one line item in a create/update request
type InvoiceItemRequest struct {
	Type        string          `json:"type" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest creates a manual invoice
type CreateInvoiceRequest struct {
	TargetKind      string               `json:"target_kind" binding:"required,oneof=RESIDENT ROOM"`
	TargetID        uuid.UUID            `json:"target_id" binding:"required"`
	Period          string               `json:"period" binding:"required"` // "YYYY-MM"
	IssueDate       *time.Time           `json:"issue_date"`
	DueDate         time.Time            `json:"due_date" binding:"required"`
	PaymentDeadline *time.Time           `json:"payment_deadline"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string               `json:"notes"`
	InitialStatus   *string              `json:"initial_status"`
}

// UpdateInvoiceRequest patches an invoice; a non-nil item set fully
// replaces the prior items.
type UpdateInvoiceRequest struct {
	DueDate         *time.Time           `json:"due_date"`
	PaymentDeadline *time.Time           `json:"payment_deadline"`
	Notes           *string              `json:"notes"`
	Items           []InvoiceItemRequest `json:"items"`
	Status          *string              `json:"status"`
}

// InvoiceItemResponse represents a line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	TargetKind      string                `json:"target_kind"`
	TargetID        uuid.UUID             `json:"target_id"`
	Period          string                `json:"period"`
	IssueDate       time.Time             `json:"issue_date"`
	DueDate         time.Time             `json:"due_date"`
	PaymentDeadline *time.Time            `json:"payment_deadline,omitempty"`
	Items           []InvoiceItemResponse `json:"items"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	Status          string                `json:"status"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	TargetKind string     `form:"target_kind"`
	TargetID   *uuid.UUID `form:"target_id"`
	Period     string     `form:"period"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// CreateInvoice creates a manual invoice with its items
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	target, err := billing.NewBillTarget(billing.TargetKind(req.TargetKind), req.TargetID)
	if err != nil {
		return nil, err
	}

	period, err := valueobject.ParseBillingPeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	items, err := buildInvoiceItems(req.Items)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	var initialStatus *billing.InvoiceStatus
	if req.InitialStatus != nil {
		st := billing.InvoiceStatus(*req.InitialStatus)
		initialStatus = &st
	}

	invoice, err := billing.NewInvoice(target, period, issueDate, req.DueDate, req.PaymentDeadline, items, req.Notes, initialStatus)
	if err != nil {
		return nil, err
	}

	// Invoice row and item rows land in one unit of work
	err = s.txManager.InTx(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("target", invoice.Target.String()),
		zap.String("period", invoice.Period.String()),
		zap.String("total", invoice.TotalAmount.String()))

	return toInvoiceResponse(invoice), nil
}

// GetInvoice returns an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[*InvoiceResponse], error) {
	domainFilter := billing.InvoiceFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.TargetKind != "" {
		kind := billing.TargetKind(filter.TargetKind)
		domainFilter.TargetKind = &kind
	}
	domainFilter.TargetID = filter.TargetID
	if filter.Period != "" {
		period, err := valueobject.ParseBillingPeriod(filter.Period)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
		}
		domainFilter.Period = &period
	}

	page, err := s.invoiceRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]*InvoiceResponse, len(page.Items))
	for i, inv := range page.Items {
		responses[i] = toInvoiceResponse(inv)
	}

	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// UpdateInvoice patches invoice fields. A supplied item set fully replaces
// the prior items and re-derives status from the existing paid amount; an
// explicit status in the request wins over the derived value.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var updated *billing.Invoice

	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if err := invoice.UpdateDetails(req.DueDate, req.PaymentDeadline, req.Notes); err != nil {
			return err
		}

		if req.Items != nil {
			items, err := buildInvoiceItems(req.Items)
			if err != nil {
				return err
			}
			if err := invoice.ReplaceItems(items); err != nil {
				return err
			}
		}

		if req.Status != nil {
			if err := invoice.OverrideStatus(billing.InvoiceStatus(*req.Status)); err != nil {
				return err
			}
		}

		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return err
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated",
		zap.String("invoice_id", id.String()),
		zap.String("status", updated.Status.String()),
		zap.String("total", updated.TotalAmount.String()))

	return toInvoiceResponse(updated), nil
}

// DeleteInvoice cascades: payments first, then the invoice and its items,
// inside one transaction.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.invoiceRepo.FindByIDForUpdate(txCtx, id); err != nil {
			return err
		}
		if err := s.paymentRepo.DeleteByInvoice(txCtx, id); err != nil {
			return err
		}
		return s.invoiceRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

func buildInvoiceItems(reqs []InvoiceItemRequest) ([]billing.InvoiceItem, error) {
	items := make([]billing.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		itemType := billing.ItemType(r.Type)
		var (
			item billing.InvoiceItem
			err  error
		)
		if r.Quantity.IsPositive() && r.UnitPrice.IsPositive() {
			item, err = billing.NewMeteredInvoiceItem(itemType, r.Description, r.Quantity, valueobject.NewMoneyVND(r.UnitPrice))
		} else {
			item, err = billing.NewInvoiceItem(itemType, r.Description, valueobject.NewMoneyVND(r.Amount))
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func toInvoiceItemResponse(item billing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:          item.ID,
		Type:        item.Type.String(),
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
	}
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = toInvoiceItemResponse(item)
	}
	return &InvoiceResponse{
		ID:              inv.ID,
		TargetKind:      inv.Target.Kind().String(),
		TargetID:        inv.Target.ID(),
		Period:          inv.Period.String(),
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		PaymentDeadline: inv.PaymentDeadline,
		Items:           items,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		Status:          inv.Status.String(),
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Version:         inv.Version,
	}
}
