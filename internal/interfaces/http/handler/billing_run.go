package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
)

// BillingRunHandler handles bulk invoice generation endpoints
type BillingRunHandler struct {
	BaseHandler
	bulkService *billingapp.BulkInvoiceService
}

// NewBillingRunHandler creates a new BillingRunHandler
func NewBillingRunHandler(bulkService *billingapp.BulkInvoiceService) *BillingRunHandler {
	return &BillingRunHandler{bulkService: bulkService}
}

// BillingRunRequest selects the billing period for a generation run
type BillingRunRequest struct {
	Period string `json:"period" binding:"required,billing_period"` // "YYYY-MM"
}

// Run executes all three generation passes for the period
func (h *BillingRunHandler) Run(c *gin.Context) {
	h.runPass(c, func(ctx context.Context, period valueobject.BillingPeriod) (any, error) {
		return h.bulkService.Generate(ctx, period)
	})
}

// RoomFees generates monthly room fee invoices only
func (h *BillingRunHandler) RoomFees(c *gin.Context) {
	h.runPass(c, func(ctx context.Context, period valueobject.BillingPeriod) (any, error) {
		return h.bulkService.GenerateRoomFees(ctx, period)
	})
}

// ParkingFees generates monthly parking fee invoices only
func (h *BillingRunHandler) ParkingFees(c *gin.Context) {
	h.runPass(c, func(ctx context.Context, period valueobject.BillingPeriod) (any, error) {
		return h.bulkService.GenerateParkingFees(ctx, period)
	})
}

// Utilities generates utility invoices from meter readings only
func (h *BillingRunHandler) Utilities(c *gin.Context) {
	h.runPass(c, func(ctx context.Context, period valueobject.BillingPeriod) (any, error) {
		return h.bulkService.GenerateUtilityInvoices(ctx, period)
	})
}

func (h *BillingRunHandler) runPass(c *gin.Context, pass func(context.Context, valueobject.BillingPeriod) (any, error)) {
	var req BillingRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := valueobject.ParseBillingPeriod(req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := pass(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers billing run routes
func (h *BillingRunHandler) RegisterRoutes(rg *gin.RouterGroup) {
	runs := rg.Group("/billing-runs")
	{
		runs.POST("", h.Run)
		runs.POST("/room-fees", h.RoomFees)
		runs.POST("/parking-fees", h.ParkingFees)
		runs.POST("/utilities", h.Utilities)
	}
}
