package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/interfaces/http/dto"
)

// FeeRateHandler handles fee rate registry endpoints
type FeeRateHandler struct {
	BaseHandler
	feeRateService *billingapp.FeeRateService
}

// NewFeeRateHandler creates a new FeeRateHandler
func NewFeeRateHandler(feeRateService *billingapp.FeeRateService) *FeeRateHandler {
	return &FeeRateHandler{feeRateService: feeRateService}
}

// Create registers a new rate, closing the previous open rate for the
// same fee type
func (h *FeeRateHandler) Create(c *gin.Context) {
	var req billingapp.CreateFeeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.feeRateService.CreateFeeRate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one fee rate
func (h *FeeRateHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid fee rate ID")
		return
	}

	resp, err := h.feeRateService.GetFeeRate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a paginated rate history, newest first
func (h *FeeRateHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.feeRateService.ListFeeRates(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Deactivate retires a rate without deleting its history
func (h *FeeRateHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid fee rate ID")
		return
	}

	resp, err := h.feeRateService.DeactivateFeeRate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers fee rate routes
func (h *FeeRateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/fee-rates")
	{
		rates.GET("", h.List)
		rates.GET("/:id", h.Get)
		rates.POST("", h.Create)
		rates.POST("/:id/deactivate", h.Deactivate)
	}
}
