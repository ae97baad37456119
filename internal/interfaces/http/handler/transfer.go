package handler

import (
	"github.com/gin-gonic/gin"

	housingapp "github.com/dormhub/backend/internal/application/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/interfaces/http/dto"
)

// TransferHandler handles room transfer workflow endpoints
type TransferHandler struct {
	BaseHandler
	transferService *housingapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *housingapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Request creates a pending transfer for a renting resident
func (h *TransferHandler) Request(c *gin.Context) {
	var req housingapp.RequestTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.transferService.RequestTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one transfer
func (h *TransferHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	resp, err := h.transferService.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a paginated transfer page
func (h *TransferHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.transferService.ListTransfers(c.Request.Context(), shared.Filter{
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

// SetStatus moves a transfer through approve / reject / complete
func (h *TransferHandler) SetStatus(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req housingapp.SetTransferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.transferService.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a transfer that never moved anyone
func (h *TransferHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	if err := h.transferService.DeleteTransfer(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.GET("", h.List)
		transfers.GET("/:id", h.Get)
		transfers.POST("", h.Request)
		transfers.POST("/:id/status", h.SetStatus)
		transfers.DELETE("/:id", h.Delete)
	}
}
