package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
)

// PaymentHandler handles manual payment recording and amendment endpoints
type PaymentHandler struct {
	BaseHandler
	reconcileService *billingapp.ReconcileService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(reconcileService *billingapp.ReconcileService) *PaymentHandler {
	return &PaymentHandler{reconcileService: reconcileService}
}

// Record creates a payment and reconciles the parent invoice
func (h *PaymentHandler) Record(c *gin.Context) {
	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reconcileService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	resp, err := h.reconcileService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Amend patches a payment; amount changes re-reconcile the invoice
func (h *PaymentHandler) Amend(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req billingapp.AmendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reconcileService.AmendPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Remove deletes a payment and rolls its amount back off the invoice
func (h *PaymentHandler) Remove(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.reconcileService.RemovePayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListByInvoice returns all payments recorded against one invoice
func (h *PaymentHandler) ListByInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.reconcileService.ListPaymentsByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.GET("/:id", h.Get)
		payments.PATCH("/:id", h.Amend)
		payments.DELETE("/:id", h.Remove)
	}

	rg.GET("/invoices/:id/payments", h.ListByInvoice)
}
