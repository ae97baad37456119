package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/dormhub/backend/internal/application/billing"
)

// GatewayHandler handles redirect-gateway payment endpoints: payment URL
// creation, the asynchronous IPN callback and the synchronous browser
// return.
type GatewayHandler struct {
	BaseHandler
	gatewayService *billingapp.GatewayPaymentService
	resultURL      string // front-end result page; empty renders JSON instead
}

// NewGatewayHandler creates a new GatewayHandler
func NewGatewayHandler(gatewayService *billingapp.GatewayPaymentService, resultURL string) *GatewayHandler {
	return &GatewayHandler{
		gatewayService: gatewayService,
		resultURL:      resultURL,
	}
}

// CreatePaymentURLRequest identifies the paying resident
type CreatePaymentURLRequest struct {
	ResidentID uuid.UUID `json:"resident_id" binding:"required"`
}

// CreatePaymentURL creates a pending gateway payment for the invoice and
// returns the signed redirect URL
func (h *GatewayHandler) CreatePaymentURL(c *gin.Context) {
	invoiceID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CreatePaymentURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.gatewayService.CreatePaymentURL(c.Request.Context(), invoiceID, req.ResidentID, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// IPN receives the gateway's server-to-server notification. The response
// body is the gateway's acknowledgement format, not the API envelope:
// the gateway retries delivery until it reads RspCode 00.
func (h *GatewayHandler) IPN(c *gin.Context) {
	ack := h.gatewayService.ProcessIPN(c.Request.Context(), queryParams(c))
	c.JSON(http.StatusOK, ack)
}

// Return receives the browser redirect after payment and forwards the
// outcome to the front-end result page
func (h *GatewayHandler) Return(c *gin.Context) {
	redirect := h.gatewayService.VerifyReturn(c.Request.Context(), queryParams(c))

	if h.resultURL == "" {
		h.Success(c, redirect)
		return
	}

	c.Redirect(http.StatusFound, h.resultURL+"?"+redirect.QueryParams())
}

// queryParams flattens the request query into the map the gateway
// adapter verifies
func queryParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params
}

// RegisterRoutes registers gateway payment routes
func (h *GatewayHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/invoices/:id/payment-url", h.CreatePaymentURL)

	gateway := rg.Group("/payments/gateway")
	{
		gateway.GET("/ipn", h.IPN)
		gateway.GET("/return", h.Return)
	}
}
