package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
)

// MeterReadingHandler handles utility meter reading endpoints
type MeterReadingHandler struct {
	BaseHandler
	readingService *billingapp.MeterReadingService
}

// NewMeterReadingHandler creates a new MeterReadingHandler
func NewMeterReadingHandler(readingService *billingapp.MeterReadingService) *MeterReadingHandler {
	return &MeterReadingHandler{readingService: readingService}
}

// Record registers a monthly index reading for one room meter
func (h *MeterReadingHandler) Record(c *gin.Context) {
	var req billingapp.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.readingService.RecordReading(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one reading with its derived consumption
func (h *MeterReadingHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reading ID")
		return
	}

	resp, err := h.readingService.GetReading(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByPeriod returns all readings recorded for a billing period
func (h *MeterReadingHandler) ListByPeriod(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		h.BadRequest(c, "period query parameter is required")
		return
	}

	readings, err := h.readingService.ListReadingsByPeriod(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, readings)
}

// Delete removes a reading
func (h *MeterReadingHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reading ID")
		return
	}

	if err := h.readingService.DeleteReading(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers meter reading routes
func (h *MeterReadingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	readings := rg.Group("/meter-readings")
	{
		readings.GET("", h.ListByPeriod)
		readings.GET("/:id", h.Get)
		readings.POST("", h.Record)
		readings.DELETE("/:id", h.Delete)
	}
}
