package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MACM18/NNS-sub002/internal/domain/drum"
	"github.com/MACM18/NNS-sub002/internal/domain/usage"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/http/v1/dto"
)

// DrumHandler serves the drum catalog and per-drum usage endpoints.
type DrumHandler struct {
	*BaseHandler
	service *drum.Service
}

// NewDrumHandler creates a new drum handler.
func NewDrumHandler(base *BaseHandler, service *drum.Service) *DrumHandler {
	return &DrumHandler{BaseHandler: base, service: service}
}

// Create registers a new drum.
// POST /api/v1/drums
func (h *DrumHandler) Create(c *gin.Context) {
	var req dto.CreateDrumRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d := drum.NewDrum(req.DrumNumber, req.ItemName, req.Capacity)
	if req.CalculationMethod != "" {
		d.CalculationMethod = usage.Method(req.CalculationMethod)
	}

	if err := h.service.Register(c.Request.Context(), d); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, d.ID.String())
}

// Get returns one drum.
// GET /api/v1/drums/:id
func (h *DrumHandler) Get(c *gin.Context) {
	drumID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), drumID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// List returns drums matching the filter.
// GET /api/v1/drums
func (h *DrumHandler) List(c *gin.Context) {
	var req dto.DrumListFilter
	if !h.BindQuery(c, &req) {
		return
	}

	filter := drum.ListFilter{
		ItemName: req.ItemName,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Status != "" {
		status := drum.Status(req.Status)
		filter.Status = &status
	}

	drums, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": drums, "count": len(drums)})
}

// Usage returns the drum's computed usage metrics.
// GET /api/v1/drums/:id/usage
func (h *DrumHandler) Usage(c *gin.Context) {
	drumID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	metrics, err := h.service.UsageMetrics(c.Request.Context(), drumID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, metrics)
}

// Events returns the drum's usage history.
// GET /api/v1/drums/:id/events
func (h *DrumHandler) Events(c *gin.Context) {
	drumID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	events, err := h.service.Events(c.Request.Context(), drumID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": events, "count": len(events)})
}

// SetWastage saves a manual wastage override. A valid value that crosses the
// advisory threshold still saves; the response carries the warning.
// PUT /api/v1/drums/:id/wastage
func (h *DrumHandler) SetWastage(c *gin.Context) {
	drumID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ManualWastageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.SetManualWastage(c.Request.Context(), drumID, req.Value)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Recompute re-derives the drum's quantity and status from its history.
// POST /api/v1/drums/:id/recompute
func (h *DrumHandler) Recompute(c *gin.Context) {
	drumID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.RecomputeStatus(c.Request.Context(), drumID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}
