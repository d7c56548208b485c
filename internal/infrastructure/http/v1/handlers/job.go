package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/domain/job"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/http/v1/dto"
)

// JobHandler serves the job recording endpoints.
type JobHandler struct {
	*BaseHandler
	service *job.Service
}

// NewJobHandler creates a new job handler.
func NewJobHandler(base *BaseHandler, service *job.Service) *JobHandler {
	return &JobHandler{BaseHandler: base, service: service}
}

// Create records a job with optional drum consumption.
// POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := job.RecordInput{
		Number:          req.Number,
		CustomerName:    req.CustomerName,
		Address:         req.Address,
		StartPoint:      req.StartPoint,
		EndPoint:        req.EndPoint,
		TotalLength:     req.TotalLength,
		ExplicitWastage: req.Wastage,
		UsageDate:       req.UsageDate,
	}
	if req.DrumID != nil && *req.DrumID != "" {
		drumID, err := id.Parse(*req.DrumID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid drum id").WithDetail("field", "drumId"))
			return
		}
		input.DrumID = &drumID
	}

	result, err := h.service.RecordUsage(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(201, result)
}

// Get returns one job.
// GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	jobID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	j, err := h.service.GetByID(c.Request.Context(), jobID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, j)
}

// List returns jobs matching the filter.
// GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	var req dto.JobListFilter
	if !h.BindQuery(c, &req) {
		return
	}

	jobs, err := h.service.List(c.Request.Context(), job.ListFilter{
		Number: req.Number,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": jobs, "count": len(jobs)})
}
