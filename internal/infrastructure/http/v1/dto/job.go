package dto

import (
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// CreateJobRequest records one installation job, optionally with drum
// consumption. Length fields accept JSON numbers or numeric strings; absent
// and malformed values coerce to zero.
type CreateJobRequest struct {
	Number       string `json:"number" binding:"required"`
	CustomerName string `json:"customerName"`
	Address      string `json:"address"`

	// DrumID selects the consumed drum; omit for a cable-less job
	DrumID *string `json:"drumId"`

	StartPoint  types.Length `json:"startPoint"`
	EndPoint    types.Length `json:"endPoint"`
	TotalLength types.Length `json:"totalLength"`
	Wastage     types.Length `json:"wastage"`

	UsageDate time.Time `json:"usageDate" binding:"required"`
}

// JobListFilter narrows job listings.
type JobListFilter struct {
	Number string `form:"number"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
