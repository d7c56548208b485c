package job

import (
	"context"

	"github.com/MACM18/NNS-sub002/internal/core/id"
)

// Repository defines storage operations for job records.
type Repository interface {
	Create(ctx context.Context, j *Job) error

	// GetByID returns a job or apperror.NewNotFound
	GetByID(ctx context.Context, jobID id.ID) (*Job, error)

	List(ctx context.Context, filter ListFilter) ([]Job, error)
}

// ListFilter narrows job listings.
type ListFilter struct {
	Number string
	Limit  int
	Offset int
}
