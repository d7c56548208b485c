// Package job provides installation job records and the transactional
// usage-recording path that writes job, usage event, drum and warehouse
// stock in one atomic step.
package job

import (
	"context"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
)

// Job is one field installation. The job record itself is independent of
// drum bookkeeping: a job with no drum effects still succeeds alone.
type Job struct {
	ID id.ID `db:"id" json:"id"`

	// Number is the telephone/connection number identifying the job
	Number string `db:"number" json:"number"`

	CustomerName string `db:"customer_name" json:"customerName"`
	Address      string `db:"address" json:"address"`

	// InstalledAt is the field installation date, shared with the drum
	// usage event as its usage date
	InstalledAt time.Time `db:"installed_at" json:"installedAt"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewJob creates a job record.
func NewJob(number, customerName, address string, installedAt time.Time) *Job {
	return &Job{
		ID:           id.New(),
		Number:       number,
		CustomerName: customerName,
		Address:      address,
		InstalledAt:  installedAt,
		CreatedAt:    time.Now().UTC(),
	}
}

// Validate checks required job fields. Failing here aborts the recording
// path before any drum logic runs.
func (j *Job) Validate(ctx context.Context) error {
	if j.Number == "" {
		return apperror.NewValidation("job number is required").WithDetail("field", "number")
	}
	if j.InstalledAt.IsZero() {
		return apperror.NewValidation("installation date is required").WithDetail("field", "installedAt")
	}
	return nil
}
