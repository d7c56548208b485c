// Package job_repo provides the PostgreSQL implementation of the job
// document repository.
package job_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/domain/job"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres"
)

const jobsTable = "doc_jobs"

var jobColumns = []string{
	"id", "number", "customer_name", "address", "installed_at", "created_at",
}

// JobRepo implements job.Repository.
type JobRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewJobRepo creates a new job repository.
func NewJobRepo(txManager *postgres.TxManager) *JobRepo {
	return &JobRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a job record.
func (r *JobRepo) Create(ctx context.Context, j *job.Job) error {
	q := r.builder.Insert(jobsTable).
		Columns(jobColumns...).
		Values(j.ID, j.Number, j.CustomerName, j.Address, j.InstalledAt, j.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID returns a job or a not-found error.
func (r *JobRepo) GetByID(ctx context.Context, jobID id.ID) (*job.Job, error) {
	q := r.builder.Select(jobColumns...).
		From(jobsTable).
		Where(squirrel.Eq{"id": jobID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var j job.Job
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &j, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("job", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// List returns jobs matching the filter, newest installations first.
func (r *JobRepo) List(ctx context.Context, filter job.ListFilter) ([]job.Job, error) {
	q := r.builder.Select(jobColumns...).
		From(jobsTable).
		OrderBy("installed_at DESC", "created_at DESC")

	if filter.Number != "" {
		q = q.Where(squirrel.Eq{"number": filter.Number})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var jobs []job.Job
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &jobs, sql, args...); err != nil {
		return nil, fmt.Errorf("select jobs: %w", err)
	}
	return jobs, nil
}

var _ job.Repository = (*JobRepo)(nil)
