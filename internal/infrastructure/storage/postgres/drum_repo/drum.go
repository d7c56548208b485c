// Package drum_repo provides PostgreSQL implementations for the drum
// catalog and its usage event register.
package drum_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/domain/drum"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres"
)

const drumsTable = "cat_drums"

var drumColumns = []string{
	"id", "drum_number", "item_name", "capacity", "current_quantity",
	"status", "calculation_method", "manual_wastage",
	"received_at", "created_at", "updated_at", "deleted_at",
}

// DrumRepo implements drum.Repository.
type DrumRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewDrumRepo creates a new drum catalog repository.
func NewDrumRepo(txManager *postgres.TxManager) *DrumRepo {
	return &DrumRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new drum.
func (r *DrumRepo) Create(ctx context.Context, d *drum.Drum) error {
	q := r.builder.Insert(drumsTable).
		Columns(drumColumns[:len(drumColumns)-1]...).
		Values(
			d.ID, d.DrumNumber, d.ItemName, d.Capacity, d.CurrentQuantity,
			d.Status, d.CalculationMethod, d.ManualWastage,
			d.ReceivedAt, d.CreatedAt, d.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert drum: %w", err)
	}
	return nil
}

// GetByID returns a drum or a not-found error.
func (r *DrumRepo) GetByID(ctx context.Context, drumID id.ID) (*drum.Drum, error) {
	return r.getOne(ctx, squirrel.Eq{"id": drumID}, "")
}

// GetByIDForUpdate returns a drum with a row lock. The lock serializes
// concurrent recordings against the same drum for the rest of the
// surrounding transaction.
func (r *DrumRepo) GetByIDForUpdate(ctx context.Context, drumID id.ID) (*drum.Drum, error) {
	return r.getOne(ctx, squirrel.Eq{"id": drumID}, "FOR UPDATE")
}

// GetByNumber returns a drum by its stencilled code.
func (r *DrumRepo) GetByNumber(ctx context.Context, drumNumber string) (*drum.Drum, error) {
	return r.getOne(ctx, squirrel.Eq{"drum_number": drumNumber}, "")
}

func (r *DrumRepo) getOne(ctx context.Context, where squirrel.Eq, suffix string) (*drum.Drum, error) {
	q := r.builder.Select(drumColumns...).
		From(drumsTable).
		Where(where).
		Where(squirrel.Eq{"deleted_at": nil})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d drum.Drum
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("drum", where)
		}
		return nil, fmt.Errorf("get drum: %w", err)
	}
	return &d, nil
}

// List returns drums matching the filter, newest first.
func (r *DrumRepo) List(ctx context.Context, filter drum.ListFilter) ([]drum.Drum, error) {
	q := r.builder.Select(drumColumns...).
		From(drumsTable).
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ItemName != "" {
		q = q.Where("LOWER(item_name) = LOWER(?)", filter.ItemName)
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

	var drums []drum.Drum
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &drums, sql, args...); err != nil {
		return nil, fmt.Errorf("select drums: %w", err)
	}
	return drums, nil
}

// Update persists quantity, status and override changes.
func (r *DrumRepo) Update(ctx context.Context, d *drum.Drum) error {
	d.UpdatedAt = time.Now().UTC()

	q := r.builder.Update(drumsTable).
		Set("item_name", d.ItemName).
		Set("current_quantity", d.CurrentQuantity).
		Set("status", d.Status).
		Set("calculation_method", d.CalculationMethod).
		Set("manual_wastage", d.ManualWastage).
		Set("updated_at", d.UpdatedAt).
		Where(squirrel.Eq{"id": d.ID}).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update drum: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("drum", d.ID)
	}
	return nil
}

// Delete soft-deletes a drum. Usage events keep referencing it.
func (r *DrumRepo) Delete(ctx context.Context, drumID id.ID) error {
	q := r.builder.Update(drumsTable).
		Set("deleted_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": drumID}).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete drum: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("drum", drumID)
	}
	return nil
}

// Ensure interface compliance.
var _ drum.Repository = (*DrumRepo)(nil)
