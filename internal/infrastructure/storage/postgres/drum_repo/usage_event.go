package drum_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/drum"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres"
)

const eventsTable = "reg_usage_events"

var eventColumns = []string{
	"id", "drum_id", "job_id", "start_point", "end_point",
	"quantity_used", "wastage", "usage_date", "created_at",
}

// EventRepo implements drum.EventRepository over the usage event register.
type EventRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewEventRepo creates a new usage event repository.
func NewEventRepo(txManager *postgres.TxManager) *EventRepo {
	return &EventRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends an event to the register.
func (r *EventRepo) Create(ctx context.Context, e *drum.UsageEvent) error {
	q := r.builder.Insert(eventsTable).
		Columns(eventColumns...).
		Values(
			e.ID, e.DrumID, e.JobID, e.StartPoint, e.EndPoint,
			e.QuantityUsed, e.Wastage, e.UsageDate, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// GetLatestByDrum returns the most recent event for a drum, or nil when the
// drum has no history. Ties on usage_date break by insertion time so the
// retroactive check always sees the true predecessor.
func (r *EventRepo) GetLatestByDrum(ctx context.Context, drumID id.ID) (*drum.UsageEvent, error) {
	q := r.builder.Select(eventColumns...).
		From(eventsTable).
		Where(squirrel.Eq{"drum_id": drumID}).
		OrderBy("usage_date DESC", "created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e drum.UsageEvent
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest usage event: %w", err)
	}
	return &e, nil
}

// ListByDrum returns the full history for a drum in chronological order.
func (r *EventRepo) ListByDrum(ctx context.Context, drumID id.ID) ([]drum.UsageEvent, error) {
	q := r.builder.Select(eventColumns...).
		From(eventsTable).
		Where(squirrel.Eq{"drum_id": drumID}).
		OrderBy("usage_date ASC", "created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var events []drum.UsageEvent
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &events, sql, args...); err != nil {
		return nil, fmt.Errorf("select usage events: %w", err)
	}
	return events, nil
}

// UpdateWastage patches an event's stored wastage in place.
func (r *EventRepo) UpdateWastage(ctx context.Context, eventID id.ID, wastage types.Length) error {
	q := r.builder.Update(eventsTable).
		Set("wastage", wastage).
		Where(squirrel.Eq{"id": eventID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update event wastage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("usage event", eventID)
	}
	return nil
}

var _ drum.EventRepository = (*EventRepo)(nil)
