package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
)

var monthlyColumns = []string{
	"id", "item_id", "month", "year", "total_used", "last_synced_at",
}

// GetMonthlyRecordForUpdate returns the record for (item, month, year) with a
// row lock, or nil when no sync has touched this period yet.
func (r *InventoryRepo) GetMonthlyRecordForUpdate(ctx context.Context, itemID id.ID, month, year int) (*inventory.MonthlyUsageRecord, error) {
	q := r.builder.Select(monthlyColumns...).
		From(monthlyTable).
		Where(squirrel.Eq{"item_id": itemID, "month": month, "year": year}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec inventory.MonthlyUsageRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get monthly record: %w", err)
	}
	return &rec, nil
}

// UpsertMonthlyRecord writes total_used and last_synced_at for the unique
// (item, month, year) key.
func (r *InventoryRepo) UpsertMonthlyRecord(ctx context.Context, rec *inventory.MonthlyUsageRecord) error {
	q := r.builder.Insert(monthlyTable).
		Columns(monthlyColumns...).
		Values(rec.ID, rec.ItemID, rec.Month, rec.Year, rec.TotalUsed, rec.LastSyncedAt).
		Suffix(`ON CONFLICT (item_id, month, year) DO UPDATE
			SET total_used = EXCLUDED.total_used,
			    last_synced_at = EXCLUDED.last_synced_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert monthly record: %w", err)
	}
	return nil
}

// ListMonthlyRecords returns all records for a period.
func (r *InventoryRepo) ListMonthlyRecords(ctx context.Context, month, year int) ([]inventory.MonthlyUsageRecord, error) {
	q := r.builder.Select(monthlyColumns...).
		From(monthlyTable).
		Where(squirrel.Eq{"month": month, "year": year}).
		OrderBy("item_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []inventory.MonthlyUsageRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select monthly records: %w", err)
	}
	return records, nil
}

// DeleteMonthlyRecords removes all records for a period.
func (r *InventoryRepo) DeleteMonthlyRecords(ctx context.Context, month, year int) error {
	q := r.builder.Delete(monthlyTable).
		Where(squirrel.Eq{"month": month, "year": year})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete monthly records: %w", err)
	}
	return nil
}
