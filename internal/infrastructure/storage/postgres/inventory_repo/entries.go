package inventory_repo

import (
	"context"
	"fmt"

	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
)

// AddReceipt appends a stock receipt entry.
func (r *InventoryRepo) AddReceipt(ctx context.Context, rec *inventory.StockReceipt) error {
	q := r.builder.Insert(receiptsTable).
		Columns("id", "item_id", "quantity", "received_at", "created_at").
		Values(rec.ID, rec.ItemID, rec.Quantity, rec.ReceivedAt, rec.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock receipt: %w", err)
	}
	return nil
}

// AddWasteEntry appends a warehouse waste entry.
func (r *InventoryRepo) AddWasteEntry(ctx context.Context, w *inventory.StockWasteEntry) error {
	q := r.builder.Insert(wasteTable).
		Columns("id", "item_id", "quantity", "note", "noted_at", "created_at").
		Values(w.ID, w.ItemID, w.Quantity, w.Note, w.NotedAt, w.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert waste entry: %w", err)
	}
	return nil
}
