// Package inventory_repo provides PostgreSQL implementations for stock
// items, monthly usage records and their supporting registers.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres"
)

const (
	itemsTable    = "inv_stock_items"
	monthlyTable  = "inv_monthly_usage"
	receiptsTable = "inv_stock_receipts"
	wasteTable    = "inv_stock_waste"
)

var itemColumns = []string{
	"id", "name", "current_stock", "created_at", "updated_at",
}

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateItem inserts a stock item.
func (r *InventoryRepo) CreateItem(ctx context.Context, item *inventory.StockItem) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(item.ID, item.Name, item.CurrentStock, item.CreatedAt, item.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetItemByID returns an item or a not-found error.
func (r *InventoryRepo) GetItemByID(ctx context.Context, itemID id.ID) (*inventory.StockItem, error) {
	return r.getItem(ctx, squirrel.Eq{"id": itemID}, "")
}

// GetItemByName resolves an item by case-insensitive name.
func (r *InventoryRepo) GetItemByName(ctx context.Context, name string) (*inventory.StockItem, error) {
	return r.getItem(ctx, squirrel.Expr("LOWER(name) = LOWER(?)", name), "")
}

// GetItemByNameForUpdate resolves an item with a row lock so the
// reconciliation read-modify-write is serialized per item.
func (r *InventoryRepo) GetItemByNameForUpdate(ctx context.Context, name string) (*inventory.StockItem, error) {
	return r.getItem(ctx, squirrel.Expr("LOWER(name) = LOWER(?)", name), "FOR UPDATE")
}

func (r *InventoryRepo) getItem(ctx context.Context, where squirrel.Sqlizer, suffix string) (*inventory.StockItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(where)
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item inventory.StockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock item", where)
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return &item, nil
}

// ListItems returns every stock item ordered by name.
func (r *InventoryRepo) ListItems(ctx context.Context) ([]inventory.StockItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []inventory.StockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock items: %w", err)
	}
	return items, nil
}

// AdjustStock applies a signed delta to an item's stock. The floor at zero
// happens in SQL so concurrent adjustments cannot drive stock negative.
func (r *InventoryRepo) AdjustStock(ctx context.Context, itemID id.ID, delta types.Length) error {
	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx,
		`UPDATE `+itemsTable+`
		 SET current_stock = GREATEST(current_stock + $1, 0), updated_at = $2
		 WHERE id = $3`,
		delta, time.Now().UTC(), itemID,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID)
	}
	return nil
}

// DeductStockByName decrements stock for a case-insensitive name match,
// floored at zero. Returns false when no item matches the name.
func (r *InventoryRepo) DeductStockByName(ctx context.Context, name string, qty types.Length) (bool, error) {
	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx,
		`UPDATE `+itemsTable+`
		 SET current_stock = GREATEST(current_stock - $1, 0), updated_at = $2
		 WHERE LOWER(name) = LOWER($3)`,
		qty, time.Now().UTC(), name,
	)
	if err != nil {
		return false, fmt.Errorf("deduct stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecomputeStocks rebuilds every item's stock from the supporting registers:
// receipts minus recorded monthly usage minus warehouse waste, floored at
// zero.
func (r *InventoryRepo) RecomputeStocks(ctx context.Context) error {
	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx,
		`UPDATE `+itemsTable+` AS i
		 SET current_stock = GREATEST(
		         COALESCE((SELECT SUM(quantity) FROM `+receiptsTable+` WHERE item_id = i.id), 0)
		       - COALESCE((SELECT SUM(total_used) FROM `+monthlyTable+` WHERE item_id = i.id), 0)
		       - COALESCE((SELECT SUM(quantity) FROM `+wasteTable+` WHERE item_id = i.id), 0),
		         0),
		     updated_at = $1`,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recompute stocks: %w", err)
	}
	return nil
}

var _ inventory.Repository = (*InventoryRepo)(nil)
