package inventory

import (
	"context"

	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// Repository defines storage operations for stock items, monthly usage
// records and their supporting entries.
type Repository interface {
	// Items

	CreateItem(ctx context.Context, item *StockItem) error

	// GetItemByID returns an item or apperror.NewNotFound
	GetItemByID(ctx context.Context, itemID id.ID) (*StockItem, error)

	// GetItemByName resolves an item by case-insensitive name
	GetItemByName(ctx context.Context, name string) (*StockItem, error)

	// GetItemByNameForUpdate resolves with a row lock, for the
	// reconciliation read-modify-write
	GetItemByNameForUpdate(ctx context.Context, name string) (*StockItem, error)

	ListItems(ctx context.Context) ([]StockItem, error)

	// AdjustStock applies a signed delta to an item's stock, floored at zero
	AdjustStock(ctx context.Context, itemID id.ID, delta types.Length) error

	// DeductStockByName decrements stock for a case-insensitive name match,
	// floored at zero. Returns false when no item matches.
	DeductStockByName(ctx context.Context, name string, qty types.Length) (bool, error)

	// Monthly usage records

	// GetMonthlyRecordForUpdate returns the record for (item, month, year)
	// with a row lock, or nil when no sync has recorded this period yet
	GetMonthlyRecordForUpdate(ctx context.Context, itemID id.ID, month, year int) (*MonthlyUsageRecord, error)

	// UpsertMonthlyRecord writes total_used and last_synced_at for the
	// unique (item, month, year) key
	UpsertMonthlyRecord(ctx context.Context, rec *MonthlyUsageRecord) error

	ListMonthlyRecords(ctx context.Context, month, year int) ([]MonthlyUsageRecord, error)

	DeleteMonthlyRecords(ctx context.Context, month, year int) error

	// Supporting entries

	AddReceipt(ctx context.Context, r *StockReceipt) error

	AddWasteEntry(ctx context.Context, w *StockWasteEntry) error

	// RecomputeStocks rebuilds every item's current_stock from
	// receipts - usages - waste. Consistency repair, not a hot path.
	RecomputeStocks(ctx context.Context) error
}
