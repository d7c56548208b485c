// Package inventory provides the warehouse stock ledger shared by the
// per-job recording path and the monthly reconciliation path.
package inventory

import (
	"context"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// StockItem is a shared linear-unit pool for one hardware item, independent
// of any single drum. Both write paths decrement it, floored at zero.
type StockItem struct {
	ID id.ID `db:"id" json:"id"`

	// Name is unique; lookups are case-insensitive
	Name string `db:"name" json:"name"`

	CurrentStock types.Length `db:"current_stock" json:"currentStock"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockItem creates an item with the given opening stock.
func NewStockItem(name string, openingStock types.Length) *StockItem {
	now := time.Now().UTC()
	return &StockItem{
		ID:           id.New(),
		Name:         name,
		CurrentStock: openingStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate implements basic invariants for item creation.
func (i *StockItem) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	return nil
}

// MonthlyUsageRecord is the sole source of truth for how much of an item a
// period's sync has already deducted. TotalUsed is the snapshot of the last
// full recomputation; only the positive delta against it is ever subtracted
// from stock.
type MonthlyUsageRecord struct {
	ID     id.ID `db:"id" json:"id"`
	ItemID id.ID `db:"item_id" json:"itemId"`
	Month  int   `db:"month" json:"month"`
	Year   int   `db:"year" json:"year"`

	TotalUsed types.Length `db:"total_used" json:"totalUsed"`

	LastSyncedAt time.Time `db:"last_synced_at" json:"lastSyncedAt"`
}

// NewMonthlyUsageRecord creates a record for an (item, month, year) key.
func NewMonthlyUsageRecord(itemID id.ID, month, year int, totalUsed types.Length) *MonthlyUsageRecord {
	return &MonthlyUsageRecord{
		ID:           id.New(),
		ItemID:       itemID,
		Month:        month,
		Year:         year,
		TotalUsed:    totalUsed,
		LastSyncedAt: time.Now().UTC(),
	}
}

// StockReceipt records cable arriving at the warehouse. Receipts are one of
// the three terms of the full stock recomputation.
type StockReceipt struct {
	ID         id.ID        `db:"id" json:"id"`
	ItemID     id.ID        `db:"item_id" json:"itemId"`
	Quantity   types.Length `db:"quantity" json:"quantity"`
	ReceivedAt time.Time    `db:"received_at" json:"receivedAt"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// StockWasteEntry records a manual warehouse write-off (damaged, lost,
// miscounted), distinct from per-drum wastage.
type StockWasteEntry struct {
	ID        id.ID        `db:"id" json:"id"`
	ItemID    id.ID        `db:"item_id" json:"itemId"`
	Quantity  types.Length `db:"quantity" json:"quantity"`
	Note      string       `db:"note" json:"note"`
	NotedAt   time.Time    `db:"noted_at" json:"notedAt"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}
