package dto

import (
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// AddReceiptRequest credits arriving stock to an item.
type AddReceiptRequest struct {
	Quantity   types.Length `json:"quantity"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// AddWasteRequest records a manual warehouse write-off.
type AddWasteRequest struct {
	Quantity types.Length `json:"quantity"`
	Note     string       `json:"note"`
}

// SyncRequest carries one monthly reconciliation batch. Rows are free-form
// source records keyed by hardware field name.
type SyncRequest struct {
	Rows  []map[string]any `json:"rows" binding:"required"`
	Month int              `json:"month" binding:"required"`
	Year  int              `json:"year" binding:"required"`

	// SyncID correlates retries of the same batch; generated when absent
	SyncID string `json:"syncId"`
}

// ResetMonthRequest undoes a period's sync deductions.
type ResetMonthRequest struct {
	Month int `json:"month" binding:"required"`
	Year  int `json:"year" binding:"required"`
}
