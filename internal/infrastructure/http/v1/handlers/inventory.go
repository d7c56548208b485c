package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
	"github.com/MACM18/NNS-sub002/internal/domain/reconcile"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves warehouse stock and reconciliation endpoints.
type InventoryHandler struct {
	*BaseHandler
	items     *inventory.Service
	reconcile *reconcile.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, items *inventory.Service, rec *reconcile.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, items: items, reconcile: rec}
}

// ListItems returns all stock items.
// GET /api/v1/inventory/items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListItems(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// GetItem returns one stock item.
// GET /api/v1/inventory/items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.items.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// AddReceipt credits arriving stock to an item.
// POST /api/v1/inventory/items/:id/receipts
func (h *InventoryHandler) AddReceipt(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AddReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.items.AddReceipt(c.Request.Context(), itemID, req.Quantity, req.ReceivedAt); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "receipt recorded")
}

// AddWaste records a manual warehouse write-off.
// POST /api/v1/inventory/items/:id/waste
func (h *InventoryHandler) AddWaste(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AddWasteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.items.AddWaste(c.Request.Context(), itemID, req.Quantity, req.Note); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "waste recorded")
}

// Sync applies a monthly reconciliation batch.
// POST /api/v1/inventory/sync
func (h *InventoryHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rows := make([]reconcile.Row, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = reconcile.Row(r)
	}

	summary, err := h.reconcile.Sync(c.Request.Context(), rows, req.Month, req.Year, req.SyncID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// ResetMonth undoes a period's sync deductions and deletes its records.
// POST /api/v1/inventory/sync/reset
func (h *InventoryHandler) ResetMonth(c *gin.Context) {
	var req dto.ResetMonthRequest
	if !h.BindJSON(c, &req) {
		return
	}

	restored, err := h.reconcile.ResetMonth(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"itemsRestored": restored})
}

// Recompute rebuilds every item's stock from its supporting registers.
// POST /api/v1/inventory/recompute
func (h *InventoryHandler) Recompute(c *gin.Context) {
	if err := h.reconcile.RecomputeStocks(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "stocks recomputed")
}
