package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/tx"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// Service provides business operations for warehouse stock items.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new inventory service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// ListItems returns all stock items.
func (s *Service) ListItems(ctx context.Context) ([]StockItem, error) {
	return s.repo.ListItems(ctx)
}

// GetItem retrieves one stock item.
func (s *Service) GetItem(ctx context.Context, itemID id.ID) (*StockItem, error) {
	return s.repo.GetItemByID(ctx, itemID)
}

// AddReceipt records arriving stock and credits the item's balance.
func (s *Service) AddReceipt(ctx context.Context, itemID id.ID, qty types.Length, receivedAt time.Time) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("receipt quantity must be positive")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
			return err
		}
		receipt := &StockReceipt{
			ID:         id.New(),
			ItemID:     itemID,
			Quantity:   qty,
			ReceivedAt: receivedAt,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.AddReceipt(ctx, receipt); err != nil {
			return fmt.Errorf("add receipt: %w", err)
		}
		if err := s.repo.AdjustStock(ctx, itemID, qty); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock receipt recorded", "item_id", itemID, "quantity", qty)
	return nil
}

// AddWaste records a manual warehouse write-off and debits the item's
// balance, floored at zero.
func (s *Service) AddWaste(ctx context.Context, itemID id.ID, qty types.Length, note string) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("waste quantity must be positive")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
			return err
		}
		now := time.Now().UTC()
		entry := &StockWasteEntry{
			ID:        id.New(),
			ItemID:    itemID,
			Quantity:  qty,
			Note:      note,
			NotedAt:   now,
			CreatedAt: now,
		}
		if err := s.repo.AddWasteEntry(ctx, entry); err != nil {
			return fmt.Errorf("add waste entry: %w", err)
		}
		if err := s.repo.AdjustStock(ctx, itemID, qty.Neg()); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock waste recorded", "item_id", itemID, "quantity", qty)
	return nil
}
