package reconcile

import (
	"context"
	"fmt"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// Admin repair utilities. These sit outside the sync hot path and exist to
// undo or rebuild state when a source batch turns out to be wrong.

// ResetMonth restores stock by each record's total_used for (month, year)
// and deletes the period's usage records, so the next sync starts from a
// clean slate. Runs as one transaction.
func (s *Service) ResetMonth(ctx context.Context, month, year int) (int, error) {
	if month < 1 || month > 12 {
		return 0, apperror.NewValidation("month must be between 1 and 12").WithDetail("month", month)
	}

	var restored int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		records, err := s.repo.ListMonthlyRecords(ctx, month, year)
		if err != nil {
			return fmt.Errorf("list monthly records: %w", err)
		}

		for _, rec := range records {
			if err := s.repo.AdjustStock(ctx, rec.ItemID, rec.TotalUsed); err != nil {
				return fmt.Errorf("restore stock for item %s: %w", rec.ItemID, err)
			}
			restored++
		}

		if err := s.repo.DeleteMonthlyRecords(ctx, month, year); err != nil {
			return fmt.Errorf("delete monthly records: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "monthly usage reset",
		"month", month,
		"year", year,
		"items_restored", restored,
	)
	return restored, nil
}

// RecomputeStocks rebuilds every item's current stock from
// receipts - usages - waste.
func (s *Service) RecomputeStocks(ctx context.Context) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.RecomputeStocks(ctx)
	})
	if err != nil {
		return fmt.Errorf("recompute stocks: %w", err)
	}

	logger.Info(ctx, "stock recomputation finished")
	return nil
}
