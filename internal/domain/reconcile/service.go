package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/tx"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// Row is one source row of the external batch, keyed by hardware field name.
// Cell values arrive as JSON numbers or strings; anything unparseable counts
// as zero.
type Row map[string]any

// ItemError records one item's failure inside a batch. A failed item never
// aborts the rest of the run.
type ItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// Summary aggregates one sync run.
type Summary struct {
	ItemsUpdated        int         `json:"itemsUpdated"`
	ItemsCreated        int         `json:"itemsCreated"`
	UsageRecordsUpdated int         `json:"usageRecordsUpdated"`
	Errors              []ItemError `json:"errors"`
}

// BatchLogger archives the raw batch payload of a sync run for later audit.
type BatchLogger interface {
	Record(ctx context.Context, syncID string, month, year, rowCount int, payload []byte) error
}

// Service is the idempotent monthly reconciliation path.
//
// Each item is processed in its own transaction: the read-modify-write of
// previous total, delta and stock update holds a row lock so two overlapping
// runs for the same period cannot lose updates. Cross-item work has no
// ordering requirement.
type Service struct {
	repo      inventory.Repository
	txManager tx.Manager
	batchLog  BatchLogger // optional
}

// NewService creates a new reconciliation service. batchLog may be nil.
func NewService(repo inventory.Repository, txManager tx.Manager, batchLog BatchLogger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		batchLog:  batchLog,
	}
}

// Seed parameters for items first seen in a sync. A new item gets a
// provisioning stock of max(1000, 10x the reported total), then the full
// total is subtracted since nothing existed before.
var (
	newItemSeedFloor      = types.LengthFromInt(1000)
	newItemSeedMultiplier = int64(10)
)

// Sync applies a recomputed per-item grand total for (month, year) to the
// stock ledger. Only the positive delta against the last recorded total is
// deducted, so re-running the same batch is a no-op; decreasing totals are
// recorded but never refunded.
func (s *Service) Sync(ctx context.Context, rows []Row, month, year int, syncID string) (*Summary, error) {
	if month < 1 || month > 12 {
		return nil, apperror.NewValidation("month must be between 1 and 12").WithDetail("month", month)
	}
	if year < 2000 {
		return nil, apperror.NewValidation("year is out of range").WithDetail("year", year)
	}
	if syncID == "" {
		syncID = id.New().String()
	}

	totals := AggregateRows(rows)

	summary := &Summary{}
	for _, m := range FieldMappings {
		total := totals[m.Item]
		if !total.IsPositive() {
			continue
		}

		created, err := s.syncItem(ctx, m.Item, total, month, year)
		if err != nil {
			summary.Errors = append(summary.Errors, ItemError{Item: m.Item, Error: err.Error()})
			logger.Error(ctx, "item sync failed",
				"item", m.Item,
				"month", month,
				"year", year,
				"error", err,
			)
			continue
		}
		if created {
			summary.ItemsCreated++
		} else {
			summary.ItemsUpdated++
		}
		summary.UsageRecordsUpdated++
	}

	s.archiveBatch(ctx, syncID, month, year, rows)

	logger.Info(ctx, "monthly usage sync finished",
		"sync_id", syncID,
		"month", month,
		"year", year,
		"items_updated", summary.ItemsUpdated,
		"items_created", summary.ItemsCreated,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

func (s *Service) syncItem(ctx context.Context, name string, total types.Length, month, year int) (created bool, err error) {
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.GetItemByNameForUpdate(ctx, name)
		switch {
		case apperror.IsNotFound(err):
			created = true
			return s.createSeededItem(ctx, name, total, month, year)
		case err != nil:
			return fmt.Errorf("resolve item: %w", err)
		}

		rec, err := s.repo.GetMonthlyRecordForUpdate(ctx, item.ID, month, year)
		if err != nil {
			return fmt.Errorf("load monthly record: %w", err)
		}

		var previous types.Length
		if rec != nil {
			previous = rec.TotalUsed
		}

		delta := total - previous
		if delta.IsPositive() {
			if err := s.repo.AdjustStock(ctx, item.ID, delta.Neg()); err != nil {
				return fmt.Errorf("adjust stock: %w", err)
			}
		}

		// The record always advances to the latest truth, even when the
		// total went down, so the next sync computes its delta correctly.
		if rec == nil {
			rec = inventory.NewMonthlyUsageRecord(item.ID, month, year, total)
		} else {
			rec.TotalUsed = total
			rec.LastSyncedAt = time.Now().UTC()
		}
		if err := s.repo.UpsertMonthlyRecord(ctx, rec); err != nil {
			return fmt.Errorf("upsert monthly record: %w", err)
		}
		return nil
	})
	return created, err
}

func (s *Service) createSeededItem(ctx context.Context, name string, total types.Length, month, year int) error {
	seed := types.MaxLength(newItemSeedFloor, total.MulInt(newItemSeedMultiplier))
	item := inventory.NewStockItem(name, (seed - total).ClampNonNegative())

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	if err := s.repo.UpsertMonthlyRecord(ctx, inventory.NewMonthlyUsageRecord(item.ID, month, year, total)); err != nil {
		return fmt.Errorf("record usage for new item: %w", err)
	}

	logger.Info(ctx, "stock item provisioned from sync",
		"item", name,
		"seed", seed,
		"first_total", total,
	)
	return nil
}

func (s *Service) archiveBatch(ctx context.Context, syncID string, month, year int, rows []Row) {
	if s.batchLog == nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		logger.Warn(ctx, "batch payload not serializable", "sync_id", syncID, "error", err)
		return
	}
	if err := s.batchLog.Record(ctx, syncID, month, year, len(rows), payload); err != nil {
		// Archival is best-effort; the sync result stands either way.
		logger.Warn(ctx, "batch archive failed", "sync_id", syncID, "error", err)
	}
}

// AggregateRows sums every mapped hardware column across the batch into
// per-item totals.
func AggregateRows(rows []Row) map[string]types.Length {
	totals := make(map[string]types.Length, len(FieldMappings))
	for _, row := range rows {
		for _, m := range FieldMappings {
			v, ok := row[m.Field]
			if !ok {
				continue
			}
			if qty, ok := coerceLength(v); ok {
				totals[m.Item] += qty
			}
		}
	}
	return totals
}

// coerceLength converts a report cell to a Length. Absent, non-numeric and
// non-finite values coerce to nothing.
func coerceLength(v any) (types.Length, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return types.LengthFromFloat64(val), true
	case float32:
		return coerceLength(float64(val))
	case int:
		return types.LengthFromInt(int64(val)), true
	case int64:
		return types.LengthFromInt(val), true
	case json.Number:
		l, err := types.ParseLength(val.String())
		if err != nil {
			return 0, false
		}
		return l, true
	case string:
		l, err := types.ParseLength(val)
		if err != nil {
			return 0, false
		}
		return l, true
	case decimal.Decimal:
		return types.LengthFromDecimal(val), true
	case types.Length:
		return val, true
	default:
		return 0, false
	}
}
