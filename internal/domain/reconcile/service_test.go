package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
)

// --- Fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type monthKey struct {
	itemID id.ID
	month  int
	year   int
}

// fakeInventoryRepo is an in-memory inventory.Repository.
type fakeInventoryRepo struct {
	items   map[id.ID]*inventory.StockItem
	records map[monthKey]*inventory.MonthlyUsageRecord

	// failItems forces errors for specific item names
	failItems map[string]error
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		items:     make(map[id.ID]*inventory.StockItem),
		records:   make(map[monthKey]*inventory.MonthlyUsageRecord),
		failItems: make(map[string]error),
	}
}

func (r *fakeInventoryRepo) CreateItem(ctx context.Context, item *inventory.StockItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeInventoryRepo) GetItemByID(ctx context.Context, itemID id.ID) (*inventory.StockItem, error) {
	if item, ok := r.items[itemID]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, apperror.NewNotFound("stock item", itemID)
}

func (r *fakeInventoryRepo) GetItemByName(ctx context.Context, name string) (*inventory.StockItem, error) {
	for _, item := range r.items {
		if strings.EqualFold(item.Name, name) {
			cp := *item
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stock item", name)
}

func (r *fakeInventoryRepo) GetItemByNameForUpdate(ctx context.Context, name string) (*inventory.StockItem, error) {
	if err, ok := r.failItems[name]; ok {
		return nil, err
	}
	return r.GetItemByName(ctx, name)
}

func (r *fakeInventoryRepo) ListItems(ctx context.Context) ([]inventory.StockItem, error) {
	out := make([]inventory.StockItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeInventoryRepo) AdjustStock(ctx context.Context, itemID id.ID, delta types.Length) error {
	item, ok := r.items[itemID]
	if !ok {
		return apperror.NewNotFound("stock item", itemID)
	}
	item.CurrentStock = (item.CurrentStock + delta).ClampNonNegative()
	return nil
}

func (r *fakeInventoryRepo) DeductStockByName(ctx context.Context, name string, qty types.Length) (bool, error) {
	for _, item := range r.items {
		if strings.EqualFold(item.Name, name) {
			item.CurrentStock = (item.CurrentStock - qty).ClampNonNegative()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInventoryRepo) GetMonthlyRecordForUpdate(ctx context.Context, itemID id.ID, month, year int) (*inventory.MonthlyUsageRecord, error) {
	if rec, ok := r.records[monthKey{itemID, month, year}]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeInventoryRepo) UpsertMonthlyRecord(ctx context.Context, rec *inventory.MonthlyUsageRecord) error {
	cp := *rec
	r.records[monthKey{rec.ItemID, rec.Month, rec.Year}] = &cp
	return nil
}

func (r *fakeInventoryRepo) ListMonthlyRecords(ctx context.Context, month, year int) ([]inventory.MonthlyUsageRecord, error) {
	var out []inventory.MonthlyUsageRecord
	for k, rec := range r.records {
		if k.month == month && k.year == year {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) DeleteMonthlyRecords(ctx context.Context, month, year int) error {
	for k := range r.records {
		if k.month == month && k.year == year {
			delete(r.records, k)
		}
	}
	return nil
}

func (r *fakeInventoryRepo) AddReceipt(ctx context.Context, rec *inventory.StockReceipt) error {
	return nil
}

func (r *fakeInventoryRepo) AddWasteEntry(ctx context.Context, w *inventory.StockWasteEntry) error {
	return nil
}

func (r *fakeInventoryRepo) RecomputeStocks(ctx context.Context) error { return nil }

func (r *fakeInventoryRepo) stockOf(t *testing.T, name string) types.Length {
	t.Helper()
	item, err := r.GetItemByName(context.Background(), name)
	require.NoError(t, err)
	return item.CurrentStock
}

func seedItem(r *fakeInventoryRepo, name string, stock int64) *inventory.StockItem {
	item := inventory.NewStockItem(name, types.LengthFromInt(stock))
	r.items[item.ID] = item
	return item
}

// --- Tests ---

func newTestService(repo *fakeInventoryRepo) *Service {
	return NewService(repo, fakeTxManager{}, nil)
}

func TestSyncDeductsDelta(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)

	rows := []Row{
		{"drop_wire": 120.0},
		{"drop_wire": 80.0},
	}

	summary, err := svc.Sync(context.Background(), rows, 6, 2025, "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemsUpdated)
	assert.Equal(t, 0, summary.ItemsCreated)
	assert.Equal(t, 1, summary.UsageRecordsUpdated)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, types.LengthFromInt(4800), repo.stockOf(t, "Drop Wire Cable"))
}

func TestSyncIdempotent(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)

	rows := []Row{{"drop_wire": 200.0}}
	ctx := context.Background()

	_, err := svc.Sync(ctx, rows, 6, 2025, "batch-1")
	require.NoError(t, err)
	after := repo.stockOf(t, "Drop Wire Cable")

	// Re-running the identical batch changes nothing.
	_, err = svc.Sync(ctx, rows, 6, 2025, "batch-1-retry")
	require.NoError(t, err)
	assert.Equal(t, after, repo.stockOf(t, "Drop Wire Cable"))
}

func TestSyncGrowingTotalDeductsOnlyDelta(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, []Row{{"drop_wire": 200.0}}, 6, 2025, "")
	require.NoError(t, err)

	_, err = svc.Sync(ctx, []Row{{"drop_wire": 350.0}}, 6, 2025, "")
	require.NoError(t, err)

	// Total deduction is 350, not 200 + 350.
	assert.Equal(t, types.LengthFromInt(4650), repo.stockOf(t, "Drop Wire Cable"))
}

func TestSyncDecreasingTotalNeverRefunds(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, []Row{{"drop_wire": 300.0}}, 6, 2025, "")
	require.NoError(t, err)

	_, err = svc.Sync(ctx, []Row{{"drop_wire": 250.0}}, 6, 2025, "")
	require.NoError(t, err)

	// Stock stays at the larger deduction; the record still advances.
	assert.Equal(t, types.LengthFromInt(4700), repo.stockOf(t, "Drop Wire Cable"))
	rec := repo.records[monthKey{item.ID, 6, 2025}]
	require.NotNil(t, rec)
	assert.Equal(t, types.LengthFromInt(250), rec.TotalUsed)
}

func TestSyncSeedsUnknownItem(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := newTestService(repo)

	summary, err := svc.Sync(context.Background(), []Row{{"drop_wire": 50.0}}, 6, 2025, "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemsCreated)
	assert.Equal(t, 0, summary.ItemsUpdated)

	// Seed floor is 1000: stock = 1000 - 50.
	assert.Equal(t, types.LengthFromInt(950), repo.stockOf(t, "Drop Wire Cable"))
}

func TestSyncSeedsLargeTotalAtTenTimes(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := newTestService(repo)

	_, err := svc.Sync(context.Background(), []Row{{"drop_wire": 200.0}}, 6, 2025, "")
	require.NoError(t, err)

	// 10 x 200 beats the floor: stock = 2000 - 200.
	assert.Equal(t, types.LengthFromInt(1800), repo.stockOf(t, "Drop Wire Cable"))
}

func TestSyncPartialFailureContinues(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "C Hook", 500)
	repo.failItems["Drop Wire Cable"] = errors.New("connection reset")
	svc := newTestService(repo)

	rows := []Row{{"drop_wire": 100.0, "c_hook": 20.0}}

	summary, err := svc.Sync(context.Background(), rows, 6, 2025, "")
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "Drop Wire Cable", summary.Errors[0].Item)
	assert.Equal(t, 1, summary.ItemsUpdated)
	assert.Equal(t, types.LengthFromInt(480), repo.stockOf(t, "C Hook"))
}

func TestSyncValidation(t *testing.T) {
	svc := newTestService(newFakeInventoryRepo())
	ctx := context.Background()

	_, err := svc.Sync(ctx, nil, 0, 2025, "")
	assert.True(t, apperror.IsAppError(err))

	_, err = svc.Sync(ctx, nil, 13, 2025, "")
	assert.True(t, apperror.IsAppError(err))

	_, err = svc.Sync(ctx, nil, 6, 1990, "")
	assert.True(t, apperror.IsAppError(err))
}

func TestSyncSkipsZeroTotals(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)

	summary, err := svc.Sync(context.Background(), []Row{{"drop_wire": 0.0}}, 6, 2025, "")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ItemsUpdated)
	assert.Equal(t, types.LengthFromInt(5000), repo.stockOf(t, "Drop Wire Cable"))
}

func TestAggregateRows(t *testing.T) {
	rows := []Row{
		{"drop_wire": 100.0, "c_hook": 3},
		{"drop_wire": "50.5", "unmapped_field": 999.0},
		{"drop_wire": nil, "c_hook": json.Number("2")},
	}

	totals := AggregateRows(rows)

	assert.Equal(t, types.LengthFromFloat64(150.5), totals["Drop Wire Cable"])
	assert.Equal(t, types.LengthFromInt(5), totals["C Hook"])
	assert.Len(t, totals, 2)
}

func TestCoerceLength(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   types.Length
		wantOK bool
	}{
		{"float64", 12.5, types.LengthFromFloat64(12.5), true},
		{"int", 7, types.LengthFromInt(7), true},
		{"numeric string", "3.25", types.LengthFromFloat64(3.25), true},
		{"nil", nil, 0, false},
		{"garbage string", "n/a", 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceLength(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResetMonth(t *testing.T) {
	repo := newFakeInventoryRepo()
	seedItem(repo, "Drop Wire Cable", 5000)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, []Row{{"drop_wire": 300.0}}, 6, 2025, "")
	require.NoError(t, err)
	assert.Equal(t, types.LengthFromInt(4700), repo.stockOf(t, "Drop Wire Cable"))

	restored, err := svc.ResetMonth(ctx, 6, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	// Stock restored, record gone; the next sync starts clean.
	assert.Equal(t, types.LengthFromInt(5000), repo.stockOf(t, "Drop Wire Cable"))
	assert.Empty(t, repo.records)
}
