package drum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/usage"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	drums map[id.ID]*Drum
}

func newFakeRepo(drums ...*Drum) *fakeRepo {
	m := make(map[id.ID]*Drum)
	for _, d := range drums {
		m[d.ID] = d
	}
	return &fakeRepo{drums: m}
}

func (r *fakeRepo) Create(ctx context.Context, d *Drum) error {
	r.drums[d.ID] = d
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, drumID id.ID) (*Drum, error) {
	if d, ok := r.drums[drumID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperror.NewNotFound("drum", drumID)
}

func (r *fakeRepo) GetByIDForUpdate(ctx context.Context, drumID id.ID) (*Drum, error) {
	return r.GetByID(ctx, drumID)
}

func (r *fakeRepo) GetByNumber(ctx context.Context, drumNumber string) (*Drum, error) {
	for _, d := range r.drums {
		if d.DrumNumber == drumNumber {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("drum", drumNumber)
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) ([]Drum, error) {
	out := make([]Drum, 0, len(r.drums))
	for _, d := range r.drums {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, d *Drum) error {
	if _, ok := r.drums[d.ID]; !ok {
		return apperror.NewNotFound("drum", d.ID)
	}
	cp := *d
	r.drums[d.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, drumID id.ID) error {
	delete(r.drums, drumID)
	return nil
}

type fakeEvents struct {
	events []UsageEvent
}

func (r *fakeEvents) Create(ctx context.Context, e *UsageEvent) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeEvents) GetLatestByDrum(ctx context.Context, drumID id.ID) (*UsageEvent, error) {
	var latest *UsageEvent
	for i := range r.events {
		e := &r.events[i]
		if e.DrumID != drumID {
			continue
		}
		if latest == nil || e.UsageDate.After(latest.UsageDate) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeEvents) ListByDrum(ctx context.Context, drumID id.ID) ([]UsageEvent, error) {
	var out []UsageEvent
	for _, e := range r.events {
		if e.DrumID == drumID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEvents) UpdateWastage(ctx context.Context, eventID id.ID, wastage types.Length) error {
	for i := range r.events {
		if r.events[i].ID == eventID {
			r.events[i].Wastage = wastage
			return nil
		}
	}
	return apperror.NewNotFound("usage event", eventID)
}

type fakeConfigs struct{ cfg usage.Config }

func (f fakeConfigs) Get(ctx context.Context) (usage.Config, error) {
	if f.cfg.AdvisoryThresholdPercent == 0 {
		return usage.DefaultConfig(), nil
	}
	return f.cfg, nil
}

func addEvent(events *fakeEvents, drumID id.ID, start, end int64, day int) {
	events.events = append(events.events, UsageEvent{
		ID:         id.New(),
		DrumID:     drumID,
		StartPoint: types.LengthFromInt(start),
		EndPoint:   types.LengthFromInt(end),
		UsageDate:  time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
	})
}

func TestRegisterRejectsDuplicateNumber(t *testing.T) {
	existing := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(existing)
	svc := NewService(repo, &fakeEvents{}, fakeConfigs{}, fakeTxManager{})

	err := svc.Register(context.Background(), NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(2000)))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestRegisterRejectsInvalidMethod(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeEvents{}, fakeConfigs{}, fakeTxManager{})

	d := NewDrum("DRM-002", "Drop Wire Cable", types.LengthFromInt(1000))
	d.CalculationMethod = "bogus"

	err := svc.Register(context.Background(), d)
	assert.True(t, apperror.IsAppError(err))
}

func TestUsageMetrics(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 100, 1)
	addEvent(events, d.ID, 100, 250, 2)
	addEvent(events, d.ID, 400, 450, 3)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	m, err := svc.UsageMetrics(context.Background(), d.ID)
	require.NoError(t, err)

	assert.Equal(t, types.LengthFromInt(300), m.TotalUsed)
	assert.Equal(t, types.LengthFromInt(700), m.TotalWastage)
	assert.Equal(t, types.LengthFromInt(550), m.RemainingCapacity)
}

func TestSetManualWastage(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 300, 1)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	result, err := svc.SetManualWastage(context.Background(), d.ID, types.LengthFromInt(50))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	updated, _ := repo.GetByID(context.Background(), d.ID)
	assert.Equal(t, usage.MethodManualOverride, updated.CalculationMethod)
	require.NotNil(t, updated.ManualWastage)
	assert.Equal(t, types.LengthFromInt(50), *updated.ManualWastage)
	// 1000 - 300 used - 50 wastage.
	assert.Equal(t, types.LengthFromInt(650), updated.CurrentQuantity)
	assert.Equal(t, StatusActive, updated.Status)
}

func TestSetManualWastageOverCapacity(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 900, 1)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	_, err := svc.SetManualWastage(context.Background(), d.ID, types.LengthFromInt(200))
	require.Error(t, err)

	// The drum is untouched on rejection.
	unchanged, _ := repo.GetByID(context.Background(), d.ID)
	assert.Nil(t, unchanged.ManualWastage)
	assert.Equal(t, usage.MethodSmartSegments, unchanged.CalculationMethod)
}

func TestSetManualWastageAdvisorySaves(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 100, 1)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	// 300 is 30% of capacity: above the 20% advisory threshold but legal.
	result, err := svc.SetManualWastage(context.Background(), d.ID, types.LengthFromInt(300))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Advisory)

	updated, _ := repo.GetByID(context.Background(), d.ID)
	require.NotNil(t, updated.ManualWastage)
}

func TestSetManualWastageDrainsStatus(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(100))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 60, 1)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	_, err := svc.SetManualWastage(context.Background(), d.ID, types.LengthFromInt(40))
	require.NoError(t, err)

	updated, _ := repo.GetByID(context.Background(), d.ID)
	assert.Equal(t, types.Length(0), updated.CurrentQuantity)
	assert.Equal(t, StatusEmpty, updated.Status)
}

func TestRecomputeStatus(t *testing.T) {
	d := NewDrum("DRM-001", "Drop Wire Cable", types.LengthFromInt(1000))
	repo := newFakeRepo(d)
	events := &fakeEvents{}
	addEvent(events, d.ID, 0, 250, 1)
	addEvent(events, d.ID, 400, 450, 2)

	svc := NewService(repo, events, fakeConfigs{}, fakeTxManager{})

	out, err := svc.RecomputeStatus(context.Background(), d.ID)
	require.NoError(t, err)

	// Smart segments: used 300, wastage 700 (inner gap + tail), nothing left.
	assert.Equal(t, types.Length(0), out.CurrentQuantity)
	assert.Equal(t, StatusEmpty, out.Status)
}
