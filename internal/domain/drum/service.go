package drum

import (
	"context"
	"fmt"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/tx"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/usage"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// Service provides business operations for the drum catalog.
type Service struct {
	repo      Repository
	events    EventRepository
	configs   usage.ConfigRepository
	txManager tx.Manager
}

// NewService creates a new drum service.
func NewService(repo Repository, events EventRepository, configs usage.ConfigRepository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		events:    events,
		configs:   configs,
		txManager: txManager,
	}
}

// Register creates a new drum at full capacity.
func (s *Service) Register(ctx context.Context, d *Drum) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	if d.CalculationMethod == "" {
		d.CalculationMethod = usage.MethodSmartSegments
	}

	existing, err := s.repo.GetByNumber(ctx, d.DrumNumber)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check drum number: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("drum", "drum_number", d.DrumNumber)
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return fmt.Errorf("create drum: %w", err)
	}

	logger.Info(ctx, "drum registered",
		"id", d.ID,
		"drum_number", d.DrumNumber,
		"capacity", d.Capacity,
	)
	return nil
}

// GetByID retrieves a drum.
func (s *Service) GetByID(ctx context.Context, drumID id.ID) (*Drum, error) {
	return s.repo.GetByID(ctx, drumID)
}

// List retrieves drums with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Drum, error) {
	return s.repo.List(ctx, filter)
}

// UsageMetrics runs the interval calculator over the drum's recorded events
// under the drum's own calculation method.
func (s *Service) UsageMetrics(ctx context.Context, drumID id.ID) (usage.Metrics, error) {
	d, err := s.repo.GetByID(ctx, drumID)
	if err != nil {
		return usage.Metrics{}, err
	}

	events, err := s.events.ListByDrum(ctx, drumID)
	if err != nil {
		return usage.Metrics{}, fmt.Errorf("list usage events: %w", err)
	}

	return usage.Compute(CalcEvents(events), d.Capacity, d.CalculationMethod, usage.Options{
		ManualWastage: d.ManualWastage,
		Inactive:      d.Status == StatusInactive,
	}), nil
}

// SetManualWastage validates and persists an operator wastage override,
// switching the drum to the manual_override method and re-deriving quantity
// and status. The returned result may carry a non-blocking advisory which the
// caller must surface without blocking the save.
func (s *Service) SetManualWastage(ctx context.Context, drumID id.ID, value types.Length) (usage.ValidationResult, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		logger.Warn(ctx, "wastage settings unavailable, using defaults", "error", err)
		cfg = usage.DefaultConfig()
	}

	var result usage.ValidationResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetByIDForUpdate(ctx, drumID)
		if err != nil {
			return err
		}

		events, err := s.events.ListByDrum(ctx, drumID)
		if err != nil {
			return fmt.Errorf("list usage events: %w", err)
		}
		totalUsed := sumSegmentsLength(usage.MergeSegments(CalcEvents(events)))

		result = usage.ValidateManualWastage(value, totalUsed, d.Capacity, cfg)
		if !result.Valid {
			appErr := apperror.NewValidation(result.Message)
			if result.AdjustedValue != nil {
				appErr = appErr.WithDetail("adjusted_value", result.AdjustedValue.String())
			}
			return appErr
		}

		d.ManualWastage = &value
		d.CalculationMethod = usage.MethodManualOverride
		d.CurrentQuantity = (d.Capacity - totalUsed - value).ClampNonNegative()
		d.Status = StatusForQuantity(d.CurrentQuantity)

		if err := s.repo.Update(ctx, d); err != nil {
			return fmt.Errorf("update drum: %w", err)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info(ctx, "manual wastage saved",
		"drum_id", drumID,
		"wastage", value,
		"advisory", result.Advisory != "",
	)
	return result, nil
}

// RecomputeStatus re-derives a drum's quantity and status from its full
// event history. Used after corrections that bypass the recording path.
func (s *Service) RecomputeStatus(ctx context.Context, drumID id.ID) (*Drum, error) {
	var out *Drum
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetByIDForUpdate(ctx, drumID)
		if err != nil {
			return err
		}

		events, err := s.events.ListByDrum(ctx, drumID)
		if err != nil {
			return fmt.Errorf("list usage events: %w", err)
		}

		m := usage.Compute(CalcEvents(events), d.Capacity, d.CalculationMethod, usage.Options{
			ManualWastage: d.ManualWastage,
			Inactive:      d.Status == StatusInactive,
		})

		d.CurrentQuantity = (d.Capacity - m.TotalUsed - m.TotalWastage).ClampNonNegative()
		d.Status = StatusForQuantity(d.CurrentQuantity)

		if err := s.repo.Update(ctx, d); err != nil {
			return fmt.Errorf("update drum: %w", err)
		}
		out = d
		return nil
	})
	return out, err
}

// Events returns the drum's usage history.
func (s *Service) Events(ctx context.Context, drumID id.ID) ([]UsageEvent, error) {
	if _, err := s.repo.GetByID(ctx, drumID); err != nil {
		return nil, err
	}
	return s.events.ListByDrum(ctx, drumID)
}

func sumSegmentsLength(segs []usage.Segment) types.Length {
	var total types.Length
	for _, s := range segs {
		total += s.Length()
	}
	return total
}
