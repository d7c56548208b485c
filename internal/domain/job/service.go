package job

import (
	"context"
	"fmt"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/tx"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/drum"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// Service records installation jobs and their drum consumption.
//
// RecordUsage is an all-or-nothing path: the job record, the usage event,
// the retroactive wastage patch, the drum update and the warehouse stock
// deduction commit together or not at all. Correctness against concurrent
// writers on the same drum relies on the row lock taken when the drum is
// loaded; last-committed-wins is accepted for that rare case.
type Service struct {
	jobs      Repository
	drums     drum.Repository
	events    drum.EventRepository
	stock     inventory.Repository
	txManager tx.Manager
}

// NewService creates a new job recording service.
func NewService(
	jobs Repository,
	drums drum.Repository,
	events drum.EventRepository,
	stock inventory.Repository,
	txManager tx.Manager,
) *Service {
	return &Service{
		jobs:      jobs,
		drums:     drums,
		events:    events,
		stock:     stock,
		txManager: txManager,
	}
}

// RecordInput is one job-creation call. Lengths arrive coerced from string
// or number form; a nil DrumID or non-positive TotalLength skips all drum
// side effects while the job record still succeeds.
type RecordInput struct {
	DrumID *id.ID

	Number       string
	CustomerName string
	Address      string

	StartPoint      types.Length
	EndPoint        types.Length
	TotalLength     types.Length
	ExplicitWastage types.Length

	UsageDate time.Time
}

// RecordResult reports what one recording call committed.
type RecordResult struct {
	Job *Job `json:"job"`

	// AppliedWastage is the new event's final wastage: the explicit input
	// plus any retroactive gap detected against the prior event
	AppliedWastage types.Length `json:"appliedWastage"`

	// Event is the usage event created, nil when the job had no drum effects
	Event *drum.UsageEvent `json:"event,omitempty"`
}

// RecordUsage creates one job and, when a drum is involved, its usage event
// plus the drum and warehouse stock updates, inside a single transaction.
//
// Retroactive gap rule: if the new draw starts before the prior event's end
// point, the skipped stretch was physically cut away and lost. The loss is
// added to the new event's wastage for the deduction, and the prior event's
// stored wastage is patched to the same figure so history carries the loss
// at the point it actually occurred. Only the immediately preceding event is
// corrected; multi-hop cascades are out of scope.
func (s *Service) RecordUsage(ctx context.Context, input RecordInput) (*RecordResult, error) {
	j := NewJob(input.Number, input.CustomerName, input.Address, input.UsageDate)
	if err := j.Validate(ctx); err != nil {
		return nil, err
	}

	result := &RecordResult{Job: j}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.jobs.Create(ctx, j); err != nil {
			return fmt.Errorf("create job: %w", err)
		}

		if input.DrumID == nil || !input.TotalLength.IsPositive() {
			return nil
		}

		prior, err := s.events.GetLatestByDrum(ctx, *input.DrumID)
		if err != nil {
			return fmt.Errorf("load prior event: %w", err)
		}

		var retroactive types.Length
		newStart := types.MinLength(input.StartPoint, input.EndPoint)
		if prior != nil && newStart < prior.HighPoint() {
			retroactive = prior.HighPoint() - newStart
			if err := s.events.UpdateWastage(ctx, prior.ID, retroactive); err != nil {
				return fmt.Errorf("patch prior event wastage: %w", err)
			}
			logger.Info(ctx, "retroactive wastage attributed",
				"drum_id", *input.DrumID,
				"prior_event_id", prior.ID,
				"wastage", retroactive,
			)
		}

		finalWastage := input.ExplicitWastage.ClampNonNegative() + retroactive
		result.AppliedWastage = finalWastage

		// Drum-not-found aborts everything, job record included.
		d, err := s.drums.GetByIDForUpdate(ctx, *input.DrumID)
		if err != nil {
			return err
		}

		event := &drum.UsageEvent{
			ID:           id.New(),
			DrumID:       d.ID,
			JobID:        &j.ID,
			StartPoint:   input.StartPoint,
			EndPoint:     input.EndPoint,
			QuantityUsed: input.TotalLength,
			Wastage:      finalWastage,
			UsageDate:    input.UsageDate,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.events.Create(ctx, event); err != nil {
			return fmt.Errorf("create usage event: %w", err)
		}
		result.Event = event

		deduction := input.TotalLength + finalWastage
		d.CurrentQuantity = (d.CurrentQuantity - deduction).ClampNonNegative()
		d.Status = drum.StatusForQuantity(d.CurrentQuantity)
		if err := s.drums.Update(ctx, d); err != nil {
			return fmt.Errorf("update drum: %w", err)
		}

		// The shared warehouse pool tracks the same consumption
		// independently of per-drum bookkeeping.
		matched, err := s.stock.DeductStockByName(ctx, d.ItemName, deduction)
		if err != nil {
			return fmt.Errorf("deduct warehouse stock: %w", err)
		}
		if !matched {
			logger.Warn(ctx, "no warehouse stock item matches drum item name",
				"drum_id", d.ID,
				"item_name", d.ItemName,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "job usage recorded",
		"job_id", j.ID,
		"number", j.Number,
		"applied_wastage", result.AppliedWastage,
	)
	return result, nil
}

// GetByID retrieves a job.
func (s *Service) GetByID(ctx context.Context, jobID id.ID) (*Job, error) {
	return s.jobs.GetByID(ctx, jobID)
}

// List retrieves jobs with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Job, error) {
	return s.jobs.List(ctx, filter)
}
