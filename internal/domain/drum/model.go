// Package drum provides the cable drum catalog and its usage event register.
// A drum is a physical spool with a fixed initial length, consumed across
// many installation jobs until empty or abandoned.
package drum

import (
	"context"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/apperror"
	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
	"github.com/MACM18/NNS-sub002/internal/domain/usage"
)

// Drum represents one physical cable spool.
type Drum struct {
	ID id.ID `db:"id" json:"id"`

	// DrumNumber is the human-visible code stencilled on the spool
	DrumNumber string `db:"drum_number" json:"drumNumber"`

	// ItemName links the drum to a warehouse stock item by
	// case-insensitive name match
	ItemName string `db:"item_name" json:"itemName"`

	// Capacity is the initial cable length on the spool
	Capacity types.Length `db:"capacity" json:"capacity"`

	// CurrentQuantity is the derived remainder: max(0, capacity - used - wastage)
	CurrentQuantity types.Length `db:"current_quantity" json:"currentQuantity"`

	// Status is always recomputed from CurrentQuantity, never patched
	Status Status `db:"status" json:"status"`

	// CalculationMethod selects the wastage policy for this drum
	CalculationMethod usage.Method `db:"calculation_method" json:"calculationMethod"`

	// ManualWastage is the operator override, honoured only under
	// the manual_override method
	ManualWastage *types.Length `db:"manual_wastage" json:"manualWastage,omitempty"`

	ReceivedAt time.Time  `db:"received_at" json:"receivedAt"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}

// NewDrum creates a drum at full capacity with active status.
func NewDrum(drumNumber, itemName string, capacity types.Length) *Drum {
	now := time.Now().UTC()
	return &Drum{
		ID:                id.New(),
		DrumNumber:        drumNumber,
		ItemName:          itemName,
		Capacity:          capacity,
		CurrentQuantity:   capacity,
		Status:            StatusForQuantity(capacity),
		CalculationMethod: usage.MethodSmartSegments,
		ReceivedAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate implements basic invariants for drum registration.
func (d *Drum) Validate(ctx context.Context) error {
	if d.DrumNumber == "" {
		return apperror.NewValidation("drum number is required").WithDetail("field", "drumNumber")
	}
	if d.ItemName == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "itemName")
	}
	if !d.Capacity.IsPositive() {
		return apperror.NewValidation("capacity must be positive").WithDetail("field", "capacity")
	}
	if d.CalculationMethod != "" && !d.CalculationMethod.Valid() {
		return apperror.NewValidation("unknown calculation method").
			WithDetail("field", "calculationMethod").
			WithDetail("value", string(d.CalculationMethod))
	}
	return nil
}

// UsageEvent is one job's recorded draw from a drum. Start and end points are
// unordered; Wastage is mutable and may be retroactively amended when a later
// event reveals a gap was left unused.
type UsageEvent struct {
	ID         id.ID        `db:"id" json:"id"`
	DrumID     id.ID        `db:"drum_id" json:"drumId"`
	JobID      *id.ID       `db:"job_id" json:"jobId,omitempty"`
	StartPoint types.Length `db:"start_point" json:"startPoint"`
	EndPoint   types.Length `db:"end_point" json:"endPoint"`

	// QuantityUsed is the cable actually installed for the job
	QuantityUsed types.Length `db:"quantity_used" json:"quantityUsed"`

	// Wastage attributed to this event at recording time or retroactively
	Wastage types.Length `db:"wastage" json:"wastage"`

	UsageDate time.Time `db:"usage_date" json:"usageDate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HighPoint returns the greater of the event's two points.
func (e *UsageEvent) HighPoint() types.Length {
	return types.MaxLength(e.StartPoint, e.EndPoint)
}

// LowPoint returns the lesser of the event's two points.
func (e *UsageEvent) LowPoint() types.Length {
	return types.MinLength(e.StartPoint, e.EndPoint)
}

// CalcEvent maps the persisted event to the calculator's input form.
func (e *UsageEvent) CalcEvent() usage.Event {
	return usage.Event{
		StartPoint: e.StartPoint,
		EndPoint:   e.EndPoint,
		UsageDate:  e.UsageDate,
	}
}

// CalcEvents maps a slice of persisted events for the calculator.
func CalcEvents(events []UsageEvent) []usage.Event {
	out := make([]usage.Event, len(events))
	for i := range events {
		out[i] = events[i].CalcEvent()
	}
	return out
}
