package drum

import (
	"context"

	"github.com/MACM18/NNS-sub002/internal/core/id"
	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// Repository defines storage operations for the drum catalog.
type Repository interface {
	Create(ctx context.Context, d *Drum) error

	// GetByID returns a drum or apperror.NewNotFound
	GetByID(ctx context.Context, drumID id.ID) (*Drum, error)

	// GetByIDForUpdate returns a drum with a row lock, for use inside the
	// recording transaction
	GetByIDForUpdate(ctx context.Context, drumID id.ID) (*Drum, error)

	GetByNumber(ctx context.Context, drumNumber string) (*Drum, error)

	List(ctx context.Context, filter ListFilter) ([]Drum, error)

	Update(ctx context.Context, d *Drum) error

	// Delete soft-deletes a drum; usage events referencing it are retained
	Delete(ctx context.Context, drumID id.ID) error
}

// ListFilter narrows drum listings.
type ListFilter struct {
	Status   *Status
	ItemName string
	Limit    int
	Offset   int
}

// EventRepository defines storage operations for the usage event register.
type EventRepository interface {
	Create(ctx context.Context, e *UsageEvent) error

	// GetLatestByDrum returns the chronologically most recent event for a
	// drum, or nil when the drum has no events yet
	GetLatestByDrum(ctx context.Context, drumID id.ID) (*UsageEvent, error)

	// ListByDrum returns all events for a drum ordered by usage date
	ListByDrum(ctx context.Context, drumID id.ID) ([]UsageEvent, error)

	// UpdateWastage retroactively patches an event's stored wastage
	UpdateWastage(ctx context.Context, eventID id.ID, wastage types.Length) error
}
