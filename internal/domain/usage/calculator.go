// Package usage computes consumption and wastage metrics for cable drums.
//
// A drum is a finite linear spool. Jobs report draws as unordered start/end
// points along its length; the calculator normalizes those reports into
// disjoint segments and derives used length, wastage and the recoverable
// remainder under one of three calculation policies. Everything in this
// package is a pure function of its inputs, so any historical range can be
// recomputed at will.
package usage

import (
	"sort"
	"time"

	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// Method selects the calculation policy for a drum.
// The policy is a tagged variant stored per drum, not a runtime branch
// scattered through call sites.
type Method string

const (
	// MethodSmartSegments is the default. Merges overlapping reports into
	// true physical coverage; every gap up to the highest point reached is
	// wastage, as is the tail of the drum beyond the last draw.
	MethodSmartSegments Method = "smart_segments"

	// MethodLegacyGaps reproduces the historical algorithm for drums
	// registered before segment merging existed. Events are walked in
	// chronological order and only the gap between one event's end and the
	// next event's start counts as wastage. Frozen for compatibility.
	MethodLegacyGaps Method = "legacy_gaps"

	// MethodManualOverride uses the merged used length but takes wastage
	// from an operator-supplied figure, clamped to what the drum can hold.
	MethodManualOverride Method = "manual_override"
)

// Valid reports whether m is a known calculation method.
func (m Method) Valid() bool {
	switch m {
	case MethodSmartSegments, MethodLegacyGaps, MethodManualOverride:
		return true
	}
	return false
}

// Event is one job's recorded draw from a drum. Start and end points are
// unordered: cable may be fed from either direction.
type Event struct {
	StartPoint types.Length
	EndPoint   types.Length
	UsageDate  time.Time
}

// Segment is a normalized half-open interval [Start, End) along the drum.
type Segment struct {
	Start types.Length `json:"start"`
	End   types.Length `json:"end"`
}

// Length returns End - Start.
func (s Segment) Length() types.Length { return s.End - s.Start }

// Normalize converts an event to a segment with Start = min, End = max.
// Zero-length events carry no information and are dropped (ok = false).
func Normalize(e Event) (Segment, bool) {
	s := Segment{
		Start: types.MinLength(e.StartPoint, e.EndPoint),
		End:   types.MaxLength(e.StartPoint, e.EndPoint),
	}
	return s, s.Start != s.End
}

// Options carries per-drum context for a computation.
type Options struct {
	// ManualWastage is the operator override, honoured only by
	// MethodManualOverride.
	ManualWastage *types.Length

	// Inactive marks an abandoned drum: the unused remainder beyond the
	// highest draw is a sunk loss and folds into wastage.
	Inactive bool
}

// Metrics is the result of a usage computation.
//
// RemainingCapacity is always the recoverable remainder beyond the highest
// usage endpoint, reported separately from TotalWastage even when the same
// stretch of cable has already been written off.
type Metrics struct {
	TotalUsed         types.Length `json:"totalUsed"`
	TotalWastage      types.Length `json:"totalWastage"`
	RemainingCapacity types.Length `json:"remainingCapacity"`
	UsedSegments      []Segment    `json:"usedSegments"`
	WastedSegments    []Segment    `json:"wastedSegments"`
}

// Compute derives usage metrics for a drum from its recorded events.
func Compute(events []Event, capacity types.Length, method Method, opts Options) Metrics {
	merged := MergeSegments(events)

	var highest types.Length
	if len(merged) > 0 {
		highest = merged[len(merged)-1].End
	}

	m := Metrics{
		RemainingCapacity: (capacity - highest).ClampNonNegative(),
	}

	switch method {
	case MethodManualOverride:
		m.UsedSegments = merged
		m.TotalUsed = sumSegments(merged)
		var override types.Length
		if opts.ManualWastage != nil {
			override = *opts.ManualWastage
		}
		maxWastage := (capacity - m.TotalUsed).ClampNonNegative()
		m.TotalWastage = types.MinLength(override.ClampNonNegative(), maxWastage)

	case MethodLegacyGaps:
		legacyGaps(&m, events)
		foldTail(&m, highest, capacity, opts.Inactive)
		// Historical invariant: used + wastage never exceeds capacity.
		m.TotalWastage = types.MinLength(m.TotalWastage, (capacity-m.TotalUsed).ClampNonNegative())

	default: // MethodSmartSegments
		m.UsedSegments = merged
		m.TotalUsed = sumSegments(merged)
		m.WastedSegments = coverageGaps(merged, capacity)
		for _, g := range m.WastedSegments {
			m.TotalWastage += g.Length()
		}
		if len(merged) == 0 {
			foldTail(&m, 0, capacity, opts.Inactive)
		}
	}

	return m
}

// MergeSegments normalizes events and merges overlapping or adjacent
// segments into disjoint physical coverage, sorted by start point.
// Duplicate and reordered reports collapse to their set union.
func MergeSegments(events []Event) []Segment {
	segs := make([]Segment, 0, len(events))
	for _, e := range events {
		if s, ok := Normalize(e); ok {
			segs = append(segs, s)
		}
	}

	sort.Slice(segs, func(i, j int) bool {
		if segs[i].Start == segs[j].Start {
			return segs[i].End < segs[j].End
		}
		return segs[i].Start < segs[j].Start
	})

	merged := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(merged); n > 0 && s.Start <= merged[n-1].End {
			if s.End > merged[n-1].End {
				merged[n-1].End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}

	return merged
}

// legacyGaps walks events in chronological usage order. Used length is the
// plain sum of event lengths without overlap merging; only positive gaps
// between one event's end and the next event's start count as wastage.
func legacyGaps(m *Metrics, events []Event) {
	ordered := make([]Segment, 0, len(events))
	chron := make([]Event, len(events))
	copy(chron, events)
	sort.SliceStable(chron, func(i, j int) bool {
		return chron[i].UsageDate.Before(chron[j].UsageDate)
	})

	for _, e := range chron {
		s, ok := Normalize(e)
		if !ok {
			continue
		}
		ordered = append(ordered, s)
		m.TotalUsed += s.Length()
	}
	m.UsedSegments = ordered

	for i := 1; i < len(ordered); i++ {
		gap := ordered[i].Start - ordered[i-1].End
		if gap.IsPositive() {
			m.WastedSegments = append(m.WastedSegments, Segment{Start: ordered[i-1].End, End: ordered[i].Start})
			m.TotalWastage += gap
		}
	}
}

// coverageGaps returns the uncovered stretches of the drum: before the first
// merged segment, between consecutive segments, and after the last segment up
// to capacity. With no coverage at all there are no gaps; the empty drum is
// handled by the caller.
func coverageGaps(merged []Segment, capacity types.Length) []Segment {
	if len(merged) == 0 {
		return nil
	}

	var gaps []Segment
	if merged[0].Start.IsPositive() {
		gaps = append(gaps, Segment{Start: 0, End: merged[0].Start})
	}
	for i := 1; i < len(merged); i++ {
		gaps = append(gaps, Segment{Start: merged[i-1].End, End: merged[i].Start})
	}
	if last := merged[len(merged)-1].End; last < capacity {
		gaps = append(gaps, Segment{Start: last, End: capacity})
	}
	return gaps
}

// foldTail writes off the remainder beyond the highest usage endpoint as a
// synthetic final wasted segment when the drum is inactive.
func foldTail(m *Metrics, highest, capacity types.Length, inactive bool) {
	if !inactive || capacity <= highest {
		return
	}
	m.WastedSegments = append(m.WastedSegments, Segment{Start: highest, End: capacity})
	m.TotalWastage += capacity - highest
}

func sumSegments(segs []Segment) types.Length {
	var total types.Length
	for _, s := range segs {
		total += s.Length()
	}
	return total
}
