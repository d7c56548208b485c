package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MACM18/NNS-sub002/internal/core/types"
)

func metres(v int64) types.Length { return types.LengthFromInt(v) }

func ev(start, end int64, day int) Event {
	return Event{
		StartPoint: metres(start),
		EndPoint:   metres(end),
		UsageDate:  time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestMergeSegments(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   []Segment
	}{
		{
			name:   "empty input",
			events: nil,
			want:   []Segment{},
		},
		{
			name:   "zero-length events dropped",
			events: []Event{ev(100, 100, 1), ev(0, 50, 2)},
			want:   []Segment{{Start: metres(0), End: metres(50)}},
		},
		{
			name:   "reversed points normalized",
			events: []Event{ev(250, 100, 1)},
			want:   []Segment{{Start: metres(100), End: metres(250)}},
		},
		{
			name:   "overlapping segments merge",
			events: []Event{ev(0, 120, 1), ev(100, 250, 2)},
			want:   []Segment{{Start: metres(0), End: metres(250)}},
		},
		{
			name:   "adjacent segments merge",
			events: []Event{ev(0, 100, 1), ev(100, 250, 2)},
			want:   []Segment{{Start: metres(0), End: metres(250)}},
		},
		{
			name:   "disjoint segments stay apart",
			events: []Event{ev(400, 450, 3), ev(0, 250, 1)},
			want: []Segment{
				{Start: metres(0), End: metres(250)},
				{Start: metres(400), End: metres(450)},
			},
		},
		{
			name:   "contained segment absorbed",
			events: []Event{ev(0, 300, 1), ev(50, 100, 2)},
			want:   []Segment{{Start: metres(0), End: metres(300)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSegments(tt.events)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeSegmentsIdempotent(t *testing.T) {
	events := []Event{ev(0, 100, 1), ev(100, 250, 2), ev(400, 450, 3)}
	first := MergeSegments(events)

	// Feeding the merged coverage back in changes nothing.
	again := make([]Event, len(first))
	for i, s := range first {
		again[i] = Event{StartPoint: s.Start, EndPoint: s.End}
	}
	assert.Equal(t, first, MergeSegments(again))

	// Duplicated input collapses to the same coverage.
	assert.Equal(t, first, MergeSegments(append(events, events...)))
}

func TestComputeSmartSegments(t *testing.T) {
	// Worked example: capacity 1000, draws (0,100), (100,250), (400,450).
	// Coverage merges to [0,250] and [400,450]; the inner gap [250,400] and
	// the tail [450,1000] are wastage.
	events := []Event{ev(0, 100, 1), ev(100, 250, 2), ev(400, 450, 3)}

	m := Compute(events, metres(1000), MethodSmartSegments, Options{})

	assert.Equal(t, metres(300), m.TotalUsed)
	assert.Equal(t, metres(700), m.TotalWastage)
	assert.Equal(t, metres(550), m.RemainingCapacity)
	assert.Equal(t, []Segment{
		{Start: metres(0), End: metres(250)},
		{Start: metres(400), End: metres(450)},
	}, m.UsedSegments)
	assert.Equal(t, []Segment{
		{Start: metres(250), End: metres(400)},
		{Start: metres(450), End: metres(1000)},
	}, m.WastedSegments)
}

func TestComputeSmartSegmentsLeadingGap(t *testing.T) {
	m := Compute([]Event{ev(50, 150, 1)}, metres(200), MethodSmartSegments, Options{})

	assert.Equal(t, metres(100), m.TotalUsed)
	require.Len(t, m.WastedSegments, 2)
	assert.Equal(t, Segment{Start: metres(0), End: metres(50)}, m.WastedSegments[0])
	assert.Equal(t, Segment{Start: metres(150), End: metres(200)}, m.WastedSegments[1])
	assert.Equal(t, metres(100), m.TotalWastage)
}

func TestComputeSmartSegmentsEmpty(t *testing.T) {
	m := Compute(nil, metres(1000), MethodSmartSegments, Options{})

	assert.Equal(t, metres(0), m.TotalUsed)
	assert.Equal(t, metres(0), m.TotalWastage)
	assert.Equal(t, metres(1000), m.RemainingCapacity)
	assert.Empty(t, m.UsedSegments)
	assert.Empty(t, m.WastedSegments)
}

func TestComputeSmartSegmentsEmptyInactive(t *testing.T) {
	// An abandoned drum with no draws writes off its full length.
	m := Compute(nil, metres(1000), MethodSmartSegments, Options{Inactive: true})

	assert.Equal(t, metres(0), m.TotalUsed)
	assert.Equal(t, metres(1000), m.TotalWastage)
	assert.Equal(t, []Segment{{Start: metres(0), End: metres(1000)}}, m.WastedSegments)
}

func TestComputeLegacyGaps(t *testing.T) {
	// Chronological walk: (0,100) then (150,250) then (240,300).
	// Gap 100->150 counts; the overlap 240<250 does not produce negative
	// wastage. Used length is the plain sum without overlap merging.
	events := []Event{ev(0, 100, 1), ev(150, 250, 2), ev(240, 300, 3)}

	m := Compute(events, metres(1000), MethodLegacyGaps, Options{})

	assert.Equal(t, metres(260), m.TotalUsed)
	assert.Equal(t, metres(50), m.TotalWastage)
	assert.Equal(t, []Segment{{Start: metres(100), End: metres(150)}}, m.WastedSegments)
}

func TestComputeLegacyGapsInactiveFoldsTail(t *testing.T) {
	events := []Event{ev(0, 100, 1), ev(150, 250, 2)}

	m := Compute(events, metres(400), MethodLegacyGaps, Options{Inactive: true})

	// Gap 50 plus folded tail 150.
	assert.Equal(t, metres(200), m.TotalUsed)
	assert.Equal(t, metres(200), m.TotalWastage)
}

func TestComputeLegacyGapsWastageCappedAtCapacity(t *testing.T) {
	// Overlapping draws inflate TotalUsed past physical coverage; the cap
	// keeps used + wastage within capacity.
	events := []Event{ev(0, 90, 1), ev(0, 90, 2), ev(95, 100, 3)}

	m := Compute(events, metres(100), MethodLegacyGaps, Options{})

	assert.Equal(t, metres(185), m.TotalUsed)
	assert.Equal(t, metres(0), m.TotalWastage)
}

func TestComputeManualOverride(t *testing.T) {
	events := []Event{ev(0, 250, 1)}
	override := metres(100)

	m := Compute(events, metres(1000), MethodManualOverride, Options{ManualWastage: &override})

	assert.Equal(t, metres(250), m.TotalUsed)
	assert.Equal(t, metres(100), m.TotalWastage)
	assert.Equal(t, metres(750), m.RemainingCapacity)
}

func TestComputeManualOverrideClamped(t *testing.T) {
	events := []Event{ev(0, 800, 1)}

	tests := []struct {
		name     string
		override types.Length
		want     types.Length
	}{
		{"over capacity clamps to remainder", metres(500), metres(200)},
		{"negative clamps to zero", metres(-50), metres(0)},
		{"within bounds kept", metres(150), metres(150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(events, metres(1000), MethodManualOverride, Options{ManualWastage: &tt.override})
			assert.Equal(t, tt.want, m.TotalWastage)
		})
	}
}

func TestComputeManualOverrideNilDefaultsToZero(t *testing.T) {
	m := Compute([]Event{ev(0, 100, 1)}, metres(500), MethodManualOverride, Options{})
	assert.Equal(t, metres(0), m.TotalWastage)
}

func TestComputeConservation(t *testing.T) {
	// used + wastage never exceeds capacity under smart segments: the
	// wasted gaps are exactly the complement of coverage.
	cases := [][]Event{
		nil,
		{ev(0, 1000, 1)},
		{ev(0, 100, 1), ev(100, 250, 2), ev(400, 450, 3)},
		{ev(900, 1000, 1), ev(0, 10, 2)},
		{ev(0, 500, 1), ev(450, 700, 2), ev(650, 1000, 3)},
	}

	for _, events := range cases {
		m := Compute(events, metres(1000), MethodSmartSegments, Options{})
		assert.LessOrEqual(t, int64(m.TotalUsed+m.TotalWastage), int64(metres(1000)))
	}
}

func TestComputeFractionalLengths(t *testing.T) {
	a := Event{StartPoint: types.LengthFromFloat64(0), EndPoint: types.LengthFromFloat64(10.5)}
	b := Event{StartPoint: types.LengthFromFloat64(10.5), EndPoint: types.LengthFromFloat64(20.75)}

	m := Compute([]Event{a, b}, types.LengthFromFloat64(20.75), MethodSmartSegments, Options{})

	assert.Equal(t, types.LengthFromFloat64(20.75), m.TotalUsed)
	assert.Equal(t, types.Length(0), m.TotalWastage)
	assert.Equal(t, types.Length(0), m.RemainingCapacity)
}
