package models

import (
	"fmt"
	"time"

	"github.com/akinalp/rollcall/pkg"
)

// Bounds is the observed [Start, End] span of a join record.
//
// Either side may be nil while only one kind of event has been seen. Once
// both are known Start <= End holds.
type Bounds struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Merge folds a proposed start and/or end into the bounds.
//
// Start only ever moves earlier and End only ever moves later, so applying
// the same proposal twice, or two proposals in either order, yields the same
// result. That is what keeps the reconciler safe under duplicate and
// reordered delivery: End is monotonically non-decreasing.
//
// The second return value reports whether anything changed. Passing neither
// bound is a producer bug and returns pkg.ErrMalformedInput.
func (b Bounds) Merge(start, end *time.Time) (Bounds, bool, error) {
	if start == nil && end == nil {
		return b, false, fmt.Errorf("%w: bound merge with neither start nor end", pkg.ErrMalformedInput)
	}

	merged := b
	if start != nil && (merged.Start == nil || start.Before(*merged.Start)) {
		s := *start
		merged.Start = &s
	}
	if end != nil && (merged.End == nil || end.After(*merged.End)) {
		e := *end
		merged.End = &e
	}

	// A late end proposal on a record that only had a start, where the end
	// predates it: the member was evidently present at End already.
	if merged.Start != nil && merged.End != nil && merged.End.Before(*merged.Start) {
		s := *merged.End
		merged.Start = &s
	}

	return merged, !merged.equal(b), nil
}

// Duration returns End-Start when both bounds are known.
func (b Bounds) Duration() (time.Duration, bool) {
	if b.Start == nil || b.End == nil {
		return 0, false
	}
	return b.End.Sub(*b.Start), true
}

func (b Bounds) equal(o Bounds) bool {
	return timePtrEqual(b.Start, o.Start) && timePtrEqual(b.End, o.End)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
