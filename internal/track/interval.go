// Package track provides the interval annotation model: named tracks of
// disjoint half-open intervals on a transcript-relative coordinate axis,
// with the region algebra (merge, intersect, subtract) used to apply and
// score exon skips.
package track

import (
	"fmt"
	"sort"
)

// Interval is a half-open range [Start, End) on a linear coordinate axis.
type Interval struct {
	Start int64
	End   int64
}

// InvalidRangeError reports an interval whose coordinates are unusable:
// negative, or with Start >= End.
type InvalidRangeError struct {
	Start int64
	End   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range [%d, %d): start must be non-negative and less than end", e.Start, e.End)
}

// New creates an interval, rejecting negative coordinates and empty or
// inverted ranges.
func New(start, end int64) (Interval, error) {
	if start < 0 || start >= end {
		return Interval{}, &InvalidRangeError{Start: start, End: end}
	}
	return Interval{Start: start, End: end}, nil
}

// Len returns the number of positions covered by the interval.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// Overlaps returns true if the two intervals share at least one position.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Contains returns true if pos falls inside the interval.
func (iv Interval) Contains(pos int64) bool {
	return pos >= iv.Start && pos < iv.End
}

// Shift returns the interval translated by delta.
func (iv Interval) Shift(delta int64) Interval {
	return Interval{Start: iv.Start + delta, End: iv.End + delta}
}

func (iv Interval) valid() bool {
	return iv.Start >= 0 && iv.Start < iv.End
}

// Merge canonicalizes a set of intervals: sorted by start, with overlapping
// and touching intervals joined. Empty intervals are dropped. The input
// slice is not modified.
func Merge(ivs []Interval) []Interval {
	var in []Interval
	for _, iv := range ivs {
		if iv.End > iv.Start {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start < in[j].Start })

	out := []Interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Intersect returns the positions covered by both a and b, canonicalized.
func Intersect(a, b []Interval) []Interval {
	ma, mb := Merge(a), Merge(b)
	var out []Interval
	j := 0
	for _, iv := range ma {
		for j < len(mb) && mb[j].End <= iv.Start {
			j++
		}
		for k := j; k < len(mb) && mb[k].Start < iv.End; k++ {
			start := max64(iv.Start, mb[k].Start)
			end := min64(iv.End, mb[k].End)
			if start < end {
				out = append(out, Interval{Start: start, End: end})
			}
		}
	}
	return out
}

// Subtract removes the positions covered by b from a. Affected intervals
// are shortened or split; an interval fully inside the removed region is
// deleted.
func Subtract(a, b []Interval) []Interval {
	ma, mb := Merge(a), Merge(b)
	var out []Interval
	for _, iv := range ma {
		start := iv.Start
		for _, r := range mb {
			if r.End <= start {
				continue
			}
			if r.Start >= iv.End {
				break
			}
			if r.Start > start {
				out = append(out, Interval{Start: start, End: r.Start})
			}
			if r.End > start {
				start = r.End
			}
			if start >= iv.End {
				break
			}
		}
		if start < iv.End {
			out = append(out, Interval{Start: start, End: iv.End})
		}
	}
	return out
}

// Excise removes a slice of the coordinate axis itself: positions inside
// removed are subtracted, and everything downstream shifts left to close
// the gap. Used when an exon is cut out of the transcript and all
// downstream offsets are recomputed.
func Excise(ivs []Interval, removed Interval) []Interval {
	kept := Subtract(ivs, []Interval{removed})
	delta := removed.Len()
	out := make([]Interval, 0, len(kept))
	for _, iv := range kept {
		if iv.Start >= removed.End {
			iv = iv.Shift(-delta)
		}
		out = append(out, iv)
	}
	return Merge(out)
}

// Overlap reports whether any interval in a overlaps any interval in b.
func Overlap(a, b []Interval) bool {
	return len(Intersect(a, b)) > 0
}

// TotalLength returns the number of positions covered by the intervals.
func TotalLength(ivs []Interval) int64 {
	var total int64
	for _, iv := range Merge(ivs) {
		total += iv.Len()
	}
	return total
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
