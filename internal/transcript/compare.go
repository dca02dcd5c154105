package transcript

import (
	"fmt"
	"sort"
)

// Comparison reports, for one annotation track, how much of the track
// survives in a modified structure relative to the original.
type Comparison struct {
	Track      string
	Remaining  int64
	Original   int64
	Percentage float64
	Fraction   string // "remaining/original", as rendered to users
}

// Compare computes per-track retained basepairs and percentage of the
// modified structure against the original. Tracks are reported in the
// original's declared order, followed by any tracks only present in the
// modified structure (sorted by name), so output is deterministic across
// runs.
//
// When a track has zero length in the original the percentage is 1.0:
// nothing could be lost, so the track counts as fully retained. This keeps
// empty UTR tracks from reading as destroyed and avoids dividing by zero.
// Tracks absent from the modified structure report 0 bp and 0%.
func Compare(modified, original *Structure) []Comparison {
	names := original.Tracks.Names()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	var extra []string
	for _, name := range modified.Tracks.Names() {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		orig := original.Tracks.Length(name)
		remaining := modified.Tracks.Length(name)

		pct := 1.0
		if orig > 0 {
			pct = float64(remaining) / float64(orig)
		}

		out = append(out, Comparison{
			Track:      name,
			Remaining:  remaining,
			Original:   orig,
			Percentage: pct,
			Fraction:   fmt.Sprintf("%d/%d", remaining, orig),
		})
	}
	return out
}
