package transcript

import (
	"fmt"

	"github.com/genoskip/genoskip/internal/track"
)

// Therapy is a named, described modification of a transcript structure.
type Therapy struct {
	Name           string
	Expression     string // HGVS-like deletion covering the skipped exons
	Description    string
	FramePreserved bool // true if the skipped length is a multiple of 3
}

// Candidate pairs a therapy with the modified structure it produces.
type Candidate struct {
	Therapy   Therapy
	Structure *Structure
}

// Candidates enumerates exon-skip candidates for the transcript and the
// variant's affected transcript-relative range: one single skip per exon
// overlapping the range, then one double skip per adjacent pair that
// overlaps it. Candidates are ordered by ascending exon index with singles
// before pairs. A candidate that would remove every exon is excluded.
func Candidates(s *Structure, affected []track.Interval) ([]Candidate, error) {
	n := len(s.Exons)
	overlaps := make([]bool, n)
	for i, e := range s.Exons {
		overlaps[i] = track.Overlap([]track.Interval{e.Range()}, affected)
	}

	var out []Candidate
	for i := range n {
		if !overlaps[i] || n == 1 {
			continue
		}
		c, err := newCandidate(s, i, i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	for i := 0; i+1 < n; i++ {
		if (!overlaps[i] && !overlaps[i+1]) || n == 2 {
			continue
		}
		c, err := newCandidate(s, i, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func newCandidate(s *Structure, first, last int) (Candidate, error) {
	modified, err := s.SkipExons(first, last)
	if err != nil {
		return Candidate{}, fmt.Errorf("skip exons %d..%d: %w", first+1, last+1, err)
	}

	removed := s.Exons[last].Offset + s.Exons[last].Len() - s.Exons[first].Offset
	framePreserved := removed%3 == 0

	var name, what string
	if first == last {
		name = fmt.Sprintf("Skip exon %d", first+1)
		what = fmt.Sprintf("exon %d", first+1)
	} else {
		name = fmt.Sprintf("Skip exons %d-%d", first+1, last+1)
		what = fmt.Sprintf("exons %d-%d", first+1, last+1)
	}

	frame := "frame preserved"
	if !framePreserved {
		frame = "frameshift"
	}

	return Candidate{
		Therapy: Therapy{
			Name:           name,
			Expression:     deletionExpression(s, first, last),
			Description:    fmt.Sprintf("The transcript with %s skipped, removing %d bp (%s).", what, removed, frame),
			FramePreserved: framePreserved,
		},
		Structure: modified,
	}, nil
}

// deletionExpression renders the skipped region as an HGVS-like deletion.
// Regions fully inside the coding track use c. numbering relative to the
// coding start; everything else falls back to transcript (n.) numbering.
func deletionExpression(s *Structure, first, last int) string {
	txStart := s.Exons[first].Offset
	txEnd := s.Exons[last].Offset + s.Exons[last].Len()

	coding := s.Tracks.Track(TrackCoding)
	if len(coding) > 0 {
		cs := coding[0].Start
		ce := coding[len(coding)-1].End
		if txStart >= cs && txEnd <= ce {
			return fmt.Sprintf("%s:c.%d_%ddel", s.ID, txStart-cs+1, txEnd-cs)
		}
	}
	return fmt.Sprintf("%s:n.%d_%ddel", s.ID, txStart+1, txEnd)
}
