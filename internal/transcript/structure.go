// Package transcript models a transcript as an ordered list of exon blocks
// with transcript-relative offsets plus an annotation model, and implements
// the exon-skip therapy generator and the comparison engine over it.
package transcript

import (
	"fmt"
	"sort"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/track"
)

// Track names derived from the structural record. Domain tracks keep the
// names supplied by the annotation provider.
const (
	TrackExons  = "exons"
	TrackCoding = "coding"
	TrackUTR5   = "5'UTR"
	TrackUTR3   = "3'UTR"
)

// ID identifies a transcript: species, accession and version.
type ID struct {
	Species   string
	Accession string
	Version   int
}

func (id ID) String() string {
	if id.Version == 0 {
		return id.Accession
	}
	return fmt.Sprintf("%s.%d", id.Accession, id.Version)
}

// Exon is one exon block: genomic half-open coordinates plus the running
// transcript-relative offset of its first base.
type Exon struct {
	Start  int64 // genomic
	End    int64 // genomic
	Offset int64 // transcript-relative start
}

// Len returns the exon length in basepairs.
func (e Exon) Len() int64 {
	return e.End - e.Start
}

// Range returns the transcript-relative interval covered by the exon.
func (e Exon) Range() track.Interval {
	return track.Interval{Start: e.Offset, End: e.Offset + e.Len()}
}

// Structure is a transcript's annotated structure. Exons are in transcript
// order (reverse genomic order on the minus strand) and the annotation
// tracks live on the transcript-relative axis. A Structure is treated as
// immutable once built; SkipExons returns a new value.
type Structure struct {
	ID     ID
	Chrom  string
	Strand int8 // +1 or -1
	Exons  []Exon
	Tracks *track.Model
}

// Load builds a Structure from a validated structural record plus optional
// extra annotation tracks in genomic coordinates (protein domains). The
// thick bounds of the record provide the coding track; 5'UTR and 3'UTR are
// derived from it. Malformed records fail with *bed.MalformedStructureError.
func Load(id ID, rec *bed.Record, extra map[string][]track.Interval) (*Structure, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	strand := int8(1)
	if rec.Strand == "-" {
		strand = -1
	}

	blocks := rec.Blocks()
	if strand < 0 {
		for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
			blocks[i], blocks[j] = blocks[j], blocks[i]
		}
	}

	exons := make([]Exon, len(blocks))
	var offset int64
	for i, b := range blocks {
		exons[i] = Exon{Start: b.Start, End: b.End, Offset: offset}
		offset += b.Len()
	}

	s := &Structure{
		ID:     id,
		Chrom:  rec.Chrom,
		Strand: strand,
		Exons:  exons,
		Tracks: track.NewModel(),
	}

	total := offset
	if err := s.Tracks.AddTrack(TrackExons, []track.Interval{{Start: 0, End: total}}); err != nil {
		return nil, err
	}

	if rec.IsCoding() {
		coding := s.projectGenomic(track.Interval{Start: rec.ThickStart, End: rec.ThickEnd})
		if len(coding) == 0 {
			return nil, &bed.MalformedStructureError{
				Name:   rec.Name,
				Reason: fmt.Sprintf("coding region [%d, %d) overlaps no exon block", rec.ThickStart, rec.ThickEnd),
			}
		}
		if err := s.Tracks.AddTrack(TrackCoding, coding); err != nil {
			return nil, err
		}

		var utr5, utr3 []track.Interval
		if cs := coding[0].Start; cs > 0 {
			utr5 = []track.Interval{{Start: 0, End: cs}}
		}
		if ce := coding[len(coding)-1].End; ce < total {
			utr3 = []track.Interval{{Start: ce, End: total}}
		}
		// Declared even when empty so every coding transcript reports
		// the same track set.
		if err := s.Tracks.AddTrack(TrackUTR5, utr5); err != nil {
			return nil, err
		}
		if err := s.Tracks.AddTrack(TrackUTR3, utr3); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var projected []track.Interval
		for _, g := range extra[name] {
			projected = append(projected, s.projectGenomic(g)...)
		}
		if err := s.Tracks.AddTrack(name, track.Merge(projected)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// TotalLength returns the transcript's total mapped length, the sum of its
// exon block lengths.
func (s *Structure) TotalLength() int64 {
	var total int64
	for _, e := range s.Exons {
		total += e.Len()
	}
	return total
}

// projectGenomic maps a genomic interval onto the transcript-relative axis:
// the union of all exonic sub-ranges it touches, in transcript coordinates.
// Intronic positions simply do not map; callers that must not guess use
// Project instead.
func (s *Structure) projectGenomic(g track.Interval) []track.Interval {
	var out []track.Interval
	for _, e := range s.Exons {
		start := g.Start
		if e.Start > start {
			start = e.Start
		}
		end := g.End
		if e.End < end {
			end = e.End
		}
		if start >= end {
			continue
		}
		if s.Strand >= 0 {
			out = append(out, track.Interval{
				Start: e.Offset + (start - e.Start),
				End:   e.Offset + (end - e.Start),
			})
		} else {
			// Minus strand: the genomic end of the exon is its
			// transcript-relative start.
			out = append(out, track.Interval{
				Start: e.Offset + (e.End - end),
				End:   e.Offset + (e.End - start),
			})
		}
	}
	return track.Merge(out)
}

// SkipExons returns a new Structure with exons first..last (inclusive,
// transcript order) removed: downstream offsets are recomputed and every
// annotation track has the skipped slice of the axis excised. At least one
// exon must remain. The receiver is never modified.
func (s *Structure) SkipExons(first, last int) (*Structure, error) {
	n := len(s.Exons)
	if first < 0 || last >= n || first > last {
		return nil, fmt.Errorf("exon range %d..%d out of bounds for %d exons", first, last, n)
	}
	if last-first+1 >= n {
		return nil, fmt.Errorf("skipping exons %d..%d would remove every exon of %s", first, last, s.ID)
	}

	removed := track.Interval{
		Start: s.Exons[first].Offset,
		End:   s.Exons[last].Offset + s.Exons[last].Len(),
	}

	exons := make([]Exon, 0, n-(last-first+1))
	var offset int64
	for i, e := range s.Exons {
		if i >= first && i <= last {
			continue
		}
		exons = append(exons, Exon{Start: e.Start, End: e.End, Offset: offset})
		offset += e.Len()
	}

	return &Structure{
		ID:     s.ID,
		Chrom:  s.Chrom,
		Strand: s.Strand,
		Exons:  exons,
		Tracks: s.Tracks.Excise(removed),
	}, nil
}
