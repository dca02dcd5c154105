package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/track"
)

func TestCompare_SkippedExon(t *testing.T) {
	s := testStructure(t)

	mod, err := s.SkipExons(1, 1)
	require.NoError(t, err)

	cmp := Compare(mod, s)
	require.Len(t, cmp, 4)

	byTrack := make(map[string]Comparison, len(cmp))
	for _, c := range cmp {
		byTrack[c.Track] = c
	}

	// 50 of 70 exonic bp remain, 12 of 29 coding bp.
	assert.InDelta(t, 0.714, byTrack[TrackExons].Percentage, 0.001)
	assert.InDelta(t, 0.413, byTrack[TrackCoding].Percentage, 0.001)
	assert.Equal(t, int64(50), byTrack[TrackExons].Remaining)
	assert.Equal(t, "50/70", byTrack[TrackExons].Fraction)
	assert.Equal(t, int64(12), byTrack[TrackCoding].Remaining)
}

func TestCompare_DeclaredOrder(t *testing.T) {
	s := testStructure(t)
	mod, err := s.SkipExons(2, 2)
	require.NoError(t, err)

	cmp := Compare(mod, s)

	var names []string
	for _, c := range cmp {
		names = append(names, c.Track)
	}
	assert.Equal(t, []string{TrackExons, TrackCoding, TrackUTR5, TrackUTR3}, names)

	// Same order on every call.
	again := Compare(mod, s)
	assert.Equal(t, cmp, again)
}

func TestCompare_UnaffectedTrackFullyRetained(t *testing.T) {
	s := testStructure(t)

	// Skipping exon 4 leaves the 5'UTR untouched.
	mod, err := s.SkipExons(3, 3)
	require.NoError(t, err)

	cmp := Compare(mod, s)
	byTrack := make(map[string]Comparison, len(cmp))
	for _, c := range cmp {
		byTrack[c.Track] = c
	}

	assert.Equal(t, 1.0, byTrack[TrackUTR5].Percentage)
	assert.Equal(t, byTrack[TrackUTR5].Original, byTrack[TrackUTR5].Remaining)
}

func TestCompare_ZeroLengthOriginal(t *testing.T) {
	// A transcript whose coding region ends exactly at the last exon has
	// an empty 3'UTR track: percentage is 1.0 by definition, not a
	// division by zero.
	rec, err := bed.FromBlocks("chr1",
		track.Interval{Start: 0, End: 30},
		track.Interval{Start: 60, End: 90},
	)
	require.NoError(t, err)
	rec.ThickStart, rec.ThickEnd = 12, 90

	s, err := Load(ID{Accession: "ENST00000000006"}, rec, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), s.Tracks.Length(TrackUTR3))

	mod, err := s.SkipExons(1, 1)
	require.NoError(t, err)

	cmp := Compare(mod, s)
	byTrack := make(map[string]Comparison, len(cmp))
	for _, c := range cmp {
		byTrack[c.Track] = c
	}

	assert.Equal(t, 1.0, byTrack[TrackUTR3].Percentage)
	assert.Equal(t, "0/0", byTrack[TrackUTR3].Fraction)
}

func TestCompare_Identity(t *testing.T) {
	s := testStructure(t)

	for _, c := range Compare(s, s) {
		assert.Equal(t, 1.0, c.Percentage, c.Track)
		assert.Equal(t, c.Original, c.Remaining, c.Track)
	}
}

func TestCompare_PercentageInvariant(t *testing.T) {
	s := tenExonStructure(t)

	cands, err := Candidates(s, []track.Interval{{Start: 0, End: 1000}})
	require.NoError(t, err)

	for _, cand := range cands {
		for _, c := range Compare(cand.Structure, s) {
			if c.Original == 0 {
				assert.Equal(t, 1.0, c.Percentage, c.Track)
				continue
			}
			assert.Equal(t, float64(c.Remaining)/float64(c.Original), c.Percentage, c.Track)
		}
	}
}

func TestCompare_CodingScenario(t *testing.T) {
	// 10 equal exons of 100 bp, variant in exon 5: skipping exon 5
	// retains 900/1000 = 90% of the coding track.
	s := tenExonStructure(t)

	cands, err := Candidates(s, []track.Interval{{Start: 450, End: 451}})
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	cmp := Compare(cands[0].Structure, s)
	byTrack := make(map[string]Comparison, len(cmp))
	for _, c := range cmp {
		byTrack[c.Track] = c
	}
	assert.Equal(t, int64(900), byTrack[TrackCoding].Remaining)
	assert.InDelta(t, 0.9, byTrack[TrackCoding].Percentage, 1e-9)
}
