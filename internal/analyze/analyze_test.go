package analyze

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/hgvs"
	"github.com/genoskip/genoskip/internal/provider"
	"github.com/genoskip/genoskip/internal/track"
	"github.com/genoskip/genoskip/internal/transcript"
)

// fakeFetcher serves a fixed ten-exon transcript (100 bp exons separated
// by 100 bp introns, fully coding) and maps expressions to genomic
// footprints.
type fakeFetcher struct {
	variants       map[string]track.Interval
	structureCalls atomic.Int64
	trackErr       error
	domains        map[string][]track.Interval
}

func (f *fakeFetcher) FetchStructure(ctx context.Context, id transcript.ID) (*bed.Record, error) {
	f.structureCalls.Add(1)

	blocks := make([]track.Interval, 10)
	for i := range blocks {
		start := int64(i * 200)
		blocks[i] = track.Interval{Start: start, End: start + 100}
	}
	rec, err := bed.FromBlocks("chr1", blocks...)
	if err != nil {
		return nil, err
	}
	rec.Name = id.String()
	rec.Strand = "+"
	return rec, nil
}

func (f *fakeFetcher) FetchTracks(ctx context.Context, id transcript.ID) (map[string][]track.Interval, error) {
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	return f.domains, nil
}

func (f *fakeFetcher) Validate(ctx context.Context, expr string, id transcript.ID) (*provider.NormalizedVariant, error) {
	g, ok := f.variants[expr]
	if !ok {
		return nil, &provider.NotFoundError{Ident: expr}
	}
	return &provider.NormalizedVariant{
		Expression: expr,
		Accession:  id.Accession,
		Chrom:      "chr1",
		Start:      g.Start,
		End:        g.End,
	}, nil
}

const exprExon5 = "ENST00000000010.1:c.450del"

// The caching provider's description memo plugs into the analyzer.
var _ Describer = (*provider.CachingFetcher)(nil)

func newFake() *fakeFetcher {
	return &fakeFetcher{
		variants: map[string]track.Interval{
			// Genomic 850 sits in exon 5 ([800, 900)).
			exprExon5: {Start: 850, End: 851},
			// Genomic 150 sits in the first intron.
			"ENST00000000010.1:c.100del": {Start: 150, End: 151},
		},
	}
}

func TestAnalyze(t *testing.T) {
	a := New(newFake(), WithWorkers(4))

	results, err := a.Analyze(context.Background(), exprExon5)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Baseline row first: nothing lost.
	assert.Equal(t, "Wildtype", results[0].Therapy.Name)
	for _, c := range results[0].Comparisons {
		assert.Equal(t, 1.0, c.Percentage, c.Track)
	}

	assert.Equal(t, "Skip exon 5", results[1].Therapy.Name)
	assert.Equal(t, "Skip exons 4-5", results[2].Therapy.Name)
	assert.Equal(t, "Skip exons 5-6", results[3].Therapy.Name)

	byTrack := make(map[string]transcript.Comparison)
	for _, c := range results[1].Comparisons {
		byTrack[c.Track] = c
	}
	assert.Equal(t, int64(900), byTrack[transcript.TrackExons].Remaining)
	assert.InDelta(t, 0.9, byTrack[transcript.TrackExons].Percentage, 1e-9)
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := New(newFake(), WithWorkers(8))
	ctx := context.Background()

	first, err := a.Analyze(ctx, exprExon5)
	require.NoError(t, err)
	second, err := a.Analyze(ctx, exprExon5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_ParseFailure(t *testing.T) {
	a := New(newFake())

	_, err := a.Analyze(context.Background(), "not an hgvs expression")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageParse, perr.Stage)
}

func TestAnalyze_IntronicVariant(t *testing.T) {
	a := New(newFake())

	results, err := a.Analyze(context.Background(), "ENST00000000010.1:c.100del")
	require.Nil(t, results)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageProject, perr.Stage)

	var unmappable *transcript.UnmappablePositionError
	assert.ErrorAs(t, err, &unmappable)
}

func TestAnalyze_UnknownVariant(t *testing.T) {
	a := New(newFake())

	_, err := a.Analyze(context.Background(), "ENST00000000099.1:c.10del")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageValidate, perr.Stage)

	var notFound *provider.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAnalyze_MissingDomainTracksTolerated(t *testing.T) {
	fake := newFake()
	fake.trackErr = &provider.PartialDataError{Ident: "ENST00000000010.1", Missing: []string{"unipDomain"}}
	a := New(fake)

	results, err := a.Analyze(context.Background(), exprExon5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, c := range results[0].Comparisons {
		assert.NotContains(t, c.Track, "domain")
	}
}

func TestAnalyze_DomainTracksInReport(t *testing.T) {
	fake := newFake()
	// Genomic [810, 890) sits inside exon 5.
	fake.domains = map[string][]track.Interval{
		"domain Kinase": {{Start: 810, End: 890}},
	}
	a := New(fake)

	results, err := a.Analyze(context.Background(), exprExon5)
	require.NoError(t, err)

	byTrack := make(map[string]transcript.Comparison)
	for _, c := range results[1].Comparisons {
		byTrack[c.Track] = c
	}
	// Skip exon 5 removes the whole domain.
	require.Contains(t, byTrack, "domain Kinase")
	assert.Equal(t, int64(0), byTrack["domain Kinase"].Remaining)
	assert.Equal(t, int64(80), byTrack["domain Kinase"].Original)
}

// describingFetcher adds a description memo to fakeFetcher and counts how
// often an expression is actually parsed.
type describingFetcher struct {
	*fakeFetcher
	mu           sync.Mutex
	descriptions map[string]*hgvs.Description
	parses       atomic.Int64
}

func (f *describingFetcher) Description(expr string) (*hgvs.Description, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.descriptions[expr]; ok {
		return d, nil
	}
	f.parses.Add(1)
	d, err := hgvs.Parse(expr)
	if err != nil {
		return nil, err
	}
	if f.descriptions == nil {
		f.descriptions = make(map[string]*hgvs.Description)
	}
	f.descriptions[expr] = d
	return d, nil
}

func TestAnalyze_ReusesParsedDescription(t *testing.T) {
	fake := &describingFetcher{fakeFetcher: newFake()}
	a := New(fake)
	ctx := context.Background()

	_, err := a.Analyze(ctx, exprExon5)
	require.NoError(t, err)
	_, err = a.Analyze(ctx, exprExon5)
	require.NoError(t, err)

	// The expression is parsed once; the second request reuses the
	// memoized description.
	assert.Equal(t, int64(1), fake.parses.Load())
}

func TestAnalyze_ParseFailureThroughMemo(t *testing.T) {
	fake := &describingFetcher{fakeFetcher: newFake()}
	a := New(fake)

	_, err := a.Analyze(context.Background(), "not an hgvs expression")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageParse, perr.Stage)
}

func TestAnalyze_StructureFetchedOncePerTranscript(t *testing.T) {
	fake := newFake()
	a := New(provider.NewCachingFetcher(fake))
	ctx := context.Background()

	_, err := a.Analyze(ctx, exprExon5)
	require.NoError(t, err)
	_, err = a.Analyze(ctx, exprExon5)
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.structureCalls.Load())
}
