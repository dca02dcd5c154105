// Package analyze wires the pipeline from a variant description to the
// per-therapy comparison report: parse, validate, fetch the annotated
// transcript, project the variant, enumerate exon skips and compare each
// modified structure against the original.
package analyze

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/genoskip/genoskip/internal/hgvs"
	"github.com/genoskip/genoskip/internal/provider"
	"github.com/genoskip/genoskip/internal/transcript"
)

// Pipeline stages, used to attribute failures.
const (
	StageParse    = "parse"
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageLoad     = "load"
	StageProject  = "project"
	StageGenerate = "generate"
)

// Error wraps a pipeline failure with the stage it happened in and the
// identifier being processed.
type Error struct {
	Stage string
	Ident string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Ident, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is one row of the analysis report: a therapy and its per-track
// comparison against the unmodified transcript.
type Result struct {
	Therapy     transcript.Therapy
	Comparisons []transcript.Comparison
}

// Describer is implemented by fetchers that memoize parsed variant
// descriptions. The analyzer obtains descriptions through it so repeated
// requests for the same variant string reuse one parsed object.
type Describer interface {
	Description(expr string) (*hgvs.Description, error)
}

// Analyzer runs the analysis pipeline against an injected Fetcher.
type Analyzer struct {
	fetcher provider.Fetcher
	logger  *zap.Logger
	workers int
	species string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithWorkers sets the comparison worker count. Zero means NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithSpecies sets the species used for transcript lookups.
func WithSpecies(s string) Option {
	return func(a *Analyzer) { a.species = s }
}

// New creates an Analyzer using the given Fetcher for external lookups.
func New(fetcher provider.Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		logger:  zap.NewNop(),
		species: "human",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline for one variant expression. The first
// result is always the unmodified transcript (every track fully
// retained); the remaining results are the exon-skip candidates in
// generator order. The pipeline is read-only, so repeat calls with the
// same expression yield the same results.
func (a *Analyzer) Analyze(ctx context.Context, expr string) ([]Result, error) {
	desc, err := a.describe(expr)
	if err != nil {
		return nil, &Error{Stage: StageParse, Ident: expr, Err: err}
	}
	id := transcript.ID{Species: a.species, Accession: desc.Accession, Version: desc.Version}

	a.logger.Info("analyzing variant",
		zap.String("variant", expr),
		zap.String("transcript", id.String()))

	variant, err := a.fetcher.Validate(ctx, desc.Raw, id)
	if err != nil {
		return nil, &Error{Stage: StageValidate, Ident: expr, Err: err}
	}

	rec, err := a.fetcher.FetchStructure(ctx, id)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Ident: id.String(), Err: err}
	}

	// Domain tracks enrich the report but are not required for the
	// skip analysis itself; a provider that cannot supply them only
	// costs us those rows.
	tracks, err := a.fetcher.FetchTracks(ctx, id)
	if err != nil {
		var partial *provider.PartialDataError
		if !errors.As(err, &partial) {
			return nil, &Error{Stage: StageFetch, Ident: id.String(), Err: err}
		}
		a.logger.Warn("annotation tracks unavailable",
			zap.String("transcript", id.String()),
			zap.Strings("missing", partial.Missing))
		tracks = nil
	}

	s, err := transcript.Load(id, rec, tracks)
	if err != nil {
		return nil, &Error{Stage: StageLoad, Ident: id.String(), Err: err}
	}

	affected, err := s.Project(variant.Range())
	if err != nil {
		return nil, &Error{Stage: StageProject, Ident: expr, Err: err}
	}

	candidates, err := transcript.Candidates(s, affected)
	if err != nil {
		return nil, &Error{Stage: StageGenerate, Ident: id.String(), Err: err}
	}

	a.logger.Debug("generated skip candidates",
		zap.String("transcript", id.String()),
		zap.Int("count", len(candidates)))

	results := make([]Result, 0, len(candidates)+1)
	results = append(results, Result{
		Therapy: transcript.Therapy{
			Name:           "Wildtype",
			Description:    "The unmodified transcript.",
			FramePreserved: true,
		},
		Comparisons: transcript.Compare(s, s),
	})
	results = append(results, a.compareAll(s, candidates)...)

	return results, nil
}

// describe parses a variant expression, going through the fetcher's
// description memo when it has one.
func (a *Analyzer) describe(expr string) (*hgvs.Description, error) {
	if d, ok := a.fetcher.(Describer); ok {
		return d.Description(expr)
	}
	return hgvs.Parse(expr)
}
