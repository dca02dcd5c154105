// Package provider supplies the external collaborators of the analysis
// core: transcript structure lookup, annotation-track lookup and variant
// validation, plus the identity-keyed caching layer that wraps them.
package provider

import (
	"context"
	"fmt"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/track"
	"github.com/genoskip/genoskip/internal/transcript"
)

// NormalizedVariant is a variant description validated and normalized by
// the variant-validation collaborator, with its genomic footprint resolved
// against the reference assembly. Coordinates are 0-based half-open.
type NormalizedVariant struct {
	Expression string // normalized HGVS expression
	Accession  string
	Chrom      string
	Start      int64
	End        int64
}

// Range returns the genomic footprint of the variant.
func (v *NormalizedVariant) Range() track.Interval {
	return track.Interval{Start: v.Start, End: v.End}
}

// Fetcher is the set of external lookups the analysis core depends on.
// Implementations may block on network I/O; all take a context for
// timeout propagation.
type Fetcher interface {
	// FetchStructure returns the raw structural record for a transcript.
	// Fails with *NotFoundError when the transcript is unknown.
	FetchStructure(ctx context.Context, id transcript.ID) (*bed.Record, error)

	// FetchTracks returns extra annotation tracks (protein domains) in
	// genomic coordinates. Fails with *PartialDataError when the
	// provider cannot supply the configured tracks.
	FetchTracks(ctx context.Context, id transcript.ID) (map[string][]track.Interval, error)

	// Validate validates a variant expression against the reference and
	// resolves its genomic footprint.
	Validate(ctx context.Context, expr string, id transcript.ID) (*NormalizedVariant, error)
}

// NotFoundError reports that a collaborator could not find the requested
// identifier.
type NotFoundError struct {
	Ident string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Ident)
}

// PartialDataError reports that a collaborator answered but could not
// supply all requested data.
type PartialDataError struct {
	Ident   string
	Missing []string
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("%s: incomplete annotation data, missing %v", e.Ident, e.Missing)
}

// TimeoutError reports an external lookup that exceeded its deadline.
// It is distinct from other network failures so callers can render it as
// a transient condition.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lookup %s timed out: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
