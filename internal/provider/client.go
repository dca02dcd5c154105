package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/genoskip/genoskip/internal/bed"
	"github.com/genoskip/genoskip/internal/hgvs"
	"github.com/genoskip/genoskip/internal/track"
	"github.com/genoskip/genoskip/internal/transcript"
)

// Default endpoints of the public annotation services.
const (
	DefaultEnsemblURL   = "https://rest.ensembl.org"
	DefaultUCSCURL      = "https://api.genome.ucsc.edu"
	DefaultValidatorURL = "https://rest.variantvalidator.org"

	// UCSC track holding protein domain annotations.
	domainTrack = "unipDomain"

	structureTrack = "knownGene"
)

// Retry policy for transient network failures: capped, logged, never
// infinite.
const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// errStatusNotFound marks a 4xx answer so callers can attach the failing
// identifier.
var errStatusNotFound = errors.New("resource not found")

// Client fetches transcript structures, annotation tracks and variant
// validations from the Ensembl, UCSC and VariantValidator REST APIs.
type Client struct {
	ensemblURL   string
	ucscURL      string
	validatorURL string
	httpClient   *http.Client
	logger       *zap.Logger

	mu      sync.Mutex
	lookups map[string]*ensemblLookup
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for retry and lookup messages.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithBaseURLs overrides the service endpoints (used in tests).
func WithBaseURLs(ensembl, ucsc, validator string) ClientOption {
	return func(c *Client) {
		c.ensemblURL = ensembl
		c.ucscURL = ucsc
		c.validatorURL = validator
	}
}

// NewClient creates a REST client with default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		ensemblURL:   DefaultEnsemblURL,
		ucscURL:      DefaultUCSCURL,
		validatorURL: DefaultValidatorURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       zap.NewNop(),
		lookups:      make(map[string]*ensemblLookup),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensemblLookup is the relevant part of the Ensembl lookup/id payload.
type ensemblLookup struct {
	ID            string `json:"id"`
	Version       int    `json:"version"`
	AssemblyName  string `json:"assembly_name"`
	SeqRegionName string `json:"seq_region_name"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	DisplayName   string `json:"display_name"`
}

// ucscGenome maps Ensembl assembly names to UCSC genome identifiers.
var ucscGenome = map[string]string{
	"GRCh38":    "hg38",
	"GRCh37":    "hg19",
	"mRatBN7.2": "rn7",
}

func chromToUCSC(seqRegionName string) string {
	if seqRegionName == "MT" {
		return "chrM"
	}
	return "chr" + seqRegionName
}

// FetchStructure looks up the transcript region via Ensembl and then reads
// the matching structural record from the UCSC knownGene track.
func (c *Client) FetchStructure(ctx context.Context, id transcript.ID) (*bed.Record, error) {
	lookup, err := c.lookupTranscript(ctx, id)
	if err != nil {
		return nil, err
	}

	genome, ok := ucscGenome[lookup.AssemblyName]
	if !ok {
		return nil, fmt.Errorf("transcript %s: no UCSC genome for assembly %q", id, lookup.AssemblyName)
	}

	url := fmt.Sprintf("%s/getData/track?genome=%s;chrom=%s;track=%s;start=%d;end=%d",
		c.ucscURL, genome, chromToUCSC(lookup.SeqRegionName), structureTrack, lookup.Start, lookup.End)

	var payload struct {
		KnownGene []bed.UCSCTrackEntry `json:"knownGene"`
	}
	if err := c.getJSON(ctx, url, &payload); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Ident: id.String()}
		}
		return nil, fmt.Errorf("fetch structure %s: %w", id, err)
	}

	want := id.String()
	for i := range payload.KnownGene {
		if payload.KnownGene[i].Name == want {
			return bed.FromUCSC(&payload.KnownGene[i])
		}
	}
	return nil, &NotFoundError{Ident: want}
}

// FetchTracks reads protein-domain annotations overlapping the transcript
// region from the UCSC domain track.
func (c *Client) FetchTracks(ctx context.Context, id transcript.ID) (map[string][]track.Interval, error) {
	lookup, err := c.lookupTranscript(ctx, id)
	if err != nil {
		return nil, err
	}

	genome, ok := ucscGenome[lookup.AssemblyName]
	if !ok {
		return nil, fmt.Errorf("transcript %s: no UCSC genome for assembly %q", id, lookup.AssemblyName)
	}

	url := fmt.Sprintf("%s/getData/track?genome=%s;chrom=%s;track=%s;start=%d;end=%d",
		c.ucscURL, genome, chromToUCSC(lookup.SeqRegionName), domainTrack, lookup.Start, lookup.End)

	var payload map[string]json.RawMessage
	if err := c.getJSON(ctx, url, &payload); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &PartialDataError{Ident: id.String(), Missing: []string{domainTrack}}
		}
		return nil, fmt.Errorf("fetch tracks %s: %w", id, err)
	}

	raw, ok := payload[domainTrack]
	if !ok {
		return nil, &PartialDataError{Ident: id.String(), Missing: []string{domainTrack}}
	}

	var entries []struct {
		ChromStart int64  `json:"chromStart"`
		ChromEnd   int64  `json:"chromEnd"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("fetch tracks %s: decode %s: %w", id, domainTrack, err)
	}

	out := make(map[string][]track.Interval)
	for _, e := range entries {
		if e.ChromEnd <= e.ChromStart {
			continue
		}
		name := "domain " + e.Name
		out[name] = append(out[name], track.Interval{Start: e.ChromStart, End: e.ChromEnd})
	}
	return out, nil
}

// validatorAssembly maps species to the assembly name VariantValidator
// expects.
var validatorAssembly = map[string]string{
	"human": "hg38",
	"rat":   "rn7",
}

// Validate submits the expression to VariantValidator's mane_select
// endpoint and extracts the normalized genomic footprint.
func (c *Client) Validate(ctx context.Context, expr string, id transcript.ID) (*NormalizedVariant, error) {
	assembly, ok := validatorAssembly[id.Species]
	if !ok {
		return nil, fmt.Errorf("validate %s: unsupported species %q", expr, id.Species)
	}

	endpoint := "variantvalidator"
	if len(id.Accession) >= 3 && id.Accession[:3] == "ENS" {
		endpoint = "variantvalidator_ensembl"
	}
	// Substitutions carry '>' in the expression, so it must be escaped
	// before going into the request path.
	reqURL := fmt.Sprintf("%s/VariantValidator/%s/%s/%s/mane_select?content-type=application/json",
		c.validatorURL, endpoint, assembly, url.PathEscape(expr))

	var payload map[string]json.RawMessage
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Ident: expr}
		}
		return nil, fmt.Errorf("validate %s: %w", expr, err)
	}

	raw, ok := payload[expr]
	if !ok {
		return nil, &hgvs.ValidationError{Expression: expr, Reason: "rejected by variant validator"}
	}

	var entry struct {
		PrimaryAssemblyLoci map[string]struct {
			VCF struct {
				Chr string `json:"chr"`
				Pos string `json:"pos"`
				Ref string `json:"ref"`
				Alt string `json:"alt"`
			} `json:"vcf"`
		} `json:"primary_assembly_loci"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("validate %s: decode: %w", expr, err)
	}

	loci, ok := entry.PrimaryAssemblyLoci[assembly]
	if !ok || loci.VCF.Pos == "" {
		return nil, &hgvs.ValidationError{Expression: expr, Reason: fmt.Sprintf("no %s loci in validator answer", assembly)}
	}

	pos, err := strconv.ParseInt(loci.VCF.Pos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("validate %s: bad position %q: %w", expr, loci.VCF.Pos, err)
	}

	// VCF positions are 1-based; the footprint covers the reference
	// allele as a 0-based half-open range.
	start := pos - 1
	end := start + int64(len(loci.VCF.Ref))
	return &NormalizedVariant{
		Expression: expr,
		Accession:  id.Accession,
		Chrom:      loci.VCF.Chr,
		Start:      start,
		End:        end,
	}, nil
}

// lookupTranscript resolves the transcript region via Ensembl. The answer
// is memoized per accession, so fetching a transcript's structure and its
// tracks costs one lookup, not two. Failed lookups are not memoized.
func (c *Client) lookupTranscript(ctx context.Context, id transcript.ID) (*ensemblLookup, error) {
	c.mu.Lock()
	cached, ok := c.lookups[id.Accession]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/lookup/id/%s?content-type=application/json", c.ensemblURL, id.Accession)

	var lookup ensemblLookup
	if err := c.getJSON(ctx, url, &lookup); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Ident: id.String()}
		}
		return nil, fmt.Errorf("lookup transcript %s: %w", id, err)
	}

	c.mu.Lock()
	c.lookups[id.Accession] = &lookup
	c.mu.Unlock()
	return &lookup, nil
}

// getJSON fetches a URL and decodes the JSON answer, retrying transient
// failures (network errors, 5xx) up to maxAttempts with a short delay.
// Timeouts surface as *TimeoutError.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying lookup",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) {
				lastErr = &TimeoutError{URL: url, Err: err}
			} else {
				lastErr = err
			}
			continue
		}

		done, err := func() (bool, error) {
			defer resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusOK:
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return true, fmt.Errorf("decode %s: %w", url, err)
				}
				return true, nil
			case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
				return true, fmt.Errorf("%s: %w", url, errStatusNotFound)
			case resp.StatusCode >= http.StatusInternalServerError:
				return false, fmt.Errorf("%s: status %d", url, resp.StatusCode)
			default:
				return true, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
			}
		}()
		if done {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
