// Package hgvs parses HGVS-style variant descriptions far enough to reject
// malformed input before any external lookup, and to expose the reference
// accession and written positions. Full normalization against the reference
// sequence is delegated to the variant-validation collaborator.
package hgvs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError reports a variant description whose syntax is malformed
// or unsupported. It is surfaced before any external lookup is attempted.
type ValidationError struct {
	Expression string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid variant description %q: %s", e.Expression, e.Reason)
}

// Kind identifies the change described by a variant.
type Kind string

const (
	KindSubstitution Kind = "substitution"
	KindDeletion     Kind = "deletion"
	KindDuplication  Kind = "duplication"
	KindInsertion    Kind = "insertion"
	KindDelIns       Kind = "delins"
)

// Description is a parsed variant description. Start and End are the
// 1-based inclusive positions as written in the expression.
type Description struct {
	Raw        string
	Accession  string
	Version    int    // 0 when the accession carries no version
	Coordinate string // "c", "n" or "g"
	Start      int64
	End        int64
	Kind       Kind
}

// ID returns the accession with its version, as used for cache keys and
// annotation lookups.
func (d *Description) ID() string {
	if d.Version == 0 {
		return d.Accession
	}
	return fmt.Sprintf("%s.%d", d.Accession, d.Version)
}

var (
	// ENST00000357033.9 or NM_004006
	reReference = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]+?)(?:\.(\d+))?$`)
	// 100A>T | 100del | 100_200del | 100dup | 100_101insTTC | 100_200delinsAG
	reChange = regexp.MustCompile(`^(\d+)(?:_(\d+))?(del(?:ins[ACGTN]+)?|dup|ins[ACGTN]+|[ACGTN]>[ACGTN])$`)
)

// Parse parses an expression of the form REFERENCE:c.CHANGE. Intronic
// offsets (c.100+5), UTR positions (c.-12, c.*33) and multi-variant
// alleles are not supported and are rejected here rather than guessed at.
func Parse(expr string) (*Description, error) {
	fail := func(reason string) (*Description, error) {
		return nil, &ValidationError{Expression: expr, Reason: reason}
	}

	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return fail("empty expression")
	}

	refPart, change, ok := strings.Cut(trimmed, ":")
	if !ok {
		return fail("missing ':' between reference and variant")
	}

	refMatch := reReference.FindStringSubmatch(refPart)
	if refMatch == nil {
		return fail(fmt.Sprintf("unusable reference %q", refPart))
	}
	version := 0
	if refMatch[2] != "" {
		version, _ = strconv.Atoi(refMatch[2])
	}

	coordinate, rest, ok := strings.Cut(change, ".")
	if !ok || (coordinate != "c" && coordinate != "n" && coordinate != "g") {
		return fail("expected a c., n. or g. coordinate system")
	}

	if strings.ContainsAny(rest, "+-*") {
		return fail("intronic and UTR offsets are not supported")
	}
	if strings.Contains(rest, "[") {
		return fail("multi-variant alleles are not supported")
	}

	m := reChange.FindStringSubmatch(rest)
	if m == nil {
		return fail(fmt.Sprintf("unusable variant %q", rest))
	}

	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || start < 1 {
		return fail("position must be a positive integer")
	}
	end := start
	if m[2] != "" {
		end, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return fail("position must be a positive integer")
		}
		if end < start {
			return fail(fmt.Sprintf("end %d is before start %d", end, start))
		}
	}

	return &Description{
		Raw:        trimmed,
		Accession:  refMatch[1],
		Version:    version,
		Coordinate: coordinate,
		Start:      start,
		End:        end,
		Kind:       changeKind(m[3]),
	}, nil
}

func changeKind(change string) Kind {
	switch {
	case strings.HasPrefix(change, "delins"):
		return KindDelIns
	case strings.HasPrefix(change, "del"):
		return KindDeletion
	case strings.HasPrefix(change, "dup"):
		return KindDuplication
	case strings.HasPrefix(change, "ins"):
		return KindInsertion
	default:
		return KindSubstitution
	}
}
