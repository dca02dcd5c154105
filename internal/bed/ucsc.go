package bed

import (
	"fmt"
	"strconv"
	"strings"
)

// UCSCTrackEntry is one feature from the UCSC getData/track API. Block
// sizes and starts arrive as trailing-comma separated strings, and the
// relative block starts are named chromStarts in this payload.
type UCSCTrackEntry struct {
	Chrom       string `json:"chrom"`
	ChromStart  int64  `json:"chromStart"`
	ChromEnd    int64  `json:"chromEnd"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Strand      string `json:"strand"`
	ThickStart  int64  `json:"thickStart"`
	ThickEnd    int64  `json:"thickEnd"`
	BlockCount  int    `json:"blockCount"`
	BlockSizes  string `json:"blockSizes"`
	ChromStarts string `json:"chromStarts"`
}

// FromUCSC converts a UCSC track entry into a validated Record.
func FromUCSC(e *UCSCTrackEntry) (*Record, error) {
	sizes, err := parseIntList(e.BlockSizes)
	if err != nil {
		return nil, &MalformedStructureError{Name: e.Name, Reason: fmt.Sprintf("blockSizes: %v", err)}
	}
	starts, err := parseIntList(e.ChromStarts)
	if err != nil {
		return nil, &MalformedStructureError{Name: e.Name, Reason: fmt.Sprintf("chromStarts: %v", err)}
	}

	r := &Record{
		Chrom:       e.Chrom,
		ChromStart:  e.ChromStart,
		ChromEnd:    e.ChromEnd,
		Name:        e.Name,
		Score:       e.Score,
		Strand:      e.Strand,
		ThickStart:  e.ThickStart,
		ThickEnd:    e.ThickEnd,
		BlockCount:  e.BlockCount,
		BlockSizes:  sizes,
		BlockStarts: starts,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseIntList parses a comma-separated integer list, tolerating the
// trailing comma UCSC emits ("200,700,").
func parseIntList(s string) ([]int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}
