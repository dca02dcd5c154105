// Package bed provides the 12-column block-based structural record used to
// describe a transcript: a chromosome span plus a list of exonic blocks,
// with thick bounds marking the coding region.
package bed

import (
	"fmt"

	"github.com/genoskip/genoskip/internal/track"
)

// Record is a BED12 feature. Block starts are relative to ChromStart, as in
// the BED specification.
type Record struct {
	Chrom      string
	ChromStart int64
	ChromEnd   int64
	Name       string
	Score      int
	Strand     string
	ThickStart int64
	ThickEnd   int64

	BlockCount  int
	BlockSizes  []int64
	BlockStarts []int64
}

// MalformedStructureError reports a structural record whose blocks are
// inconsistent. It is fatal for the request: a malformed record is never
// silently repaired.
type MalformedStructureError struct {
	Name   string
	Reason string
}

func (e *MalformedStructureError) Error() string {
	return fmt.Sprintf("malformed structure %q: %s", e.Name, e.Reason)
}

// New creates a single-block record spanning [start, end), with the BED
// defaults filled in (thick bounds equal to the span, one block covering
// the whole feature).
func New(chrom string, start, end int64) *Record {
	r := &Record{
		Chrom:      chrom,
		ChromStart: start,
		ChromEnd:   end,
		Name:       ".",
		Strand:     ".",
		ThickStart: start,
		ThickEnd:   end,
	}
	r.BlockCount = 1
	r.BlockSizes = []int64{end - start}
	r.BlockStarts = []int64{0}
	return r
}

// FromBlocks builds a record from explicit genomic (start, end) block
// pairs. The span is derived from the first and last block.
func FromBlocks(chrom string, blocks ...track.Interval) (*Record, error) {
	if len(blocks) == 0 {
		return nil, &MalformedStructureError{Name: chrom, Reason: "no blocks"}
	}
	r := New(chrom, blocks[0].Start, blocks[len(blocks)-1].End)
	r.BlockCount = len(blocks)
	r.BlockSizes = make([]int64, len(blocks))
	r.BlockStarts = make([]int64, len(blocks))
	for i, b := range blocks {
		r.BlockSizes[i] = b.Len()
		r.BlockStarts[i] = b.Start - r.ChromStart
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks block consistency: the declared count matches the size
// and start lists, blocks are sorted and non-overlapping, and the blocks
// exactly cover the declared span at both ends (the BED12 span rule).
func (r *Record) Validate() error {
	fail := func(format string, args ...any) error {
		return &MalformedStructureError{Name: r.Name, Reason: fmt.Sprintf(format, args...)}
	}

	if r.ChromStart < 0 || r.ChromStart > r.ChromEnd {
		return fail("span [%d, %d) is invalid", r.ChromStart, r.ChromEnd)
	}
	if r.BlockCount != len(r.BlockSizes) || r.BlockCount != len(r.BlockStarts) {
		return fail("block count %d does not match %d sizes / %d starts",
			r.BlockCount, len(r.BlockSizes), len(r.BlockStarts))
	}
	if r.BlockCount == 0 {
		return fail("no blocks")
	}
	if r.BlockStarts[0] != 0 {
		return fail("first block starts at offset %d, want 0", r.BlockStarts[0])
	}

	var prevEnd int64
	for i := range r.BlockCount {
		start := r.BlockStarts[i]
		size := r.BlockSizes[i]
		if size <= 0 {
			return fail("block %d has size %d", i, size)
		}
		if i > 0 && start < prevEnd {
			return fail("block %d overlaps or is out of order", i)
		}
		prevEnd = start + size
	}
	if span := r.ChromEnd - r.ChromStart; prevEnd != span {
		return fail("blocks end at offset %d, span is %d", prevEnd, span)
	}
	return nil
}

// Blocks returns the genomic half-open intervals covered by the record's
// blocks, in ascending genomic order.
func (r *Record) Blocks() []track.Interval {
	out := make([]track.Interval, r.BlockCount)
	for i := range r.BlockCount {
		start := r.ChromStart + r.BlockStarts[i]
		out[i] = track.Interval{Start: start, End: start + r.BlockSizes[i]}
	}
	return out
}

// MappedLength returns the sum of the block lengths: the transcript's total
// mapped length.
func (r *Record) MappedLength() int64 {
	var total int64
	for _, size := range r.BlockSizes {
		total += size
	}
	return total
}

// IsCoding returns true if the record declares a non-empty thick (CDS)
// region.
func (r *Record) IsCoding() bool {
	return r.ThickStart < r.ThickEnd
}
