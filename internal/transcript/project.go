package transcript

import (
	"fmt"

	"github.com/genoskip/genoskip/internal/track"
)

// UnmappablePositionError reports a genomic range that touches no exon of
// the transcript: intronic, upstream or downstream positions cannot be
// expressed on the transcript-relative axis.
type UnmappablePositionError struct {
	ID    string
	Start int64
	End   int64
}

func (e *UnmappablePositionError) Error() string {
	return fmt.Sprintf("genomic range [%d, %d) does not map onto transcript %s (intronic or outside the transcript)",
		e.Start, e.End, e.ID)
}

// Project converts a genomic range to transcript-relative coordinates by
// walking the exon block list. A range spanning an exon boundary yields the
// union of all sub-ranges touched. A range that overlaps no exon is an
// *UnmappablePositionError, never a guess.
func (s *Structure) Project(g track.Interval) ([]track.Interval, error) {
	out := s.projectGenomic(g)
	if len(out) == 0 {
		return nil, &UnmappablePositionError{ID: s.ID.String(), Start: g.Start, End: g.End}
	}
	return out, nil
}

// ProjectPosition converts a single genomic position to its
// transcript-relative offset. Intronic positions fail with
// *UnmappablePositionError. Exon lookup is a binary search over the
// genomically sorted block list.
func (s *Structure) ProjectPosition(pos int64) (int64, error) {
	// Exons are in transcript order; on the minus strand that is
	// descending genomic order.
	ascending := s.Strand >= 0
	lo, hi := 0, len(s.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := s.Exons[mid]
		if pos >= e.Start && pos < e.End {
			if ascending {
				return e.Offset + (pos - e.Start), nil
			}
			return e.Offset + (e.End - 1 - pos), nil
		}
		if (ascending && pos < e.Start) || (!ascending && pos >= e.End) {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return 0, &UnmappablePositionError{ID: s.ID.String(), Start: pos, End: pos + 1}
}
