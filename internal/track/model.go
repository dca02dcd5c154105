package track

// Model is an ordered collection of named annotation tracks. Intervals
// within one track never overlap (AddTrack merges); different tracks may
// overlap each other. Track order is the order of first insertion, so
// iteration is deterministic across runs.
type Model struct {
	order  []string
	tracks map[string][]Interval
}

// NewModel creates an empty annotation model.
func NewModel() *Model {
	return &Model{tracks: make(map[string][]Interval)}
}

// AddTrack adds intervals under the given name. Intervals are validated and
// merged with any already present for that track, so overlapping additions
// never drop basepairs. Adding an empty interval set declares the track.
func (m *Model) AddTrack(name string, ivs []Interval) error {
	for _, iv := range ivs {
		if !iv.valid() {
			return &InvalidRangeError{Start: iv.Start, End: iv.End}
		}
	}
	if _, ok := m.tracks[name]; !ok {
		m.order = append(m.order, name)
	}
	m.tracks[name] = Merge(append(m.tracks[name], ivs...))
	return nil
}

// Track returns the intervals for a track. The returned slice must be
// treated as read-only.
func (m *Model) Track(name string) []Interval {
	return m.tracks[name]
}

// Has returns true if the track has been declared.
func (m *Model) Has(name string) bool {
	_, ok := m.tracks[name]
	return ok
}

// Names returns the track names in declared order.
func (m *Model) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Length returns the total number of positions covered by a track.
// Undeclared tracks have length 0.
func (m *Model) Length(name string) int64 {
	return TotalLength(m.tracks[name])
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	out := NewModel()
	for _, name := range m.order {
		out.order = append(out.order, name)
		ivs := make([]Interval, len(m.tracks[name]))
		copy(ivs, m.tracks[name])
		out.tracks[name] = ivs
	}
	return out
}

// Intersect returns a new model with every track restricted to the given
// region. The receiver is not modified.
func (m *Model) Intersect(region []Interval) *Model {
	out := NewModel()
	for _, name := range m.order {
		out.order = append(out.order, name)
		out.tracks[name] = Intersect(m.tracks[name], region)
	}
	return out
}

// Subtract returns a new model with the given region removed from every
// track. The receiver is not modified.
func (m *Model) Subtract(region []Interval) *Model {
	out := NewModel()
	for _, name := range m.order {
		out.order = append(out.order, name)
		out.tracks[name] = Subtract(m.tracks[name], region)
	}
	return out
}

// Excise returns a new model with the removed slice of the axis cut from
// every track and downstream intervals shifted left. The receiver is not
// modified.
func (m *Model) Excise(removed Interval) *Model {
	out := NewModel()
	for _, name := range m.order {
		out.order = append(out.order, name)
		out.tracks[name] = Excise(m.tracks[name], removed)
	}
	return out
}
