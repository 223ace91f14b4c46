package values

// Snapshot is one fetched, immutable copy of all raw device values at a
// point in time.
//
// Entries are keyed by full wire key (model/firmware prefix included) and
// hold raw JSON-decoded values: scalars, or objects with current/absMin/
// absMax/resolution/magnitude substructure depending on kind.
//
// A Snapshot is never mutated; a refresh produces a new Snapshot and a new
// accessor. Missing keys are a normal outcome and are distinguishable from
// present-but-null entries.
type Snapshot struct {
	data map[string]any
}

// NewSnapshot wraps raw device data in an immutable Snapshot.
//
// The map is used as-is; callers must not modify it afterwards.
func NewSnapshot(data map[string]any) *Snapshot {
	if data == nil {
		data = map[string]any{}
	}
	return &Snapshot{data: data}
}

// Get returns the raw entry for a full wire key.
//
// The second return distinguishes a missing key (false) from a
// present-but-null entry (nil, true).
func (s *Snapshot) Get(wireKey string) (any, bool) {
	v, ok := s.data[wireKey]
	return v, ok
}

// Len returns the number of wire keys in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.data)
}
