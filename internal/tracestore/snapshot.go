package tracestore

type (
	// Snapshot is the persistable form of a store, written out when an
	// import session is finalized.
	Snapshot struct {
		Strings []string       `json:"strings"`
		Tracks  []Track        `json:"tracks"`
		Slices  []Slice        `json:"slices"`
		Events  []EventRow     `json:"events"`
		Stats   map[Stat]int64 `json:"stats,omitempty"`
	}
)

func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Strings: append([]string(nil), s.strings...),
		Tracks:  append([]Track(nil), s.tracks...),
		Slices:  append([]Slice(nil), s.slices...),
		Events:  append([]EventRow(nil), s.events...),
	}
	if len(s.stats) > 0 {
		snap.Stats = make(map[Stat]int64, len(s.stats))
		for k, v := range s.stats {
			snap.Stats[k] = v
		}
	}
	return snap
}
