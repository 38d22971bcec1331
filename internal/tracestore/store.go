package tracestore

// GraphicsFrameEventScope is the track scope under which every track
// produced by the frame-event importer is registered.
const GraphicsFrameEventScope = "graphics_frame_event"

type (
	StringID   uint32
	TrackID    uint32
	SliceID    uint32
	EventRowID uint32
)

type Stat string

const (
	StatFrameEventParserErrors  Stat = "graphics_frame_event_parser_errors"
	StatFramePacketDecodeErrors Stat = "graphics_frame_packet_decode_errors"
)

type (
	// Store holds every row produced while importing one trace. It is
	// owned by a single import session and is mutated without locking:
	// the session feeds it one event at a time.
	Store struct {
		strings   []string
		stringIDs map[string]StringID

		tracks   []Track
		trackIDs map[trackKey]TrackID

		slices           []Slice
		openSliceByTrack map[TrackID]SliceID

		events []EventRow

		stats map[Stat]int64
	}

	Track struct {
		ID      TrackID  `json:"id"`
		NameID  StringID `json:"name"`
		ScopeID StringID `json:"scope"`
	}

	trackKey struct {
		nameID  StringID
		scopeID StringID
	}
)

func New() *Store {
	return &Store{
		stringIDs:        make(map[string]StringID),
		trackIDs:         make(map[trackKey]TrackID),
		openSliceByTrack: make(map[TrackID]SliceID),
		stats:            make(map[Stat]int64),
	}
}

// InternString returns a session-stable id for s, allocating one on
// first use.
func (s *Store) InternString(str string) StringID {
	if id, ok := s.stringIDs[str]; ok {
		return id
	}
	id := StringID(len(s.strings))
	s.strings = append(s.strings, str)
	s.stringIDs[str] = id
	return id
}

func (s *Store) LookupString(id StringID) string {
	if int(id) >= len(s.strings) {
		return ""
	}
	return s.strings[id]
}

// InternTrack returns the track registered under (name, scope),
// creating it on first use.
func (s *Store) InternTrack(nameID, scopeID StringID) TrackID {
	key := trackKey{nameID: nameID, scopeID: scopeID}
	if id, ok := s.trackIDs[key]; ok {
		return id
	}
	id := TrackID(len(s.tracks))
	s.tracks = append(s.tracks, Track{ID: id, NameID: nameID, ScopeID: scopeID})
	s.trackIDs[key] = id
	return id
}

func (s *Store) Track(id TrackID) (Track, bool) {
	if int(id) >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[id], true
}

// TrackByName resolves a track by its display name and scope without
// creating it.
func (s *Store) TrackByName(name, scope string) (TrackID, bool) {
	nameID, ok := s.stringIDs[name]
	if !ok {
		return 0, false
	}
	scopeID, ok := s.stringIDs[scope]
	if !ok {
		return 0, false
	}
	id, ok := s.trackIDs[trackKey{nameID: nameID, scopeID: scopeID}]
	return id, ok
}

func (s *Store) TrackCount() int {
	return len(s.tracks)
}

func (s *Store) IncrementStat(stat Stat) {
	s.stats[stat]++
}

func (s *Store) StatValue(stat Stat) int64 {
	return s.stats[stat]
}
