package importer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/perfsight/frametrace/internal/frameevent"
	"github.com/perfsight/frametrace/internal/tracestore"
)

var (
	ErrSessionNotFound  = errors.New("import session not found")
	ErrSessionFinalized = errors.New("import session already finalized")
)

type (
	// Batch is one chunk of frame events submitted for import, in
	// production order.
	Batch struct {
		TraceID string  `json:"trace_id,omitempty"`
		Events  []Event `json:"events"`
	}

	// Event is one batch entry: either inline decoded fields or a raw
	// GraphicsFrameEvent payload. The payload wins when both are set.
	Event struct {
		Timestamp int64 `json:"timestamp"`
		frameevent.BufferEvent
		Payload []byte `json:"payload,omitempty"`
	}

	// Session owns the store and parser of one trace import. The lock
	// only serializes HTTP-driven ingest against queries; inside it,
	// events flow one at a time, which is what the parser state
	// assumes.
	Session struct {
		ID       string
		TraceID  string
		Received time.Time

		mu        sync.Mutex
		store     *tracestore.Store
		parser    *frameevent.Parser
		events    int
		finalized bool
	}

	Summary struct {
		ImportID     string  `json:"import_id"`
		TraceID      string  `json:"trace_id,omitempty"`
		Events       int     `json:"events"`
		EventRows    int     `json:"event_rows"`
		Slices       int     `json:"slices"`
		Tracks       int     `json:"tracks"`
		ParseErrors  int64   `json:"parse_errors"`
		DecodeErrors int64   `json:"decode_errors"`
		Received     float64 `json:"received"`
	}
)

func NewSession(traceID string) *Session {
	store := tracestore.New()
	return &Session{
		ID:       uuid.New().String(),
		TraceID:  traceID,
		Received: time.Now().UTC(),
		store:    store,
		parser:   frameevent.NewParser(store),
	}
}

// Ingest feeds every event of the batch through the parser, strictly
// sequentially. Individual events never abort the batch; upstream event
// loss is expected and degrades into counters instead.
func (s *Session) Ingest(batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrSessionFinalized
	}
	for i := range batch.Events {
		e := &batch.Events[i]
		if len(e.Payload) > 0 {
			s.parser.ParseFrameEvent(e.Timestamp, e.Payload)
		} else {
			s.parser.ProcessEvent(e.Timestamp, &e.BufferEvent)
		}
		s.events++
	}
	return nil
}

// Finalize closes the session for ingestion and returns its summary.
func (s *Session) Finalize() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return Summary{}, ErrSessionFinalized
	}
	s.finalized = true
	return s.summaryLocked(), nil
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		ImportID:     s.ID,
		TraceID:      s.TraceID,
		Events:       s.events,
		EventRows:    s.store.FrameEventCount(),
		Slices:       s.store.SliceCount(),
		Tracks:       s.store.TrackCount(),
		ParseErrors:  s.store.StatValue(tracestore.StatFrameEventParserErrors),
		DecodeErrors: s.store.StatValue(tracestore.StatFramePacketDecodeErrors),
		Received:     float64(s.Received.UnixNano()) / 1e9,
	}
}

// Snapshot captures the session's store for persistence.
func (s *Session) Snapshot() tracestore.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// StoragePath is where a finalized session's snapshot lives.
func (s *Session) StoragePath() string {
	return fmt.Sprintf("imports/%s/%s", s.TraceID, s.ID)
}
