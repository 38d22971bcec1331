package tracestore

type (
	// EventRow is one line of the flat frame-event log. The three
	// latency fields are set only on present-fence rows.
	EventRow struct {
		ID          EventRowID `json:"id"`
		TimestampNS int64      `json:"ts_ns"`
		TrackID     TrackID    `json:"track_id"`
		NameID      StringID   `json:"name"`
		DurNS       int64      `json:"dur_ns"`
		FrameNumber uint32     `json:"frame_number"`
		LayerNameID StringID   `json:"layer_name"`

		QueueToAcquireNS *int64 `json:"queue_to_acquire_ns,omitempty"`
		AcquireToLatchNS *int64 `json:"acquire_to_latch_ns,omitempty"`
		LatchToPresentNS *int64 `json:"latch_to_present_ns,omitempty"`
	}

	// EventRowPatch is the narrow update-in-place capability of the
	// event log: only the fields a later event may legitimately
	// backfill are patchable.
	EventRowPatch struct {
		NameID      *StringID
		FrameNumber *uint32
	}
)

func (s *Store) AppendFrameEvent(row EventRow) EventRowID {
	id := EventRowID(len(s.events))
	row.ID = id
	s.events = append(s.events, row)
	return id
}

// UpdateFrameEvent patches a previously appended row in place.
func (s *Store) UpdateFrameEvent(id EventRowID, patch EventRowPatch) {
	if int(id) >= len(s.events) {
		return
	}
	row := &s.events[id]
	if patch.NameID != nil {
		row.NameID = *patch.NameID
	}
	if patch.FrameNumber != nil {
		row.FrameNumber = *patch.FrameNumber
	}
}

func (s *Store) FrameEvent(id EventRowID) (EventRow, bool) {
	if int(id) >= len(s.events) {
		return EventRow{}, false
	}
	return s.events[id], true
}

func (s *Store) FrameEventCount() int {
	return len(s.events)
}
