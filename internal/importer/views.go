package importer

import "github.com/perfsight/frametrace/internal/tracestore"

type (
	// SliceView is a phase slice with every interned id resolved, the
	// shape query responses are serialized from.
	SliceView struct {
		StartNS     int64             `json:"start_ns"`
		DurNS       int64             `json:"dur_ns"`
		Track       string            `json:"track"`
		Name        string            `json:"name"`
		FrameNumber uint32            `json:"frame_number"`
		LayerName   string            `json:"layer_name"`
		StackID     uint64            `json:"stack_id"`
		Args        map[string]string `json:"args,omitempty"`
	}

	EventView struct {
		TimestampNS int64  `json:"ts_ns"`
		Track       string `json:"track"`
		Name        string `json:"name"`
		DurNS       int64  `json:"dur_ns"`
		FrameNumber uint32 `json:"frame_number"`
		LayerName   string `json:"layer_name"`

		QueueToAcquireNS *int64 `json:"queue_to_acquire_ns,omitempty"`
		AcquireToLatchNS *int64 `json:"acquire_to_latch_ns,omitempty"`
		LatchToPresentNS *int64 `json:"latch_to_present_ns,omitempty"`
	}

	// QueryFilter narrows slice and event queries. Zero values match
	// everything.
	QueryFilter struct {
		Track       string
		LayerName   string
		FrameNumber *uint32
	}
)

func (s *Session) QuerySlices(f QueryFilter) []SliceView {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter := tracestore.SliceFilter{FrameNumber: f.FrameNumber}
	if f.LayerName != "" {
		layerName := f.LayerName
		filter.LayerName = &layerName
	}
	if f.Track != "" {
		trackID, ok := s.store.TrackByName(f.Track, tracestore.GraphicsFrameEventScope)
		if !ok {
			return nil
		}
		filter.TrackID = &trackID
	}

	slices := s.store.QuerySlices(filter)
	views := make([]SliceView, 0, len(slices))
	for _, slice := range slices {
		views = append(views, s.sliceView(slice))
	}
	return views
}

func (s *Session) QueryFrameEvents(f QueryFilter) []EventView {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter := tracestore.EventFilter{FrameNumber: f.FrameNumber}
	if f.LayerName != "" {
		layerName := f.LayerName
		filter.LayerName = &layerName
	}
	if f.Track != "" {
		trackID, ok := s.store.TrackByName(f.Track, tracestore.GraphicsFrameEventScope)
		if !ok {
			return nil
		}
		filter.TrackID = &trackID
	}

	rows := s.store.QueryFrameEvents(filter)
	views := make([]EventView, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.eventView(row))
	}
	return views
}

func (s *Session) sliceView(slice tracestore.Slice) SliceView {
	view := SliceView{
		StartNS:     slice.StartNS,
		DurNS:       slice.DurNS,
		Name:        s.store.LookupString(slice.NameID),
		FrameNumber: slice.FrameNumber,
		LayerName:   s.store.LookupString(slice.LayerNameID),
		StackID:     slice.StackID,
	}
	if track, ok := s.store.Track(slice.TrackID); ok {
		view.Track = s.store.LookupString(track.NameID)
	}
	if len(slice.Args) > 0 {
		view.Args = make(map[string]string, len(slice.Args))
		for _, arg := range slice.Args {
			view.Args[s.store.LookupString(arg.KeyID)] = s.store.LookupString(arg.ValueID)
		}
	}
	return view
}

func (s *Session) eventView(row tracestore.EventRow) EventView {
	view := EventView{
		TimestampNS:      row.TimestampNS,
		Name:             s.store.LookupString(row.NameID),
		DurNS:            row.DurNS,
		FrameNumber:      row.FrameNumber,
		LayerName:        s.store.LookupString(row.LayerNameID),
		QueueToAcquireNS: row.QueueToAcquireNS,
		AcquireToLatchNS: row.AcquireToLatchNS,
		LatchToPresentNS: row.LatchToPresentNS,
	}
	if track, ok := s.store.Track(row.TrackID); ok {
		view.Track = s.store.LookupString(track.NameID)
	}
	return view
}
