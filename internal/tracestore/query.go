package tracestore

type (
	// SliceFilter narrows QuerySlices. Nil fields match everything.
	SliceFilter struct {
		TrackID     *TrackID
		LayerName   *string
		FrameNumber *uint32
	}

	// EventFilter narrows QueryFrameEvents. Nil fields match
	// everything.
	EventFilter struct {
		TrackID     *TrackID
		LayerName   *string
		FrameNumber *uint32
	}
)

func (s *Store) QuerySlices(f SliceFilter) []Slice {
	var layerNameID StringID
	if f.LayerName != nil {
		id, ok := s.stringIDs[*f.LayerName]
		if !ok {
			return nil
		}
		layerNameID = id
	}

	var out []Slice
	for _, slice := range s.slices {
		if f.TrackID != nil && slice.TrackID != *f.TrackID {
			continue
		}
		if f.LayerName != nil && slice.LayerNameID != layerNameID {
			continue
		}
		if f.FrameNumber != nil && slice.FrameNumber != *f.FrameNumber {
			continue
		}
		out = append(out, slice)
	}
	return out
}

func (s *Store) SlicesOnTrack(trackID TrackID) []Slice {
	return s.QuerySlices(SliceFilter{TrackID: &trackID})
}

func (s *Store) QueryFrameEvents(f EventFilter) []EventRow {
	var layerNameID StringID
	if f.LayerName != nil {
		id, ok := s.stringIDs[*f.LayerName]
		if !ok {
			return nil
		}
		layerNameID = id
	}

	var out []EventRow
	for _, row := range s.events {
		if f.TrackID != nil && row.TrackID != *f.TrackID {
			continue
		}
		if f.LayerName != nil && row.LayerNameID != layerNameID {
			continue
		}
		if f.FrameNumber != nil && row.FrameNumber != *f.FrameNumber {
			continue
		}
		out = append(out, row)
	}
	return out
}
