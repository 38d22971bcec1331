package tracestore

import "hash/fnv"

type (
	// Slice is one phase interval laid out on a track.
	Slice struct {
		ID          SliceID  `json:"id"`
		StartNS     int64    `json:"start_ns"`
		DurNS       int64    `json:"dur_ns"`
		TrackID     TrackID  `json:"track_id"`
		NameID      StringID `json:"name"`
		FrameNumber uint32   `json:"frame_number"`
		LayerNameID StringID `json:"layer_name"`
		StackID     uint64   `json:"stack_id"`
		Args        []Arg    `json:"args,omitempty"`
	}

	// Arg is a string-valued key attached to a slice when it is closed.
	Arg struct {
		KeyID   StringID `json:"key"`
		ValueID StringID `json:"value"`
	}
)

// durOpen marks a slice whose end has not been observed yet.
const durOpen = int64(-1)

// BeginFrameEvent opens a slice on its track. Only one slice may be
// open per track: an unclosed predecessor stays in the table with an
// open duration but can no longer be ended.
func (s *Store) BeginFrameEvent(slice Slice) SliceID {
	id := SliceID(len(s.slices))
	slice.ID = id
	slice.DurNS = durOpen
	slice.StackID = s.sliceStackID(slice.TrackID, slice.NameID)
	s.slices = append(s.slices, slice)
	s.openSliceByTrack[slice.TrackID] = id
	return id
}

// EndFrameEvent closes the open slice on trackID at ts, attaching args
// to it. It returns nil when nothing is open on that track, which is
// how callers detect that an end event arrived without a matching
// begin.
func (s *Store) EndFrameEvent(ts int64, trackID TrackID, args []Arg) *SliceID {
	id, ok := s.openSliceByTrack[trackID]
	if !ok {
		return nil
	}
	delete(s.openSliceByTrack, trackID)
	slice := &s.slices[id]
	slice.DurNS = ts - slice.StartNS
	slice.Args = append(slice.Args, args...)
	return &id
}

// SetSliceName renames a closed or open slice and re-derives its stack
// identity, since the identity is keyed on the name.
func (s *Store) SetSliceName(id SliceID, nameID StringID) {
	slice := &s.slices[id]
	slice.NameID = nameID
	slice.StackID = s.sliceStackID(slice.TrackID, nameID)
}

func (s *Store) SetSliceFrameNumber(id SliceID, frameNumber uint32) {
	s.slices[id].FrameNumber = frameNumber
}

func (s *Store) Slice(id SliceID) (Slice, bool) {
	if int(id) >= len(s.slices) {
		return Slice{}, false
	}
	return s.slices[id], true
}

func (s *Store) SliceCount() int {
	return len(s.slices)
}

// sliceStackID hashes the track and slice names into the identity used
// to group slices across a trace. Two slices on the same track with the
// same name collide on purpose; the importer relies on this when it
// names provisional slices after their timestamp.
func (s *Store) sliceStackID(trackID TrackID, nameID StringID) uint64 {
	h := fnv.New64a()
	if track, ok := s.Track(trackID); ok {
		h.Write([]byte(s.LookupString(track.NameID)))
	}
	h.Write([]byte{0})
	h.Write([]byte(s.LookupString(nameID)))
	return h.Sum64()
}
