package tracestore

import "testing"

func (s *Store) mustTrack(t *testing.T, name string) TrackID {
	t.Helper()
	return s.InternTrack(s.InternString(name), s.InternString(GraphicsFrameEventScope))
}

func TestEndFrameEventClosesTheOpenSlice(t *testing.T) {
	s := New()
	trackID := s.mustTrack(t, "APP_1")

	id := s.BeginFrameEvent(Slice{StartNS: 100, TrackID: trackID, NameID: s.InternString("100")})

	closed := s.EndFrameEvent(150, trackID, nil)
	if closed == nil || *closed != id {
		t.Fatalf("expected to close slice %d, got %v", id, closed)
	}
	slice, _ := s.Slice(id)
	if slice.DurNS != 50 {
		t.Fatalf("expected a duration of 50, got %d", slice.DurNS)
	}
}

func TestEndFrameEventWithNothingOpen(t *testing.T) {
	s := New()
	trackID := s.mustTrack(t, "APP_1")

	if closed := s.EndFrameEvent(100, trackID, nil); closed != nil {
		t.Fatalf("expected nil, got %v", closed)
	}

	// A slice cannot be closed twice either.
	s.BeginFrameEvent(Slice{StartNS: 100, TrackID: trackID, NameID: s.InternString("100")})
	if closed := s.EndFrameEvent(150, trackID, nil); closed == nil {
		t.Fatal("expected to close the open slice")
	}
	if closed := s.EndFrameEvent(200, trackID, nil); closed != nil {
		t.Fatalf("expected nil on the second close, got %v", closed)
	}
}

func TestEndFrameEventAttachesArgs(t *testing.T) {
	s := New()
	trackID := s.mustTrack(t, "APP_1")
	keyID := s.InternString("Details")
	valueID := s.InternString("some diagnostic")

	id := s.BeginFrameEvent(Slice{StartNS: 100, TrackID: trackID, NameID: s.InternString("100")})
	s.EndFrameEvent(150, trackID, []Arg{{KeyID: keyID, ValueID: valueID}})

	slice, _ := s.Slice(id)
	if len(slice.Args) != 1 || slice.Args[0].KeyID != keyID || slice.Args[0].ValueID != valueID {
		t.Fatalf("expected the diagnostic arg, got %+v", slice.Args)
	}
}

func TestStackIDKeyedOnTrackAndName(t *testing.T) {
	s := New()
	appTrackID := s.mustTrack(t, "APP_1")
	gpuTrackID := s.mustTrack(t, "GPU_1")
	nameID := s.InternString("7")

	a := s.BeginFrameEvent(Slice{StartNS: 100, TrackID: appTrackID, NameID: nameID})
	b := s.BeginFrameEvent(Slice{StartNS: 150, TrackID: gpuTrackID, NameID: nameID})
	s.EndFrameEvent(150, appTrackID, nil)

	sliceA, _ := s.Slice(a)
	sliceB, _ := s.Slice(b)
	if sliceA.StackID == sliceB.StackID {
		t.Fatal("expected distinct stack ids across tracks")
	}

	c := s.BeginFrameEvent(Slice{StartNS: 200, TrackID: appTrackID, NameID: nameID})
	sliceC, _ := s.Slice(c)
	if sliceA.StackID != sliceC.StackID {
		t.Fatal("expected equal stack ids for equal track and name")
	}
}

func TestSetSliceNameRederivesStackID(t *testing.T) {
	s := New()
	trackID := s.mustTrack(t, "APP_1")

	id := s.BeginFrameEvent(Slice{StartNS: 100, TrackID: trackID, NameID: s.InternString("100")})
	before, _ := s.Slice(id)

	s.SetSliceName(id, s.InternString("7"))
	s.SetSliceFrameNumber(id, 7)

	after, _ := s.Slice(id)
	if after.StackID == before.StackID {
		t.Fatal("expected the stack id to change with the name")
	}
	if got := s.LookupString(after.NameID); got != "7" {
		t.Fatalf("expected name %q, got %q", "7", got)
	}
	if after.FrameNumber != 7 {
		t.Fatalf("expected frame number 7, got %d", after.FrameNumber)
	}
}
