package tracestore

import "testing"

func TestInternStringIsStable(t *testing.T) {
	s := New()

	a := s.InternString("Buffer: 1")
	b := s.InternString("Buffer: 2")
	if a == b {
		t.Fatal("expected distinct ids for distinct strings")
	}
	if got := s.InternString("Buffer: 1"); got != a {
		t.Fatalf("expected stable id %d, got %d", a, got)
	}
	if got := s.LookupString(a); got != "Buffer: 1" {
		t.Fatalf("expected to round-trip the string, got %q", got)
	}
}

func TestInternTrackDedupsByNameAndScope(t *testing.T) {
	s := New()
	nameID := s.InternString("APP_1")
	scopeID := s.InternString(GraphicsFrameEventScope)
	otherScopeID := s.InternString("another_scope")

	first := s.InternTrack(nameID, scopeID)
	if got := s.InternTrack(nameID, scopeID); got != first {
		t.Fatalf("expected the same track id, got %d and %d", first, got)
	}
	if got := s.InternTrack(nameID, otherScopeID); got == first {
		t.Fatal("expected a different track for a different scope")
	}

	if id, ok := s.TrackByName("APP_1", GraphicsFrameEventScope); !ok || id != first {
		t.Fatalf("expected to look the track up by name, got (%d, %t)", id, ok)
	}
	if _, ok := s.TrackByName("GPU_1", GraphicsFrameEventScope); ok {
		t.Fatal("expected no track under an uninterned name")
	}
}

func TestStats(t *testing.T) {
	s := New()
	if got := s.StatValue(StatFrameEventParserErrors); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	s.IncrementStat(StatFrameEventParserErrors)
	s.IncrementStat(StatFrameEventParserErrors)
	if got := s.StatValue(StatFrameEventParserErrors); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
