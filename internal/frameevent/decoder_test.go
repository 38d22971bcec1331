package frameevent

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/perfsight/frametrace/internal/testutil"
	"github.com/perfsight/frametrace/internal/tracestore"
)

func appendBufferEvent(dst []byte, ev BufferEvent) []byte {
	var sub []byte
	if ev.FrameNumber != nil {
		sub = protowire.AppendTag(sub, fieldFrameNumber, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(*ev.FrameNumber))
	}
	if ev.Type != nil {
		sub = protowire.AppendTag(sub, fieldType, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(*ev.Type))
	}
	if ev.LayerName != nil {
		sub = protowire.AppendTag(sub, fieldLayerName, protowire.BytesType)
		sub = protowire.AppendString(sub, *ev.LayerName)
	}
	if ev.BufferID != nil {
		sub = protowire.AppendTag(sub, fieldBufferID, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(*ev.BufferID))
	}
	if ev.DurationNS != nil {
		sub = protowire.AppendTag(sub, fieldDurationNS, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(*ev.DurationNS))
	}
	dst = protowire.AppendTag(dst, fieldBufferEvent, protowire.BytesType)
	return protowire.AppendBytes(dst, sub)
}

func TestDecodeFrameEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   BufferEvent
	}{
		{
			name: "all fields",
			ev: BufferEvent{
				BufferID:    uint32Ptr(7),
				Type:        eventTypePtr(Queue),
				FrameNumber: uint32Ptr(42),
				LayerName:   stringPtr("SurfaceView"),
				DurationNS:  int64Ptr(1250),
			},
		},
		{
			name: "buffer id only",
			ev:   BufferEvent{BufferID: uint32Ptr(3)},
		},
		{
			name: "absent buffer id stays absent",
			ev:   BufferEvent{Type: eventTypePtr(Dequeue)},
		},
		{
			name: "zero values survive with presence",
			ev: BufferEvent{
				BufferID:    uint32Ptr(0),
				Type:        eventTypePtr(Unspecified),
				FrameNumber: uint32Ptr(0),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload := appendBufferEvent(nil, test.ev)
			got, err := DecodeFrameEvent(payload)
			if err != nil {
				t.Fatal(err)
			}
			if diff := testutil.Diff(got, &test.ev); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestDecodeFrameEventWithoutBufferEvent(t *testing.T) {
	// An unrelated field only: no buffer event to import.
	payload := protowire.AppendTag(nil, 9, protowire.VarintType)
	payload = protowire.AppendVarint(payload, 1)

	ev, err := DecodeFrameEvent(payload)
	if err != nil {
		t.Fatal(err)
	}
	if ev != nil {
		t.Fatalf("expected no event, got %+v", ev)
	}
}

func TestDecodeFrameEventSkipsUnknownFields(t *testing.T) {
	var sub []byte
	sub = protowire.AppendTag(sub, fieldBufferID, protowire.VarintType)
	sub = protowire.AppendVarint(sub, 9)
	// A future field the decoder does not know about.
	sub = protowire.AppendTag(sub, 15, protowire.BytesType)
	sub = protowire.AppendString(sub, "ignored")

	payload := protowire.AppendTag(nil, fieldBufferEvent, protowire.BytesType)
	payload = protowire.AppendBytes(payload, sub)

	ev, err := DecodeFrameEvent(payload)
	if err != nil {
		t.Fatal(err)
	}
	if ev == nil || ev.BufferID == nil || *ev.BufferID != 9 {
		t.Fatalf("expected buffer id 9, got %+v", ev)
	}
}

func TestDecodeFrameEventMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "truncated tag", payload: []byte{0x80}},
		{name: "truncated submessage", payload: []byte{0x0a, 0x05, 0x20}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeFrameEvent(test.payload)
			if err == nil {
				t.Fatal("expected a decode error")
			}
		})
	}
}

func TestParseFrameEventCountsDecodeErrors(t *testing.T) {
	store := tracestore.New()
	p := NewParser(store)

	p.ParseFrameEvent(100, []byte{0x80})

	if got := store.StatValue(tracestore.StatFramePacketDecodeErrors); got != 1 {
		t.Fatalf("expected 1 decode error, got %d", got)
	}
	if got := store.FrameEventCount(); got != 0 {
		t.Fatalf("expected no event rows, got %d", got)
	}
}

func TestParseFrameEventEndToEnd(t *testing.T) {
	store := tracestore.New()
	p := NewParser(store)

	payload := appendBufferEvent(nil, BufferEvent{
		BufferID: uint32Ptr(1),
		Type:     eventTypePtr(Dequeue),
	})
	p.ParseFrameEvent(100, payload)

	if got := store.FrameEventCount(); got != 1 {
		t.Fatalf("expected 1 event row, got %d", got)
	}
	if got := store.SliceCount(); got != 1 {
		t.Fatalf("expected 1 slice, got %d", got)
	}
}
