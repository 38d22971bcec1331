package frameevent

// EventType identifies one milestone in a graphics buffer's lifecycle.
// Ordinals match the wire enum and must not be reordered.
type EventType uint32

const (
	Unspecified EventType = iota
	Dequeue
	Queue
	Post
	AcquireFence
	Latch
	HwcCompositionQueued
	FallbackComposition
	PresentFence
	ReleaseFence
	Modify
	Detach
	Attach
	Cancel

	eventTypeCount = int(Cancel) + 1
)

// eventTypeNames are the display names recorded in the event log.
var eventTypeNames = [eventTypeCount]string{
	Unspecified:          "unspecified_event",
	Dequeue:              "Dequeue",
	Queue:                "Queue",
	Post:                 "Post",
	AcquireFence:         "AcquireFenceSignaled",
	Latch:                "Latch",
	HwcCompositionQueued: "HWCCompositionQueued",
	FallbackComposition:  "FallbackComposition",
	PresentFence:         "PresentFenceSignaled",
	ReleaseFence:         "ReleaseFenceSignaled",
	Modify:               "Modify",
	Detach:               "Detach",
	Attach:               "Attach",
	Cancel:               "Cancel",
}

const (
	// UnknownEventName is recorded for events whose type is missing or
	// out of range.
	UnknownEventName = "unknown_event"

	// NoLayerName is recorded for events that carry no layer name.
	NoLayerName = "no_layer_name"
)

// BufferEvent is one decoded buffer lifecycle event. Fields are
// pointers so that absence on the wire stays observable; only the
// buffer id is mandatory.
type BufferEvent struct {
	BufferID    *uint32    `json:"buffer_id,omitempty"`
	Type        *EventType `json:"type,omitempty"`
	FrameNumber *uint32    `json:"frame_number,omitempty"`
	LayerName   *string    `json:"layer_name,omitempty"`
	DurationNS  *int64     `json:"duration_ns,omitempty"`
}

// eventType returns the wire value, Unspecified when absent. Out of
// range values are returned as is so they fall through every phase
// transition.
func (ev *BufferEvent) eventType() EventType {
	if ev.Type == nil {
		return Unspecified
	}
	return *ev.Type
}

func (ev *BufferEvent) isType(typ EventType) bool {
	return ev.Type != nil && *ev.Type == typ
}

func (ev *BufferEvent) frameNumber() uint32 {
	if ev.FrameNumber == nil {
		return 0
	}
	return *ev.FrameNumber
}

func (ev *BufferEvent) layerName() string {
	if ev.LayerName == nil {
		return NoLayerName
	}
	return *ev.LayerName
}

func (ev *BufferEvent) durationNS() int64 {
	if ev.DurationNS == nil {
		return 0
	}
	return *ev.DurationNS
}
