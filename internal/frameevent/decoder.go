package frameevent

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedPayload indicates a GraphicsFrameEvent payload that does
// not parse as protobuf wire format.
var ErrMalformedPayload = errors.New("malformed graphics frame event payload")

// Field numbers of the GraphicsFrameEvent message and its BufferEvent
// submessage.
const (
	fieldBufferEvent = 1

	fieldFrameNumber = 1
	fieldType        = 2
	fieldLayerName   = 3
	fieldBufferID    = 4
	fieldDurationNS  = 5
)

// DecodeFrameEvent decodes a raw GraphicsFrameEvent payload into a
// BufferEvent, keeping field presence observable. It returns (nil, nil)
// when the payload carries no buffer_event submessage; unknown fields
// are skipped.
func DecodeFrameEvent(payload []byte) (*BufferEvent, error) {
	var bufferEvent []byte
	seen := false
	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		payload = payload[n:]
		if num == fieldBufferEvent && typ == protowire.BytesType {
			b, n := protowire.ConsumeBytes(payload)
			if n < 0 {
				return nil, ErrMalformedPayload
			}
			bufferEvent, seen = b, true
			payload = payload[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, payload)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		payload = payload[n:]
	}
	if !seen {
		return nil, nil
	}
	return decodeBufferEvent(bufferEvent)
}

func decodeBufferEvent(b []byte) (*BufferEvent, error) {
	var ev BufferEvent
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]

		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformedPayload
			}
			b = b[n:]
			switch num {
			case fieldFrameNumber:
				frameNumber := uint32(v)
				ev.FrameNumber = &frameNumber
			case fieldType:
				eventType := EventType(v)
				ev.Type = &eventType
			case fieldBufferID:
				bufferID := uint32(v)
				ev.BufferID = &bufferID
			case fieldDurationNS:
				durationNS := int64(v)
				ev.DurationNS = &durationNS
			}
			continue
		}
		if num == fieldLayerName && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformedPayload
			}
			b = b[n:]
			layerName := string(v)
			ev.LayerName = &layerName
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
	}
	return &ev, nil
}
