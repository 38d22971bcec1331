package frameevent

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/perfsight/frametrace/internal/tracestore"
)

// queueLostMessage annotates an app slice that had to be closed by a
// latch because its queue event never arrived.
const queueLostMessage = "Missing queue event. The slice is now a bit extended than it might actually have been"

// Parser turns a stream of buffer events into the flat frame-event log
// and the per-buffer/per-layer phase slices. One parser serves one
// trace import and is fed strictly sequentially.
//
// Phases derived from the events:
//
//	APP: Dequeue to Queue
//	Wait for GPU: Queue to AcquireFence
//	SF: Latch to PresentFence
//	Display: PresentFence to the next PresentFence of the same layer
type Parser struct {
	store *tracestore.Store

	scopeID            tracestore.StringID
	unknownEventNameID tracestore.StringID
	detailsKeyID       tracestore.StringID
	queueLostMessageID tracestore.StringID
	eventTypeNameIDs   [eventTypeCount]tracestore.StringID

	// lastSeenNS holds, per buffer, the last timestamp each valid event
	// type was observed at. Never pruned: buffer ids are bounded by the
	// hardware buffer pool.
	lastSeenNS map[uint32]*[eventTypeCount]int64

	// dequeueRowIDs remembers each buffer's latest dequeue row so a
	// later queue can backfill the frame number it did not have yet.
	dequeueRowIDs map[uint32]tracestore.EventRowID

	// Open phase tracks, at most one slice in flight per key.
	appOpen     map[uint32]tracestore.TrackID
	gpuOpen     map[uint32]tracestore.TrackID
	sfOpen      map[uint32]tracestore.TrackID
	displayOpen map[tracestore.StringID]tracestore.TrackID

	lastDequeuedNS map[uint32]int64
	lastAcquiredNS map[uint32]int64
}

func NewParser(store *tracestore.Store) *Parser {
	p := &Parser{
		store:              store,
		scopeID:            store.InternString(tracestore.GraphicsFrameEventScope),
		unknownEventNameID: store.InternString(UnknownEventName),
		detailsKeyID:       store.InternString("Details"),
		queueLostMessageID: store.InternString(queueLostMessage),
		lastSeenNS:         make(map[uint32]*[eventTypeCount]int64),
		dequeueRowIDs:      make(map[uint32]tracestore.EventRowID),
		appOpen:            make(map[uint32]tracestore.TrackID),
		gpuOpen:            make(map[uint32]tracestore.TrackID),
		sfOpen:             make(map[uint32]tracestore.TrackID),
		displayOpen:        make(map[tracestore.StringID]tracestore.TrackID),
		lastDequeuedNS:     make(map[uint32]int64),
		lastAcquiredNS:     make(map[uint32]int64),
	}
	for typ, name := range eventTypeNames {
		p.eventTypeNameIDs[typ] = store.InternString(name)
	}
	return p
}

// ParseFrameEvent decodes one raw GraphicsFrameEvent packet and runs
// it through the parser. Packets without a buffer event are skipped.
func (p *Parser) ParseFrameEvent(ts int64, payload []byte) {
	ev, err := DecodeFrameEvent(payload)
	if err != nil {
		p.store.IncrementStat(tracestore.StatFramePacketDecodeErrors)
		log.Error().Err(err).Msg("dropping undecodable frame event packet")
		return
	}
	if ev == nil {
		return
	}
	p.ProcessEvent(ts, ev)
}

// ProcessEvent records one event in the flat log and, if recording
// succeeded, advances the phase state machine with it.
func (p *Parser) ProcessEvent(ts int64, ev *BufferEvent) {
	if p.RecordEvent(ts, ev) {
		p.AdvancePhases(ts, ev)
	}
}

// RecordEvent appends one row to the frame-event log. It reports false
// only when the event has no buffer id, in which case the event must
// not advance the phase machine either.
func (p *Parser) RecordEvent(ts int64, ev *BufferEvent) bool {
	if ev.BufferID == nil {
		p.store.IncrementStat(tracestore.StatFrameEventParserErrors)
		log.Error().Msg("frame event with missing buffer id field")
		return false
	}
	bufferID := *ev.BufferID

	eventNameID := p.unknownEventNameID
	if ev.Type != nil {
		if typ := *ev.Type; int(typ) < eventTypeCount {
			eventNameID = p.eventTypeNameIDs[typ]
			p.lastSeenFor(bufferID)[typ] = ts
		} else {
			p.store.IncrementStat(tracestore.StatFrameEventParserErrors)
			log.Error().Uint32("type", uint32(typ)).Msg("frame event with unknown type")
		}
	} else {
		p.store.IncrementStat(tracestore.StatFrameEventParserErrors)
		log.Error().Msg("frame event with missing type field")
	}

	row := tracestore.EventRow{
		TimestampNS: ts,
		TrackID:     p.internBufferTrack(bufferID),
		NameID:      eventNameID,
		DurNS:       ev.durationNS(),
		FrameNumber: ev.frameNumber(),
		LayerNameID: p.store.InternString(ev.layerName()),
	}

	if ev.isType(PresentFence) {
		// Best effort: any milestone never seen for this buffer
		// defaults to 0, so a dropped event shows up as a nonsensical
		// delta rather than a missing row.
		seen := p.lastSeenFor(bufferID)
		acquireTS := seen[AcquireFence]
		queueTS := seen[Queue]
		latchTS := seen[Latch]

		queueToAcquire := acquireTS - queueTS
		if queueToAcquire < 0 {
			queueToAcquire = 0
		}
		acquireToLatch := latchTS - acquireTS
		latchToPresent := ts - latchTS
		row.QueueToAcquireNS = &queueToAcquire
		row.AcquireToLatchNS = &acquireToLatch
		row.LatchToPresentNS = &latchToPresent
	}

	rowID := p.store.AppendFrameEvent(row)
	switch {
	case ev.isType(Dequeue):
		p.dequeueRowIDs[bufferID] = rowID
	case ev.isType(Queue):
		if dequeueRowID, ok := p.dequeueRowIDs[bufferID]; ok {
			frameNumber := ev.frameNumber()
			p.store.UpdateFrameEvent(dequeueRowID, tracestore.EventRowPatch{
				FrameNumber: &frameNumber,
			})
		}
	}
	return true
}

// AdvancePhases closes and opens phase slices for one event. Call it
// only after RecordEvent accepted the same event.
func (p *Parser) AdvancePhases(ts int64, ev *BufferEvent) {
	bufferID := *ev.BufferID
	frameNumber := ev.frameNumber()
	layerName := ev.layerName()
	layerNameID := p.store.InternString(layerName)

	startSlice := true
	var trackID tracestore.TrackID

	// Close the previous phase before starting the new one.
	switch ev.eventType() {
	case Dequeue:
		trackID = p.internPhaseTrack("APP_", bufferID)
		p.appOpen[bufferID] = trackID
		p.lastDequeuedNS[bufferID] = ts

	case Queue:
		if appTrackID, ok := p.appOpen[bufferID]; ok {
			if sliceID := p.store.EndFrameEvent(ts, appTrackID, nil); sliceID != nil {
				// The dequeue had no frame number to name its slice
				// with; the queue finally does.
				p.renameSlice(*sliceID, frameNumber)
				delete(p.appOpen, bufferID)
			}
		}
		// The acquire fence can signal before the queue event arrives.
		// There is no GPU wait to plot in that case.
		if p.lastAcquiredNS[bufferID] > p.lastDequeuedNS[bufferID] &&
			p.lastAcquiredNS[bufferID] < ts {
			startSlice = false
			break
		}
		trackID = p.internPhaseTrack("GPU_", bufferID)
		p.gpuOpen[bufferID] = trackID

	case AcquireFence:
		if gpuTrackID, ok := p.gpuOpen[bufferID]; ok {
			p.store.EndFrameEvent(ts, gpuTrackID, nil)
			delete(p.gpuOpen, bufferID)
		}
		p.lastAcquiredNS[bufferID] = ts
		startSlice = false

	case Latch:
		// The queue event sometimes goes missing upstream. Close any
		// app slice still open so it does not dangle, and mark it.
		if appTrackID, ok := p.appOpen[bufferID]; ok {
			args := []tracestore.Arg{{KeyID: p.detailsKeyID, ValueID: p.queueLostMessageID}}
			if sliceID := p.store.EndFrameEvent(ts, appTrackID, args); sliceID != nil {
				p.renameSlice(*sliceID, frameNumber)
				delete(p.appOpen, bufferID)
			}
		}
		trackID = p.internPhaseTrack("SF_", bufferID)
		p.sfOpen[bufferID] = trackID

	case PresentFence:
		if sfTrackID, ok := p.sfOpen[bufferID]; ok {
			p.store.EndFrameEvent(ts, sfTrackID, nil)
			delete(p.sfOpen, bufferID)
		}
		if displayTrackID, ok := p.displayOpen[layerNameID]; ok {
			p.store.EndFrameEvent(ts, displayTrackID, nil)
			delete(p.displayOpen, layerNameID)
		}
		trackID = p.internDisplayTrack(layerName)
		p.displayOpen[layerNameID] = trackID

	default:
		startSlice = false
	}

	if !startSlice {
		return
	}
	p.store.BeginFrameEvent(tracestore.Slice{
		StartNS:     ts,
		TrackID:     trackID,
		NameID:      p.provisionalSliceNameID(frameNumber, ts),
		FrameNumber: frameNumber,
		LayerNameID: layerNameID,
	})
}

func (p *Parser) lastSeenFor(bufferID uint32) *[eventTypeCount]int64 {
	seen, ok := p.lastSeenNS[bufferID]
	if !ok {
		seen = new([eventTypeCount]int64)
		p.lastSeenNS[bufferID] = seen
	}
	return seen
}

func (p *Parser) internBufferTrack(bufferID uint32) tracestore.TrackID {
	nameID := p.store.InternString("Buffer: " + strconv.FormatUint(uint64(bufferID), 10))
	return p.store.InternTrack(nameID, p.scopeID)
}

func (p *Parser) internPhaseTrack(prefix string, bufferID uint32) tracestore.TrackID {
	nameID := p.store.InternString(prefix + strconv.FormatUint(uint64(bufferID), 10))
	return p.store.InternTrack(nameID, p.scopeID)
}

// internDisplayTrack keys the display track on the first 10 bytes of
// the layer name. Distinct layers sharing that prefix alias onto one
// track.
func (p *Parser) internDisplayTrack(layerName string) tracestore.TrackID {
	if len(layerName) > 10 {
		layerName = layerName[:10]
	}
	nameID := p.store.InternString("Display_" + layerName)
	return p.store.InternTrack(nameID, p.scopeID)
}

// renameSlice sets a closed app slice's name and frame number to the
// frame number learned after the slice was opened.
func (p *Parser) renameSlice(id tracestore.SliceID, frameNumber uint32) {
	nameID := p.store.InternString(strconv.FormatUint(uint64(frameNumber), 10))
	p.store.SetSliceName(id, nameID)
	p.store.SetSliceFrameNumber(id, frameNumber)
}

// provisionalSliceNameID names a new slice after its frame number when
// one is known. A slice opened by a dequeue has no frame number yet and
// is named after its timestamp instead: the stack id downstream is
// hashed from the name, and the unique timestamp keeps concurrently
// open unnumbered slices from colliding.
func (p *Parser) provisionalSliceNameID(frameNumber uint32, ts int64) tracestore.StringID {
	if frameNumber != 0 {
		return p.store.InternString(strconv.FormatUint(uint64(frameNumber), 10))
	}
	return p.store.InternString(strconv.FormatInt(ts, 10))
}
