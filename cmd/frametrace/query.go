package main

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/getsentry/sentry-go"

	"github.com/perfsight/frametrace/internal/importer"
)

func (e *environment) getImportSlices(w http.ResponseWriter, r *http.Request) {
	hub := sentry.GetHubFromContext(r.Context())

	session, ok := e.sessionFromRequest(w, r)
	if !ok {
		return
	}
	filter, err := queryFilterFromRequest(r.URL.Query())
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	slices := session.QuerySlices(filter)
	if slices == nil {
		slices = []importer.SliceView{}
	}
	e.writeJSON(w, hub, http.StatusOK, slices)
}

func (e *environment) getImportEvents(w http.ResponseWriter, r *http.Request) {
	hub := sentry.GetHubFromContext(r.Context())

	session, ok := e.sessionFromRequest(w, r)
	if !ok {
		return
	}
	filter, err := queryFilterFromRequest(r.URL.Query())
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	events := session.QueryFrameEvents(filter)
	if events == nil {
		events = []importer.EventView{}
	}
	e.writeJSON(w, hub, http.StatusOK, events)
}

func queryFilterFromRequest(params url.Values) (importer.QueryFilter, error) {
	filter := importer.QueryFilter{
		Track:     params.Get("track"),
		LayerName: params.Get("layer_name"),
	}
	if raw := params.Get("frame_number"); raw != "" {
		frameNumber, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return importer.QueryFilter{}, err
		}
		value := uint32(frameNumber)
		filter.FrameNumber = &value
	}
	if raw := params.Get("buffer_id"); raw != "" && filter.Track == "" {
		// A buffer id is shorthand for that buffer's event-log track.
		bufferID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return importer.QueryFilter{}, err
		}
		filter.Track = "Buffer: " + strconv.FormatUint(bufferID, 10)
	}
	return filter, nil
}
