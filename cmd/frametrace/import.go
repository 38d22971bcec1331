package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
	"github.com/segmentio/kafka-go"

	"github.com/perfsight/frametrace/internal/importer"
	"github.com/perfsight/frametrace/internal/storageutil"
	"github.com/perfsight/frametrace/internal/tracestore"
)

type importSnapshot struct {
	Summary importer.Summary    `json:"summary"`
	Store   tracestore.Snapshot `json:"store"`
}

func (e *environment) postImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	s := sentry.StartSpan(ctx, "processing")
	s.Description = "Read HTTP body"
	body, err := io.ReadAll(r.Body)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var batch importer.Batch
	s = sentry.StartSpan(ctx, "json.unmarshal")
	s.Description = "Unmarshal frame event batch"
	err = gojson.Unmarshal(body, &batch)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	session := importer.NewSession(batch.TraceID)
	hub.Scope().SetTags(map[string]string{
		"import_id": session.ID,
		"trace_id":  session.TraceID,
	})

	s = sentry.StartSpan(ctx, "processing")
	s.Description = "Ingest frame event batch"
	err = session.Ingest(batch)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	e.sessions.Add(session)

	e.writeJSON(w, hub, http.StatusCreated, session.Summary())
}

func (e *environment) postImportEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	session, ok := e.sessionFromRequest(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var batch importer.Batch
	s := sentry.StartSpan(ctx, "json.unmarshal")
	s.Description = "Unmarshal frame event batch"
	err = gojson.Unmarshal(body, &batch)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s = sentry.StartSpan(ctx, "processing")
	s.Description = "Ingest frame event batch"
	err = session.Ingest(batch)
	s.Finish()
	if err != nil {
		if errors.Is(err, importer.ErrSessionFinalized) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	e.writeJSON(w, hub, http.StatusOK, session.Summary())
}

func (e *environment) postImportFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	session, ok := e.sessionFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := session.Finalize()
	if err != nil {
		if errors.Is(err, importer.ErrSessionFinalized) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s := sentry.StartSpan(ctx, "snapshot.write")
	s.Description = "Write import snapshot"
	err = storageutil.CompressedWrite(ctx, e.snapshots, session.StoragePath(), importSnapshot{
		Summary: summary,
		Store:   session.Snapshot(),
	})
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	b, err := json.Marshal(summary)
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s = sentry.StartSpan(ctx, "processing")
	s.Description = "Send import summary to Kafka"
	err = e.importsWriter.WriteMessages(ctx, kafka.Message{Value: b})
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	e.writeJSON(w, hub, http.StatusOK, summary)
}

func (e *environment) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*importer.Session, bool) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)
	ps := httprouter.ParamsFromContext(ctx)
	importID := ps.ByName("import_id")

	hub.Scope().SetTag("import_id", importID)

	session, err := e.sessions.Get(importID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (e *environment) writeJSON(w http.ResponseWriter, hub *sentry.Hub, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
