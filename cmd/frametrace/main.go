package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/CAFxX/httpcompression"
	"github.com/dgraph-io/badger/v4"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/perfsight/frametrace/internal/httputil"
	"github.com/perfsight/frametrace/internal/importer"
	"github.com/perfsight/frametrace/internal/logutil"
	"github.com/perfsight/frametrace/internal/storageprovider"
	"github.com/perfsight/frametrace/internal/storageutil"
)

type environment struct {
	config ServiceConfig

	sessions *importer.Registry

	snapshots     storageutil.ObjectHandler
	importsWriter *kafka.Writer

	badgerDB  *badger.DB
	gcsClient *storage.Client
}

var release string

func newEnvironment() (*environment, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := environment{
		config:   config,
		sessions: importer.NewRegistry(),
	}

	if config.SnapshotsBucket != "" {
		e.gcsClient, err = storage.NewClient(context.Background())
		if err != nil {
			return nil, err
		}
		e.snapshots = &storageprovider.Gcs{
			BucketHandle: e.gcsClient.Bucket(config.SnapshotsBucket),
		}
	} else {
		e.badgerDB, err = badger.Open(badger.DefaultOptions(config.BadgerPath))
		if err != nil {
			return nil, err
		}
		e.snapshots = &storageprovider.Badger{DB: e.badgerDB}
	}

	e.importsWriter = &kafka.Writer{
		Addr:         kafka.TCP(config.ImportsKafkaBrokers...),
		Async:        true,
		Balancer:     kafka.CRC32Balancer{},
		BatchSize:    100,
		ReadTimeout:  3 * time.Second,
		Topic:        config.ImportsKafkaTopic,
		WriteTimeout: 3 * time.Second,
	}
	return &e, nil
}

func (e *environment) shutdown() {
	err := e.importsWriter.Close()
	if err != nil {
		sentry.CaptureException(err)
	}
	if e.gcsClient != nil {
		err = e.gcsClient.Close()
		if err != nil {
			sentry.CaptureException(err)
		}
	}
	if e.badgerDB != nil {
		err = e.badgerDB.Close()
		if err != nil {
			sentry.CaptureException(err)
		}
	}
	sentry.Flush(5 * time.Second)
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/health", e.getHealth},
		{http.MethodGet, "/imports/:import_id/events", e.getImportEvents},
		{http.MethodGet, "/imports/:import_id/slices", e.getImportSlices},
		{http.MethodPost, "/imports", e.postImport},
		{http.MethodPost, "/imports/:import_id/events", e.postImportEvents},
		{http.MethodPost, "/imports/:import_id/finalize", e.postImportFinalize},
	}

	router := httprouter.New()

	for _, route := range routes {
		handlerFunc := httputil.DecompressPayload(route.handler)
		handler := compress(handlerFunc)

		router.Handler(route.method, route.path, handler)
	}

	return router, nil
}

func main() {
	logutil.ConfigureLogger()

	env, err := newEnvironment()
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up environment")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              env.config.SentryDSN,
		EnableTracing:    true,
		Environment:      env.config.Environment,
		Release:          release,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}

	router, err := env.newRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + env.config.Port,
		Handler: sentryhttp.New(sentryhttp.Options{}).Handle(router),
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		log.Err(err).Msg("server failed")
	}

	<-waitForShutdown

	// Shutdown the rest of the environment after the HTTP connections are closed
	env.shutdown()
}

func (e *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
