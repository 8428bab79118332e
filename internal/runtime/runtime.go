// Package runtime wires configuration, telemetry, the optional event bus and
// audit store, and the conversation pipeline into one HTTP-serving process.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m0shaban/ai-virtual-teacher/internal/bus"
	"github.com/m0shaban/ai-virtual-teacher/internal/config"
	"github.com/m0shaban/ai-virtual-teacher/internal/eventstore"
	"github.com/m0shaban/ai-virtual-teacher/internal/gateway"
	"github.com/m0shaban/ai-virtual-teacher/internal/llm"
	"github.com/m0shaban/ai-virtual-teacher/internal/natsserver"
	"github.com/m0shaban/ai-virtual-teacher/internal/pipeline"
	"github.com/m0shaban/ai-virtual-teacher/internal/registry"
	"github.com/m0shaban/ai-virtual-teacher/internal/stt"
	"github.com/m0shaban/ai-virtual-teacher/internal/tts"
)

// Version identifies the build; overridden via -ldflags at release time.
var Version = "0.1.0-dev"

type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tel, err := newTelemetry(ctx, r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = tel.Close

	embedded, busClient, err := r.startBus()
	if err != nil {
		return err
	}
	defer embedded.Shutdown()
	defer busClient.Close()

	audit, err := eventstore.Open(ctx, r.cfg.Audit, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}
	defer audit.Close()

	catalog := registry.New(r.cfg.Models)
	p, err := r.buildPipeline(catalog, busClient, audit)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if tel.scrape != nil {
		mux.Handle("/metrics", tel.scrape)
	}

	gateway.New(p, catalog, r.logger).Register(mux)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	<-ctx.Done()
	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

// startBus launches the embedded server and connects when the bus is enabled;
// both results are nil-safe when it is not.
func (r *Runtime) startBus() (*natsserver.EmbeddedServer, *bus.Client, error) {
	if !r.cfg.Bus.Enabled {
		return nil, nil, nil
	}
	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded bus: %w", err)
	}
	busClient, err := bus.Connect(r.cfg.Bus, r.logger)
	if err != nil {
		embedded.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect to bus: %w", err)
	}
	return embedded, busClient, nil
}

func (r *Runtime) buildPipeline(catalog *registry.Catalog, busClient *bus.Client, audit *eventstore.Store) (*pipeline.Pipeline, error) {
	generator, err := llm.FromConfig(r.cfg.LLM, r.cfg.HFToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build generator: %w", err)
	}
	session := llm.NewSession(r.cfg.LLM, generator, r.logger)

	// A broken speech backend degrades the process instead of stopping it;
	// the pipeline reports per-turn availability.
	recognizer, err := stt.FromConfig(r.cfg.STT, r.cfg.HFToken)
	if err != nil {
		r.logger.Warn("speech-to-text disabled", slog.String("error", err.Error()))
		recognizer = nil
	}
	adapter := stt.NewAdapter(r.cfg.STT, recognizer, r.logger)

	synth, err := tts.FromConfig(r.cfg.TTS, r.cfg.HFToken)
	if err != nil {
		r.logger.Warn("primary synthesis disabled, fallback only", slog.String("error", err.Error()))
		synth = nil
	}
	fallback := tts.NewGoogleTranslateTTS(r.cfg.TTS.FallbackEndpoint)
	speaker := tts.NewSpeaker(r.cfg.TTS, synth, fallback, r.logger)

	return pipeline.New(session, adapter, speaker, catalog, busClient, audit, r.logger), nil
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
