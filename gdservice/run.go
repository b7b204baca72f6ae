// Package gdservice wires the GD backend together and serves it over HTTP.
package gdservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/api"
	"github.com/Vijaykv5/Intereractive-GD/internal/config"
	"github.com/Vijaykv5/Intereractive-GD/internal/evaluation"
	"github.com/Vijaykv5/Intereractive-GD/internal/factory"
	"github.com/Vijaykv5/Intereractive-GD/internal/health"
	"github.com/Vijaykv5/Intereractive-GD/internal/identity"
	"github.com/Vijaykv5/Intereractive-GD/internal/llm"
	"github.com/Vijaykv5/Intereractive-GD/internal/logger"
	"github.com/Vijaykv5/Intereractive-GD/internal/participant"
	"github.com/Vijaykv5/Intereractive-GD/internal/services"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
	"github.com/Vijaykv5/Intereractive-GD/internal/tts"
	"github.com/Vijaykv5/Intereractive-GD/internal/turn"
)

// deps holds everything built from config before the router.
type deps struct {
	store      store.Store
	turns      turn.Store
	release    func()
	llm        llm.Client
	primaryTTS tts.Service
	altTTS     tts.Service
	resolver   *identity.Resolver
}

func (d *deps) close() {
	if d.release != nil {
		d.release()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

// Run starts the GD service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("gd-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("store_driver", cfg.StoreDriver).
		Str("turn_store", cfg.TurnStore).
		Str("llm_provider", cfg.LLMProvider).
		Int("http_port", cfg.HTTPPort).
		Msg("GD service starting")

	ctx, stop := newServerContext()
	defer stop()

	d, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.close()

	svcHealth := startHealthCheckers(ctx, cfg, log, d)

	router, err := buildRouter(cfg, log, d, svcHealth)
	if err != nil {
		return err
	}

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and fails fast on missing ones.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*deps, error) {
	d := &deps{}
	var err error

	if d.store, err = factory.NewStore(ctx, cfg, log); err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}
	if d.turns, d.release, err = factory.NewTurnStore(ctx, cfg, log); err != nil {
		log.Error().Stack().Err(err).Msg("Turn store unavailable")
		d.close()
		return nil, err
	}
	if d.llm, err = factory.NewLLMClient(ctx, cfg, log); err != nil {
		log.Error().Stack().Err(err).Msg("LLM client unavailable")
		d.close()
		return nil, err
	}
	if d.primaryTTS, err = factory.NewTTS(cfg, cfg.TTSProvider); err != nil {
		d.close()
		return nil, err
	}
	if d.altTTS, err = factory.NewTTS(cfg, cfg.AltTTSProvider); err != nil {
		d.close()
		return nil, err
	}
	if d.resolver, err = identity.New(identity.Mode(cfg.AuthMode), cfg.GoogleClientID, log); err != nil {
		d.close()
		return nil, err
	}
	return d, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(cfg *config.Config, log zerolog.Logger, d *deps, svcHealth *health.ServiceHealthChecker) (http.Handler, error) {
	records := services.NewRecordsService(d.store, log)

	registry := turn.NewRegistry()
	var fwd turn.Forwarder = registry
	if cfg.PeerURL != "" {
		fwd = turn.NewHTTPForwarder(cfg.PeerURL, cfg.LLMTimeout)
	}
	p1 := participant.NewResponder(participant.Participant1(cfg.Participant1Model), d.llm, log)
	p2 := participant.NewResponder(participant.Participant2(cfg.Participant2Model), d.llm, log)
	registry.Register(turn.NewCoordinator(turn.LLM1, d.turns, p1, fwd, log))
	registry.Register(turn.NewCoordinator(turn.LLM2, d.turns, p2, fwd, log))

	evalSvc, err := evaluation.NewService(records, d.llm, cfg.EvaluationModel, log)
	if err != nil {
		return nil, err
	}

	voice := func(role string, s tts.Service) api.TTSVoices {
		return api.TTSVoices{Service: s, Voice: tts.VoiceFor(role, s.Name(), cfg.TTSLanguage, cfg.TTSTLD)}
	}
	speech := api.NewTTSHandler(
		voice("llm1", d.primaryTTS),
		voice("llm2", d.altTTS),
		voice("alt", d.altTTS),
	)

	return api.NewRouter(log, cfg.CORSAllowOrigin,
		api.NewHealthHandler(svcHealth),
		api.NewAuthHandler(d.resolver, records),
		api.NewUserHandler(records),
		api.NewDiscussionHandler(registry, d.turns),
		speech,
		api.NewEvaluationHandler(evalSvc),
	), nil
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *deps) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	checkers := []health.HealthChecker{
		health.NewPingChecker("store", d.store, log, probeTimeout),
		health.NewPingChecker("turn_store", d.turns, log, probeTimeout),
	}
	for _, c := range checkers {
		go c.Start(ctx, interval)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// speech synthesis and evaluation wait on slow upstreams
		WriteTimeout: cfg.TTSTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := time.Duration(cfg.StartupTimeoutSeconds) * time.Second
	if !health.WaitUntilHealthy(ctx, svcHealth, timeout) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
	}
	return nil
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
