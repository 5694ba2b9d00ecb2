// cmd/alert-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"license-alert-engine/internal/common/config"
	"license-alert-engine/internal/common/database"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/common/observability"
	"license-alert-engine/internal/engine"
	"license-alert-engine/internal/engine/guard"
	"license-alert-engine/internal/engine/provider"
	"license-alert-engine/internal/engine/recorder"
	"license-alert-engine/internal/engine/retryqueue"
	"license-alert-engine/internal/engine/scheduler"
	"license-alert-engine/internal/engine/statuscache"
	"license-alert-engine/internal/engine/template"
	"license-alert-engine/internal/models"
	"license-alert-engine/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting license alert engine...",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("testMode", cfg.Engine.TestMode),
	)

	if err := cfg.Validate(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	obs := observability.New("alert-engine")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Record store ---
	var recordStore store.RecordStore
	var pg *database.PostgresClient
	if cfg.Engine.TestMode {
		mem := store.NewMemoryStore()
		if cfg.Engine.TemplateRegistryPath != "" {
			reg, err := template.LoadRegistry(cfg.Engine.TemplateRegistryPath)
			if err != nil {
				zapLog.Fatal("template registry load failed", zap.Error(err))
			}
			mem.Templates = reg.Templates
			zapLog.Info("Templates loaded from registry",
				zap.String("path", cfg.Engine.TemplateRegistryPath),
				zap.Int("count", len(reg.Templates)),
			)
		}
		recordStore = mem
		zapLog.Info("Test mode: in-memory record store")
	} else {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		recordStore = store.NewPostgresStore(pg.DB)

		// a registry path outside test mode is validated at startup so a
		// broken file fails the deploy, not the first send
		if cfg.Engine.TemplateRegistryPath != "" {
			if _, err := template.LoadRegistry(cfg.Engine.TemplateRegistryPath); err != nil {
				zapLog.Fatal("template registry validation failed", zap.Error(err))
			}
		}
	}

	// --- Status cache ---
	var statuses provider.StatusRecorder
	switch cfg.StatusCache.Backend {
	case config.StatusCacheRedis:
		var rd *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rd, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rd.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rd.Close()
		statuses = statuscache.NewRedisCache(rd.Client, cfg.StatusCache.TTL())
		zapLog.Info("Redis status cache connected")
	default:
		statuses = statuscache.NewMemoryCache(cfg.StatusCache.MaxEntries)
	}

	// --- Providers, priority order ---
	providers, err := buildProviders(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("provider initialization failed", zap.Error(err))
	}
	for _, p := range providers {
		zapLog.Info("provider registered", zap.String("provider", p.Name()))
	}

	gateway := provider.NewGateway(providers, cfg.Engine.MaxMessageLength, statuses, log)
	gateway.SetObserver(func(d time.Duration, outcome string) {
		obs.RecordSendDuration(ctx, d, outcome)
	})

	// --- Engine wiring ---
	rec := recorder.New(recordStore, time.Now, log)
	queue := retryqueue.New(retryqueue.Options{
		MaxAttempts: cfg.Engine.RetryMaxAttempts,
		SendDelay:   cfg.Engine.InterSendDelay(),
		Send: func(ctx context.Context, msg models.OutboundMessage) error {
			_, err := gateway.Send(ctx, msg.Destination, msg.Body, msg.Priority)
			return err
		},
		OnSuccess: func(ctx context.Context, item retryqueue.Item) {
			rec.Sent(ctx, item.Message)
		},
		OnTerminal: func(ctx context.Context, item retryqueue.Item, cause error) {
			rec.Failed(ctx, item.Message, cause.Error())
		},
		Log: log,
	})
	runner := scheduler.New(scheduler.Options{
		Store:          recordStore,
		Gateway:        gateway,
		Queue:          queue,
		Guard:          guard.New(recordStore, log),
		Recorder:       rec,
		Log:            log,
		InterSendDelay: cfg.Engine.InterSendDelay(),
	})
	eng := engine.New(engine.Options{
		Config:  cfg,
		Runner:  runner,
		Queue:   queue,
		Gateway: gateway,
		Obs:     obs,
		Log:     log,
	})

	if err := eng.Start(ctx); err != nil {
		zapLog.Fatal("engine start failed", zap.Error(err))
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			h := eng.Health()
			w.Header().Set("Content-Type", "application/json")
			if h.Status == engine.StatusDown {
				w.WriteHeader(http.StatusServiceUnavailable)
			} else {
				w.WriteHeader(http.StatusOK)
			}
			json.NewEncoder(w).Encode(h)
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/provider/switch", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			name := r.URL.Query().Get("name")
			w.Header().Set("Content-Type", "application/json")
			if err := gateway.SwitchProvider(name); err != nil {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"activeProvider": gateway.ActiveProvider()})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping engine...")
	eng.Stop()
	zapLog.Info("License alert engine stopped gracefully")
}

// buildProviders constructs enabled providers in ascending priority order.
// Test mode always gets the simulated provider, regardless of configuration.
func buildProviders(ctx context.Context, cfg *config.Config, log logger.Logger) ([]provider.Provider, error) {
	if cfg.Engine.TestMode {
		return []provider.Provider{provider.NewSimulatedProvider("simulated")}, nil
	}

	var out []provider.Provider
	for _, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		senderID := pc.SenderID
		if senderID == "" {
			senderID = cfg.Engine.DefaultSenderID
		}
		switch pc.Kind {
		case config.ProviderKindSNS:
			p, err := provider.NewSNSProvider(ctx, pc.Name, pc.Region, senderID)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		case config.ProviderKindHTTP:
			out = append(out, provider.NewHTTPProvider(pc.Name, pc.URL, pc.APIKey, senderID))
		case config.ProviderKindSimulated:
			out = append(out, provider.NewSimulatedProvider(pc.Name))
		}
	}
	return out, nil
}
