// SwissPipe server: workflow automation ingestion, execution engine, and
// background schedulers, wired together the way cmd/server/main.go wires
// the teacher's application services — sequential init with structured
// logging, then a gin HTTP front door, then signal-driven graceful shutdown.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openobserve/swisspipe/internal/api"
	"github.com/openobserve/swisspipe/internal/auth"
	"github.com/openobserve/swisspipe/internal/cache"
	"github.com/openobserve/swisspipe/internal/config"
	"github.com/openobserve/swisspipe/internal/engine"
	"github.com/openobserve/swisspipe/internal/ingestion"
	"github.com/openobserve/swisspipe/internal/jobs"
	"github.com/openobserve/swisspipe/internal/jssandbox"
	"github.com/openobserve/swisspipe/internal/logging"
	"github.com/openobserve/swisspipe/internal/nodes"
	"github.com/openobserve/swisspipe/internal/schedulers"
	"github.com/openobserve/swisspipe/internal/secrets"
	"github.com/openobserve/swisspipe/internal/storage"
	"github.com/openobserve/swisspipe/internal/versions"
	"github.com/openobserve/swisspipe/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logging.New(cfg.Logging)
	logging.SetDefault(appLogger)
	appLogger.Info("starting swisspipe server", "port", cfg.Server.Port)

	db, err := storage.NewDB(&storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Logging.Level == "debug",
	})
	if err != nil {
		appLogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)
	appLogger.Info("database connected")

	keyBytes, err := base64.StdEncoding.DecodeString(cfg.Crypto.EncryptionKey)
	if err != nil {
		appLogger.Error("failed to decode SP_ENCRYPTION_KEY", "error", err)
		os.Exit(1)
	}
	sealer, err := secrets.New(keyBytes)
	if err != nil {
		appLogger.Error("failed to initialize secret sealer", "error", err)
		os.Exit(1)
	}

	executionRepo := storage.NewExecutionRepository(db)
	eventRepo := storage.NewEventRepository(db)
	variableRepo := storage.NewVariableRepository(db, sealer)
	versionRepo := storage.NewVersionRepository(db)
	appLogger.Info("repositories initialized")

	var redisTier *cache.RedisTier
	if cfg.Redis.URL != "" {
		redisTier, err = cache.NewRedisTier(context.Background(), cfg.Redis, time.Hour)
		if err != nil {
			appLogger.Error("failed to connect to redis cache tier, continuing without it", "error", err)
			redisTier = nil
		} else {
			defer redisTier.Close()
			appLogger.Info("redis cache tier connected")
		}
	}
	workflowCache, err := cache.NewWithRedis(versionRepo, cfg.Scheduler.CacheCapacity, redisTier)
	if err != nil {
		appLogger.Error("failed to initialize workflow cache", "error", err)
		os.Exit(1)
	}

	sandbox := jssandbox.New(jssandbox.DefaultConfig())
	handlers := nodes.NewDefaultRegistry(nodes.Deps{
		Sandbox:         sandbox,
		HTTPClient:      &http.Client{Timeout: cfg.Worker.NodeDefaultTimeout},
		MailSender:      nodes.NewSMTPMailSender(cfg.SMTP),
		AnthropicAPIKey: cfg.Anthropic.APIKey,
		AnthropicURL:    cfg.Anthropic.BaseURL,
	})
	appLogger.Info("node handler registry initialized", "kinds", len(handlers.List()))

	eng := &engine.Engine{
		Executions: executionRepo,
		Events:     eventRepo,
		Variables:  variableRepo,
		Workflows:  workflowCache,
		Handlers:   handlers,
	}

	pool := jobs.New(jobs.Config{
		Workers:       cfg.Worker.Count,
		QueueCapacity: cfg.Worker.QueueCapacity,
	}, eng, func(job models.Job, err error) {
		appLogger.Error("job step failed", "execution_id", job.ExecutionID, "error", err)
	})
	eng.Queue = pool

	delayScheduler := schedulers.NewDelayScheduler(pool)
	hilScheduler := schedulers.NewHILScheduler(pool)
	eng.Scheduler = &schedulers.Router{Delay: delayScheduler, HIL: hilScheduler}
	appLogger.Info("execution engine initialized", "workers", cfg.Worker.Count)

	versionService := versions.NewService(versionRepo, workflowCache)
	ingest := ingestion.New(workflowCache, executionRepo, pool)

	workflowRepo := storage.NewWorkflowRepository(db)
	cronScheduler := schedulers.NewCronScheduler(ingest)
	if err := registerCronSchedules(context.Background(), workflowRepo, workflowCache, cronScheduler); err != nil {
		appLogger.Error("failed to register cron schedules", "error", err)
		os.Exit(1)
	}

	var authHandler *api.AuthHandler
	var sessionIssuer *auth.SessionIssuer
	if cfg.Auth.Username != "" {
		basicVerifier, err := auth.NewBasicVerifier(cfg.Auth.Username, cfg.Auth.Password)
		if err != nil {
			appLogger.Error("failed to initialize operator credentials", "error", err)
			os.Exit(1)
		}
		sessionIssuer = auth.NewSessionIssuer([]byte(cfg.Auth.SessionSecret), 24*time.Hour)

		var googleVerifier *auth.GoogleVerifier
		if cfg.Auth.GoogleOAuthClientID != "" {
			googleVerifier, err = auth.NewGoogleVerifier(context.Background(), cfg.Auth.GoogleOAuthClientID)
			if err != nil {
				appLogger.Error("failed to initialize google oidc verifier", "error", err)
				os.Exit(1)
			}
			appLogger.Info("google login configured")
		}
		authHandler = api.NewAuthHandler(basicVerifier, googleVerifier, sessionIssuer)
		appLogger.Info("operator session auth configured")
	}

	router := api.NewRouter(appLogger, db, api.Handlers{
		Webhook: api.NewWebhookHandler(ingest),
		HIL:     api.NewHILHandler(hilScheduler),
		Version: api.NewVersionHandler(versionService),
		Auth:    authHandler,
	}, sessionIssuer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)
	go delayScheduler.Run(ctx)
	go hilScheduler.Run(ctx)
	cronScheduler.Start()
	appLogger.Info("background workers started")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("http server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		appLogger.Info("shutdown initiated", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		cancel() // stop workers and schedulers
		cronScheduler.Stop()

		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			_ = server.Close()
		}
		appLogger.Info("server stopped")
	}
}

// registerCronSchedules loads every enabled workflow's current version and
// registers its Trigger node's optional cron_schedule, so recurring
// executions resume across a server restart without an explicit API call.
func registerCronSchedules(ctx context.Context, workflows *storage.WorkflowRepository, cache *cache.WorkflowCache, cronScheduler *schedulers.CronScheduler) error {
	all, err := workflows.List(ctx)
	if err != nil {
		return fmt.Errorf("list workflows: %w", err)
	}
	for _, wf := range all {
		if !wf.Enabled {
			continue
		}
		version, err := cache.GetOrLoad(ctx, wf.ID)
		if err != nil {
			return fmt.Errorf("load workflow %s: %w", wf.ID, err)
		}
		triggerNode, err := version.Snapshot.TriggerNode()
		if err != nil {
			continue
		}
		if triggerNode.Type.Trigger == nil || triggerNode.Type.Trigger.CronSchedule == "" {
			continue
		}
		if err := cronScheduler.Schedule(wf.ID, triggerNode.Type.Trigger.CronSchedule); err != nil {
			return fmt.Errorf("schedule workflow %s: %w", wf.ID, err)
		}
	}
	return nil
}
