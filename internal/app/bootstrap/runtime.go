package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/viralforge/facility-assistant/internal/adapters/cache"
	eventadapter "github.com/viralforge/facility-assistant/internal/adapters/events"
	"github.com/viralforge/facility-assistant/internal/adapters/gateway"
	grpcadapter "github.com/viralforge/facility-assistant/internal/adapters/grpc"
	httpadapter "github.com/viralforge/facility-assistant/internal/adapters/http"
	"github.com/viralforge/facility-assistant/internal/adapters/memory"
	"github.com/viralforge/facility-assistant/internal/adapters/postgres"
	"github.com/viralforge/facility-assistant/internal/adapters/security"
	"github.com/viralforge/facility-assistant/internal/adapters/voice"
	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/observability"
	"github.com/viralforge/facility-assistant/internal/ports"
)

type closingPublisher interface {
	ports.EventPublisher
	Close() error
}

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)

	// compactOutbox trims delivered rows from the in-memory outbox; nil for durable outboxes.
	compactOutbox func() int
}

// storage is the flat store and outbox chosen by STORAGE_DRIVER.
type storage struct {
	store   ports.FlatStore
	outbox  ports.OutboxRepository
	compact func() int
	ready   httpadapter.ReadinessCheck
	close   func()
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping facility assistant",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"storage", cfg.StorageDriver,
		"gateway", cfg.GatewayDriver,
		"voice", cfg.VoiceDriver,
	)

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	matcher, err := security.NewMatcher(cfg.PasswordScheme, cfg.BcryptCost)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("init credential matcher: %w", err)
	}
	credentials := application.NewCredentialStore(st.store, matcher)
	if err := credentials.Load(ctx); err != nil {
		st.close()
		return nil, fmt.Errorf("load credential store: %w", err)
	}

	upstream, err := newUpstream(cfg)
	if err != nil {
		st.close()
		return nil, err
	}
	if upstream == nil {
		logger.Warn("API_KEY is not set; assistant replies will use the fallback text")
	}
	chatGateway, err := newChatGateway(cfg, upstream)
	if err != nil {
		st.close()
		return nil, err
	}

	voiceFactory, err := voice.NewFactory(cfg.VoiceDriver, cfg.Voices)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("init voice driver: %w", err)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		st.close()
		return nil, err
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			AdminCode:         cfg.AdminCode,
			GatewayTimeout:    cfg.GatewayTimeout,
			SessionIdleTTL:    cfg.SessionIdleTTL,
			DefaultSpeechRate: cfg.DefaultSpeechRate,
		},
		Credentials: credentials,
		Matcher:     matcher,
		Gateway:     chatGateway,
		Outbox:      st.outbox,
		Voice:       voiceFactory,
	})
	if err := observability.RegisterSessionGauge(svc.SessionCount); err != nil {
		logger.Warn("session gauge not registered", "error", err)
	}

	handler := httpadapter.NewHandler(svc, upstream, st.ready)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewAssistantInternalServer(svc))

	outbox := eventadapter.NewOutboxWorker(logger, st.outbox, publisher, eventadapter.WorkerConfig{
		Interval:   cfg.OutboxPollInterval,
		BatchSize:  cfg.OutboxBatchSize,
		ClaimTTL:   cfg.OutboxClaimTTL,
		MaxRetries: cfg.OutboxMaxRetries,
	})

	return &Runtime{
		cfg:           cfg,
		logger:        logger,
		service:       svc,
		httpServer:    httpServer,
		grpcServer:    grpcServer,
		health:        healthSrv,
		outbox:        outbox,
		compactOutbox: st.compact,
		cleanupFn: func(context.Context) {
			if err := publisher.Close(); err != nil {
				logger.Warn("close event publisher", "error", err)
			}
			st.close()
		},
	}, nil
}

func openStorage(ctx context.Context, cfg Config) (storage, error) {
	switch cfg.StorageDriver {
	case StorageRedis:
		client, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return storage{}, fmt.Errorf("connect redis: %w", err)
		}
		outbox := memory.NewOutboxRepository()
		return storage{
			store:   cacheadapter.NewRedisFlatStore(client),
			outbox:  outbox,
			compact: outbox.Compact,
			ready:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:   func() { _ = client.Close() },
		}, nil
	case StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return storage{}, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return storage{}, fmt.Errorf("gorm sql db: %w", err)
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = sqlDB.Close()
			return storage{}, fmt.Errorf("run migrations: %w", err)
		}
		repos := postgres.NewRepositories(db)
		return storage{
			store:  repos.Store,
			outbox: repos.Outbox,
			ready:  sqlDB.PingContext,
			close:  func() { _ = sqlDB.Close() },
		}, nil
	default:
		outbox := memory.NewOutboxRepository()
		return storage{
			store:   memory.NewFlatStore(),
			outbox:  outbox,
			compact: outbox.Compact,
			close:   func() {},
		}, nil
	}
}

// newUpstream returns nil without error when no API key is configured.
func newUpstream(cfg Config) (ports.AssistantGateway, error) {
	upstream, err := gateway.NewUpstream(gateway.UpstreamConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.AIBaseURL,
		Model:      cfg.AIModel,
		MaxRetries: cfg.AIMaxRetries,
	})
	if errors.Is(err, gateway.ErrMissingAPIKey) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("init upstream gateway: %w", err)
	}
	return upstream, nil
}

func newChatGateway(cfg Config, upstream ports.AssistantGateway) (ports.AssistantGateway, error) {
	if cfg.GatewayDriver == GatewayProxy {
		client, err := gateway.NewProxyClient(cfg.ProxyURL, &http.Client{})
		if err != nil {
			return nil, fmt.Errorf("init proxy gateway: %w", err)
		}
		return client, nil
	}
	if upstream == nil {
		return gateway.Unconfigured{}, nil
	}
	return upstream, nil
}

func newPublisher(cfg Config, logger *slog.Logger) (closingPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventadapter.NewLoggingPublisher(logger), nil
	}
	publisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	if err != nil {
		return nil, fmt.Errorf("init kafka publisher: %w", err)
	}
	return publisher, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen gRPC: %w", err)
	}

	go r.service.RunJanitor(ctx, r.cfg.JanitorInterval)
	if r.cfg.OutboxInProcess {
		go func() {
			if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("in-process outbox worker stopped", "error", err)
			}
		}()
		if r.compactOutbox != nil {
			go r.runCompaction(ctx)
		}
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.health.Shutdown()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.service.Shutdown(shutdownCtx)
	if r.cfg.OutboxInProcess {
		// Flush the session.closed events emitted by Shutdown.
		if _, err := r.outbox.ProcessOnce(shutdownCtx); err != nil {
			r.logger.Warn("final outbox flush failed", "error", err)
		}
	}
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) runCompaction(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.compactOutbox(); n > 0 {
				r.logger.Debug("compacted in-memory outbox", "removed", n)
			}
		}
	}
}

// RunWorker drains the durable outbox. In-memory outboxes are drained by the API process itself.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.cfg.StorageDriver != StoragePostgres {
		r.cleanupFn(ctx)
		return fmt.Errorf("outbox worker needs STORAGE_DRIVER=%s, got %q", StoragePostgres, r.cfg.StorageDriver)
	}

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
