package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/handler"
	"github.com/neuro-publico/conversation-engine/internal/infra/config"
	"github.com/neuro-publico/conversation-engine/internal/infra/fal"
	"github.com/neuro-publico/conversation-engine/internal/infra/httpapi"
	"github.com/neuro-publico/conversation-engine/internal/infra/metrics"
	miniostore "github.com/neuro-publico/conversation-engine/internal/infra/minio"
	"github.com/neuro-publico/conversation-engine/internal/infra/openai"
	"github.com/neuro-publico/conversation-engine/internal/infra/postgres"
	awssqs "github.com/neuro-publico/conversation-engine/internal/infra/sqs"
	"github.com/neuro-publico/conversation-engine/internal/infra/tracing"
	"github.com/neuro-publico/conversation-engine/internal/queue"
	"github.com/neuro-publico/conversation-engine/internal/usecase"
	"github.com/neuro-publico/conversation-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting conversation-engine ads pipeline")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	err = postgres.RunMigrations(ctx, pool)
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Media storage for rendered clips
	media, err := miniostore.NewMediaStore(miniostore.MediaStoreConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		UseSSL:    cfg.MinIOUseSSL,
		Bucket:    cfg.MinIOMediaBucket,
	})
	fatalOnErr(err, "create media store")
	fatalOnErr(media.EnsureBucket(ctx), "ensure media bucket")

	// Queue gateway
	gateway, err := awssqs.NewGateway(ctx, awssqs.GatewayConfig{
		Region:      cfg.AWSRegion,
		AccessKey:   cfg.AWSAccessKey,
		SecretKey:   cfg.AWSSecretKey,
		EndpointURL: cfg.SQSEndpointURL,
	})
	fatalOnErr(err, "create sqs gateway")

	publisher := queue.NewScenePublisher(gateway, log)

	humanQueueURL, err := resolveQueueURL(ctx, publisher, cfg.SQSHumanQueueURL, entity.QueueHumanVideo)
	fatalOnErr(err, "resolve human scene queue")
	animatedQueueURL, err := resolveQueueURL(ctx, publisher, cfg.SQSAnimatedQueueURL, entity.QueueAnimatedVideo)
	fatalOnErr(err, "resolve animated scene queue")

	// Adapters
	repo := postgres.NewAdVideoRepository(pool)
	planner := openai.NewScenePlanner(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	renderer := fal.NewRenderer(cfg.FalBaseURL, cfg.FalAPIKey)

	handlerDeps := handler.Deps{
		Renderer: renderer,
		Media:    media,
		Repo:     repo,
		Logger:   log,
	}
	handlers := map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman:    handler.NewHumanSceneHandler(handlerDeps),
		entity.SceneTypeAnimated: handler.NewAnimatedSceneHandler(handlerDeps),
	}

	// Use cases
	enqueueUC := usecase.NewEnqueueAdVideoUseCase(planner, repo, publisher, log)
	processUC := usecase.NewProcessSceneUseCase(repo, handlers, log)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// HTTP API
	auth := httpapi.NewAuthMiddleware(cfg.AuthServiceURL, log)
	api := httpapi.NewServer(enqueueUC, repo, auth, log)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api.Router(),
	}
	go func() {
		log.Info("http api starting", zap.Int("port", cfg.HTTPPort))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http api error", zap.Error(err))
		}
	}()

	// Queue listeners, one loop per scene queue
	listener := queue.NewListener(gateway,
		[]queue.Binding{
			{QueueURL: humanQueueURL, DefaultType: entity.SceneTypeHuman},
			{QueueURL: animatedQueueURL, DefaultType: entity.SceneTypeAnimated},
		},
		processUC.Execute,
		queue.ListenerConfig{
			MaxMessages: cfg.ListenerMaxMessages,
			WaitTime:    time.Duration(cfg.ListenerWaitSeconds) * time.Second,
			IdleDelay:   time.Duration(cfg.ListenerIdleDelayMs) * time.Millisecond,
			ErrorDelay:  time.Duration(cfg.ListenerErrorDelayMs) * time.Millisecond,
		},
		log,
	)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("ads pipeline started, consuming scene queues")
	listener.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	apiSrv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("ads pipeline stopped")
}

// resolveQueueURL prefers the configured URL and falls back to creating the
// queue by name.
func resolveQueueURL(ctx context.Context, publisher *queue.ScenePublisher, configured, queueName string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return publisher.ResolveQueue(ctx, queueName)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
