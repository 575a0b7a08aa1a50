// Package server initializes and runs the content hub service: it wires
// the durable store, the failure-injection gate, the HTTP endpoint and the
// queue consumer, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/chaos"
	"github.com/dmitrijs2005/contenthub/internal/server/config"
	"github.com/dmitrijs2005/contenthub/internal/server/events"
	"github.com/dmitrijs2005/contenthub/internal/server/httpapi"
	"github.com/dmitrijs2005/contenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contenthub/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	chaosSrc *chaos.RedisSource
	server   *httpapi.Server
	consumer *events.Consumer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	repos, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	chaosSrc := chaos.NewRedisSource(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ChaosDenylistKey)
	gate := chaos.NewGate(chaosSrc, cfg.ChaosCacheTTL, logger)

	capabilityService := services.NewCapabilityService(repos.Files(), gate, cfg, logger)
	statusService := services.NewStatusService(repos.Files(), logger)
	detector := events.NewDetector(statusService, cfg.S3Bucket, logger)

	handler := httpapi.NewHandler(capabilityService, statusService, detector, logger)
	router := httpapi.NewRouter(handler, []byte(cfg.SecretKey), repos.Conn(), logger)
	server := httpapi.NewServer(cfg.EndpointAddr, router, logger)

	app := &App{
		config:   cfg,
		logger:   logger,
		repos:    repos,
		chaosSrc: chaosSrc,
		server:   server,
	}

	if cfg.SQSQueueURL != "" {
		client, err := newSQSClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("sqs init error: %w", err)
		}
		app.consumer = events.NewConsumer(ctx, client, detector, cfg.SQSQueueURL, logger)
	}

	return app, nil
}

func newSQSClient(ctx context.Context, cfg *config.Config) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
	}), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err.Error())
			cancelFunc()
		}
	}()

	if app.consumer != nil {
		app.consumer.Start()
	}

	<-ctx.Done()
	app.shutdown()

	wg.Wait()
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	app.logger.Info(ctx, "shutting down")

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err.Error())
	}

	if app.consumer != nil {
		if err := app.consumer.Shutdown(ctx); err != nil {
			app.logger.Error(ctx, "consumer shutdown error", "error", err.Error())
		}
	}

	if err := app.chaosSrc.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err.Error())
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
