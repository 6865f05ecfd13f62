package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"lakehose/internal/awsclient"
	"lakehose/internal/batch"
	"lakehose/internal/broker"
	"lakehose/internal/config"
	"lakehose/internal/constants"
	"lakehose/internal/logger"
	"lakehose/internal/partition"
	"lakehose/internal/templates"
	"lakehose/internal/transform"
	"lakehose/pkg/bootstrap"
	"lakehose/pkg/health"
	"lakehose/pkg/logging"
	"lakehose/pkg/metrics"
	"lakehose/pkg/middleware"
)

type App struct {
	*bootstrap.Base
	store      *templates.S3Store
	normalizer *transform.Normalizer
	driver     *batch.Driver
	server     *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("transformer-service")
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	awsCfg, err := awsclient.Load(ctx, a.Config.AWS)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS clients: %w", err)
	}

	a.store = templates.NewS3Store(awsCfg, a.Config.AWS.Endpoint, a.Config.Templates.Bucket, a.Logger)

	registry := templates.NewRegistry(a.Config.AWS.AccountID, a.Logger)
	cache := templates.NewCache(
		a.store,
		registry,
		time.Duration(a.Config.Templates.CacheExpirationSeconds)*time.Second,
		clockwork.NewRealClock(),
		a.Logger,
	)

	var reporter batch.ErrorReporter
	if a.Config.Metrics.CloudWatchEnabled {
		reporter = metrics.NewCloudWatchReporter(
			cloudwatch.NewFromConfig(awsCfg),
			a.Config.Metrics.Namespace,
			a.Logger,
		)
	} else {
		reporter = metrics.NewPromReporter()
	}

	a.normalizer = transform.NewNormalizer(
		cache,
		transform.TemplateKeys{
			WhatsAppStatus:  a.Config.Templates.WhatsAppStatusKey,
			WhatsAppMessage: a.Config.Templates.WhatsAppMessageKey,
			Messaging:       a.Config.Templates.MessagingKey,
			SES:             a.Config.Templates.SESKey,
		},
		reporter,
		a.Logger,
	)

	var catalog partition.Catalog
	if a.Config.Catalog.Enabled {
		catalog = partition.NewAthenaCatalog(awsCfg, a.Config.AWS.Endpoint, a.Config.Catalog, a.Logger)
	}
	resolver := partition.NewResolver(catalog, a.Logger)

	a.driver = batch.NewDriver(a.normalizer, resolver, reporter, a.Logger)

	if a.Config.Broker.Type != "" {
		if err := a.InitBroker("transformer-service"); err != nil {
			return fmt.Errorf("failed to initialize broker: %w", err)
		}
	}

	metrics.RegisterTransformerMetrics()

	a.initHTTPServer()

	return nil
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(a.Logger))
	router.Use(middleware.Recovery(a.Logger))

	batch.NewHandler(a.driver, a.Logger).Register(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewBlobStoreChecker(a.store))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.Consumer != nil {
		inputTopic := a.Config.Broker.Kafka.InputTopic
		g.Go(func() error {
			return a.Consumer.Consume(gCtx, inputTopic, a.handleMessage)
		})
	}

	return g.Wait()
}

// handleMessage runs one relayed payload through the same batch
// driver the HTTP endpoint uses. Canonical output goes to the output
// topic; failed payloads go to the DLQ so nothing is silently lost.
func (a *App) handleMessage(ctx context.Context, msg broker.RawMessage) error {
	recordID := uuid.NewString()
	ctx = logging.WithRecordID(ctx, recordID)

	out := a.driver.ProcessBatch(ctx, batch.InboundEvent{
		Records: []batch.InboundRecord{
			{RecordID: recordID, Data: msg.Value},
		},
	})
	record := out.Records[0]

	switch {
	case record.Result == constants.ResultProcessingFailed:
		if a.Config.Broker.Kafka.DLQTopic != "" {
			if err := a.Producer.Publish(ctx, a.Config.Broker.Kafka.DLQTopic, msg.Key, msg.Value); err != nil {
				return fmt.Errorf("publish to DLQ: %w", err)
			}
		}
		a.Logger.WarnwCtx(ctx, "Relayed payload failed processing, routed to DLQ")
		return nil

	case len(record.Data) == 0:
		// Intentionally dropped; nothing to forward.
		return nil

	default:
		outputTopic := a.Config.Broker.Kafka.OutputTopic
		if outputTopic == "" {
			return nil
		}
		if err := a.Producer.Publish(ctx, outputTopic, []byte(recordID), record.Data); err != nil {
			return fmt.Errorf("publish canonical records: %w", err)
		}
		return nil
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, "transformer-service")
	a.Logger.InfowCtx(shutdownCtx, "Shutting down transformer service")

	return a.Base.Shutdown(ctx, nil)
}
