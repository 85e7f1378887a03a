// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg/attachment"
	"github.com/LerianStudio/attachment-storage/pkg/constant"
	"github.com/LerianStudio/attachment-storage/pkg/storage"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/LerianStudio/lib-commons/v3/commons/zap"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config holds the process settings read from environment variables.
type Config struct {
	EnvName                 string `env:"ENV_NAME"`
	LogLevel                string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry         bool   `env:"ENABLE_TELEMETRY"`
	// Attachment storage
	S3ConfigPath string `env:"ATTACHMENT_S3_CONFIG_PATH"`
	PathPrefix   string `env:"ATTACHMENT_PATH_PREFIX"`
	S3Access     string `env:"ATTACHMENT_S3_ACCESS"`
	BucketKey    string `env:"ATTACHMENT_BUCKET_KEY"`
	Cloudfront   bool   `env:"ATTACHMENT_CLOUDFRONT"`
	// Circuit breaker and bucket probe
	CircuitBreakerEnabled      bool `env:"ATTACHMENT_CIRCUIT_BREAKER_ENABLED"`
	HealthCheckIntervalSeconds int  `env:"ATTACHMENT_HEALTH_CHECK_INTERVAL_SECONDS" validate:"gte=0"`
}

// ApplyDefaults fills the optional settings left empty by the environment.
func (c *Config) ApplyDefaults() {
	if c.EnvName == "" {
		c.EnvName = constant.DefaultEnvName
	}

	if c.S3ConfigPath == "" {
		c.S3ConfigPath = constant.DefaultS3ConfigPath
	}

	if c.OtelLibraryName == "" {
		c.OtelLibraryName = constant.ApplicationName
	}
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}

		return fld.Name
	})

	return v
}

// Validate reports every invalid setting at once. LOG_LEVEL is checked here
// because the logger silently falls back to info on unknown levels.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		problems = append(problems, validationMessage(fieldErr))
	}

	return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "gte":
		return fmt.Sprintf("%s must not be negative", fieldErr.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fieldErr.Field(), fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fieldErr.Field(), fieldErr.Tag())
	}
}

// Options maps the environment onto per-model attachment options.
func (c *Config) Options() attachment.Options {
	return attachment.Options{
		PathPrefix: c.PathPrefix,
		S3Access:   c.S3Access,
		Cloudfront: c.Cloudfront,
		BucketKey:  c.BucketKey,
	}
}

// HealthCheckInterval returns the probe interval; zero selects the default.
func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalSeconds) * time.Second
}

// InitAttachmentStorage reads the environment and bucket configuration and
// wires the attachment adapter with logging, telemetry and metrics.
// Outside production a local .env file is loaded first.
func InitAttachmentStorage(ctx context.Context) (*Service, error) {
	libCommons.InitLocalEnvConfig()

	cfg, logger, err := initConfigAndLogger()
	if err != nil {
		return nil, err
	}

	telemetry, telemetryCleanup, err := initTelemetry(cfg, logger)
	if err != nil {
		return nil, err
	}

	service, err := NewService(ctx, cfg, logger, telemetry)
	if err != nil {
		telemetryCleanup()

		return nil, err
	}

	service.cleanups = append(service.cleanups, telemetryCleanup)

	return service, nil
}

// NewService builds the adapter for cfg. telemetry may be nil, in which case
// spans and metrics are discarded.
func NewService(ctx context.Context, cfg *Config, logger log.Logger, telemetry *libOtel.Telemetry) (*Service, error) {
	bucketConfig, err := attachment.LoadConfig(cfg.S3ConfigPath, cfg.EnvName)
	if err != nil {
		return nil, err
	}

	opts := bucketConfig.WithDefaults(cfg.Options())
	bucket := bucketConfig.ResolveBucket(opts.BucketKey)

	logger.Infof("Attachment storage configuration %s (%s): %v", cfg.S3ConfigPath, cfg.EnvName, bucketConfig.LogFields())

	store, monitor, err := initStorage(ctx, cfg, bucketConfig, bucket, logger)
	if err != nil {
		return nil, err
	}

	adapter, err := attachment.NewAdapter(store, bucketConfig, opts, attachment.WithMetrics(initMetrics(cfg, telemetry, logger)))
	if err != nil {
		return nil, err
	}

	service := &Service{
		Adapter: adapter,
		Logger:  logger,
		tracer:  initTracer(cfg, telemetry),
	}

	if monitor != nil {
		monitor.Start()

		service.healthMonitor = monitor
		service.cleanups = append(service.cleanups, monitor.Stop)
	}

	logger.Infof("Attachment storage initialized with bucket: %s (prefix %s)", bucket, opts.PathPrefix)

	return service, nil
}

// initConfigAndLogger loads configuration from environment variables, validates it,
// and initializes the structured logger.
func initConfigAndLogger() (*Config, log.Logger, error) {
	cfg := &Config{}
	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to load config from env vars: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := zap.InitializeLoggerWithError()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger, nil
}

// initTelemetry initializes OpenTelemetry and returns a cleanup function that
// shuts the providers down.
func initTelemetry(cfg *Config, logger log.Logger) (*libOtel.Telemetry, func(), error) {
	telemetry, err := libOtel.InitializeTelemetryWithError(&libOtel.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	cleanup := func() {
		logger.Info("Cleanup: shutting down telemetry")
		telemetry.ShutdownTelemetry()
	}

	return telemetry, cleanup, nil
}

// initStorage creates the S3 client for bucket, optionally guarded by a circuit
// breaker with a background bucket probe.
func initStorage(ctx context.Context, cfg *Config, bucketConfig *attachment.Config, bucket string, logger log.Logger) (storage.ObjectStorage, *storage.HealthMonitor, error) {
	s3Config := bucketConfig.S3Config(bucket)

	client, err := storage.NewS3Client(ctx, s3Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Infof("Storage client created: %s", s3Config)

	if !cfg.CircuitBreakerEnabled {
		return client, nil, nil
	}

	guarded := storage.NewBreakerStorage(client, logger)

	return guarded, storage.NewHealthMonitor(guarded, logger, cfg.HealthCheckInterval()), nil
}

// initMetrics registers the attachment counters on the telemetry meter provider.
// Noop instruments are returned when telemetry is disabled or registration fails.
func initMetrics(cfg *Config, telemetry *libOtel.Telemetry, logger log.Logger) *attachment.Metrics {
	if !cfg.EnableTelemetry || telemetry == nil || telemetry.MetricProvider == nil {
		logger.Info("Attachment metrics: using noop instruments (telemetry disabled)")
		return attachment.NoopMetrics()
	}

	m, err := attachment.NewMetrics(telemetry.MetricProvider.Meter(cfg.OtelLibraryName))
	if err != nil {
		logger.Errorf("Failed to create attachment metrics, falling back to noop: %v", err)
		return attachment.NoopMetrics()
	}

	logger.Info("Attachment metrics: 4 instruments registered (attachment_uploads_total, attachment_renames_total, attachment_deletes_total, attachment_operation_errors_total)")

	return m
}

// initTracer returns the tracer handed to callers through Service.Context.
func initTracer(cfg *Config, telemetry *libOtel.Telemetry) trace.Tracer {
	if !cfg.EnableTelemetry || telemetry == nil || telemetry.TracerProvider == nil {
		return noop.Tracer{}
	}

	return telemetry.TracerProvider.Tracer(cfg.OtelLibraryName)
}
