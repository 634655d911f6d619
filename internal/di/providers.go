package di

import (
	"context"
	"fmt"
	"time"

	"FeatMerge/internal/domain/models"
	"FeatMerge/internal/domain/repository"
	internalrepo "FeatMerge/internal/repository"
	"FeatMerge/internal/services/features"
	"FeatMerge/internal/services/merge"
	"FeatMerge/internal/usecase"
	"FeatMerge/pkg/cache"
	pkgch "FeatMerge/pkg/clickhouse"
	"FeatMerge/pkg/config"
	pkgkafka "FeatMerge/pkg/kafka"
	applogger "FeatMerge/pkg/logger"
	"FeatMerge/pkg/metrics"
	"FeatMerge/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideTimeframes parses the configured timeframe order.
func ProvideTimeframes(cfg *config.Config) ([]models.Timeframe, error) {
	return repository.ParseTimeframes(cfg.Timeframes)
}

// ProvideBarSource creates the file source of raw series.
func ProvideBarSource(cfg *config.Config, l *applogger.Logger) (repository.BarSource, error) {
	loc, err := time.LoadLocation(cfg.Data.Location)
	if err != nil {
		return nil, fmt.Errorf("data location: %w", err)
	}
	c := cfg.Data.Columns
	src := internalrepo.NewFileBarSource(internalrepo.FileSourceOptions{
		Dir:       cfg.Data.Dir,
		Pattern:   cfg.Data.FilePattern,
		Delimiter: cfg.Delimiter(),
		Columns: internalrepo.BarColumns{
			Date:   c.Date,
			Time:   c.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		},
		Layouts:  cfg.Data.TimestampLayouts,
		Location: loc,
	})
	src.SetLogger(l)
	return src, nil
}

// ProvideExtractor creates the feature table builder.
func ProvideExtractor(cfg *config.Config, src repository.BarSource, m repository.Metrics, l *applogger.Logger) *features.Extractor {
	ind := cfg.Indicators
	ex := features.NewExtractor(src, features.Windows{
		SMA:        ind.SMAWindow,
		EMA:        ind.EMAWindow,
		Bollinger:  ind.BollingerWindow,
		BollingerK: ind.BollingerK,
		VolumeMA:   ind.VolumeMAWindow,
	}, m)
	ex.SetLogger(l)
	return ex
}

// ProvideMerger creates the timeframe merger in configured fold order.
func ProvideMerger(tfs []models.Timeframe) *merge.Merger {
	return merge.NewMerger(tfs)
}

// ProvideTableSink creates the CSV sink and, when enabled, the ClickHouse sink.
func ProvideTableSink(cfg *config.Config, l *applogger.Logger) (repository.TableSink, func(), error) {
	csvSink := internalrepo.NewCSVTableSink(
		cfg.Output.Dir,
		cfg.Output.FileSuffix,
		cfg.Output.TimestampColumn,
		cfg.Output.TimestampLayout,
	)
	if !cfg.ClickHouse.Enabled {
		return csvSink, func() {}, nil
	}

	ch := cfg.ClickHouse
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(cfg.Workers+1, cfg.Workers),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, pkgch.MergedFeaturesSchema(ch.Database, ch.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	chSink := internalrepo.NewClickHouseTableSink(client, ch.Database, ch.Table, ch.BatchSize)
	chSink.SetLogger(l)
	l.Info("clickhouse sink ready", applogger.String("table", ch.Database+"."+ch.Table))

	sink := internalrepo.NewMultiSink(csvSink, chSink)
	cleanup := func() {
		if err := sink.Close(); err != nil {
			l.Warn("sink close error", applogger.Error(err))
		}
	}
	return sink, cleanup, nil
}

// ProvideOutcomePublisher combines the enabled outcome publishers (Redis status, Kafka events).
func ProvideOutcomePublisher(cfg *config.Config, l *applogger.Logger) (repository.OutcomePublisher, func(), error) {
	var pubs []repository.OutcomePublisher
	closeAll := func() {
		if err := internalrepo.NewMultiPublisher(pubs...).Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(context.Background(),
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis status store: %w", err)
		}
		pubs = append(pubs, internalrepo.NewRedisStatusStore(rc, cfg.Redis.TTL))
		l.Info("redis status store ready", applogger.String("addr", cfg.Redis.Addr))
	}

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		pubs = append(pubs, internalrepo.NewKafkaOutcomePublisher(producer, cfg.Kafka.Topic))
		l.Info("kafka publisher ready",
			applogger.Strings("brokers", cfg.Kafka.Brokers),
			applogger.String("topic", cfg.Kafka.Topic),
		)
	}

	return internalrepo.NewMultiPublisher(pubs...), closeAll, nil
}

// ProvideBatchRunner creates the batch use case.
func ProvideBatchRunner(
	cfg *config.Config,
	tfs []models.Timeframe,
	ex *features.Extractor,
	merger *merge.Merger,
	sink repository.TableSink,
	pub repository.OutcomePublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BatchRunner {
	r := usecase.NewBatchRunner(ex, merger, sink, pub, m, usecase.RunnerOptions{
		Symbols:    cfg.Symbols,
		Timeframes: tfs,
		Workers:    cfg.Workers,
		WriteEmpty: cfg.Output.WriteEmpty,
	})
	r.SetLogger(l)
	return r
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, runner *usecase.BatchRunner, rec *metrics.Recorder, l *applogger.Logger) *server.App {
	return server.New(cfg, runner, rec, l)
}
