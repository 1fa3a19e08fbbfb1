package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/montante-tracker/internal/projector"
	sharedcache "github.com/radieske/montante-tracker/internal/shared/cache"
	"github.com/radieske/montante-tracker/internal/shared/config"
	"github.com/radieske/montante-tracker/internal/shared/kafka"
	"github.com/radieske/montante-tracker/internal/shared/logger"
	"github.com/radieske/montante-tracker/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bankroll-projector-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis guarda a projeção de leitura do bankroll
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	store := projector.NewRedisSnapshotStore(redisClient, 24*time.Hour)

	// Consumer Kafka dos eventos de ledger (consumer group bankroll-projector)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "bankroll-projector",
		Topic:    cfg.TopicLedgerAppended,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ para mensagens indecifráveis
	var dlqWriter *kafkago.Writer
	if cfg.TopicLedgerAppendedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerAppendedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento da projeção
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bankroll_proj_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "bankroll_proj_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bankroll_proj_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, errorsBy)

	proc := &projector.Processor{
		Log:    log,
		Reader: reader,
		Store:  store,
		DLQ:    dlqWriter,

		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bankroll-projector started", zap.String("consume", cfg.TopicLedgerAppended))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("projector stopped with error", zap.Error(err))
	}
	log.Info("bankroll-projector stopped")
}
