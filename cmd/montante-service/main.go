package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	mhttp "github.com/radieske/montante-tracker/internal/montante/http"
	"github.com/radieske/montante-tracker/internal/montante/producer"
	mrepo "github.com/radieske/montante-tracker/internal/montante/repo"
	"github.com/radieske/montante-tracker/internal/shared/config"
	"github.com/radieske/montante-tracker/internal/shared/db"
	"github.com/radieske/montante-tracker/internal/shared/kafka"
	"github.com/radieske/montante-tracker/internal/shared/logger"
	"github.com/radieske/montante-tracker/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("montante-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "montante-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres: toda a consistência do engine vive aqui
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka producers para os eventos de domínio (best-effort, pós-commit)
	ledgerWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerAppended)
	defer ledgerWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSequenceSettled)
	defer settledWriter.Close()
	publ := producer.NewKafkaPublisher(ledgerWriter, settledWriter)

	// Instancia repositório e servidor HTTP do engine
	repo := mrepo.NewPostgres(pg)
	api := mhttp.NewServer(log, repo, publ)

	// Servidor de métricas e health check em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Servidor principal da API de montantes
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8084
		Handler: api.Router(),
	}
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
