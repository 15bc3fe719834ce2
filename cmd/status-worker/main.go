package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/audit"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
	lrepo "github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/repo"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/config"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/db"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/kafka"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/logger"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/metrics"
	"github.com/radieske/nft-market-backoffice-poc/internal/status-worker/consumer"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("status-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: eventos de mudança de status vindos do painel
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicStatusChanged, "status-worker")
	defer reader.Close()

	// Kafka producers: auditoria do ledger e DLQ
	mutWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBalanceMutations)
	defer mutWriter.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicStatusChangedDLQ)
	defer dlqWriter.Close()

	// deps
	store := lrepo.NewPostgres(pg)
	svc := ledger.New(log, store, audit.NewKafkaPublisher(mutWriter))

	// Servidor de métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("status-worker started",
		zap.String("consume", cfg.TopicStatusChanged),
		zap.String("dlq", cfg.TopicStatusChangedDLQ),
	)

	p := &consumer.Processor{
		Log:    log,
		Reader: reader,
		Svc:    svc,
		DLQ:    dlqWriter,
	}
	if err := p.Run(context.Background()); err != nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
}
