package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	ccache "github.com/radieske/nft-market-backoffice-poc/internal/catalog/cache"
	cataloghttp "github.com/radieske/nft-market-backoffice-poc/internal/catalog/http"
	catalogrepo "github.com/radieske/nft-market-backoffice-poc/internal/catalog/repo"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/audit"
	lhttp "github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/http"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
	lrepo "github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/repo"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/cache"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/config"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/db"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/kafka"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/logger"
	"github.com/radieske/nft-market-backoffice-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("backoffice-api", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de leitura do catálogo)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}

	// Kafka writer: eventos de auditoria do ledger
	mutWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBalanceMutations)
	defer mutWriter.Close()

	// deps
	store := lrepo.NewPostgres(pg)
	publ := audit.NewKafkaPublisher(mutWriter)
	svc := ledger.New(log, store, publ)

	ledgerAPI := lhttp.NewServer(log, svc)
	catalogAPI := &cataloghttp.API{
		ReadRepo: &catalogrepo.ReadRepo{DB: pg},
		Cache:    ccache.New(rdb),
	}

	root := chi.NewRouter()
	root.Mount("/", ledgerAPI.Router())
	root.Mount("/v1/items", catalogAPI.Router())

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: root,
	}

	// Servidor de métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
