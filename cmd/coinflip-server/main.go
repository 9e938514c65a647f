package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/radieske/coinflip-platform/internal/httpapi"
	"github.com/radieske/coinflip-platform/internal/ledger"
	"github.com/radieske/coinflip-platform/internal/match"
	"github.com/radieske/coinflip-platform/internal/publisher"
	"github.com/radieske/coinflip-platform/internal/session"
	"github.com/radieske/coinflip-platform/internal/shared/cache"
	"github.com/radieske/coinflip-platform/internal/shared/config"
	"github.com/radieske/coinflip-platform/internal/shared/db"
	"github.com/radieske/coinflip-platform/internal/shared/kafka"
	"github.com/radieske/coinflip-platform/internal/shared/logger"
	"github.com/radieske/coinflip-platform/internal/shared/metrics"
	"github.com/radieske/coinflip-platform/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Inicializa logger estruturado
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sinks opcionais de eventos de partida; cada um só sobe se estiver configurado
	var (
		sinks  publisher.Fanout
		checks []metrics.HealthCheck
	)

	if cfg.KafkaBrokers != "" {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchEvents)
		defer writer.Close()
		sinks = append(sinks, publisher.NewKafka(writer, cfg.TopicMatchEvents))
		checks = append(checks, metrics.HealthCheck{Name: "kafka", Check: func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.KafkaBrokers)
		}})
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicMatchEvents))
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		sinks = append(sinks, publisher.NewRedis(rdb, cfg.RedisResultsChannel))
		checks = append(checks, metrics.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		log.Info("redis connected", zap.String("channel", cfg.RedisResultsChannel))
	}

	if cfg.PostgresDSN != "" {
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()
		journal := publisher.NewJournal(pg)
		if err := journal.EnsureSchema(ctx); err != nil {
			log.Fatal("postgres schema", zap.Error(err))
		}
		sinks = append(sinks, journal)
		checks = append(checks, metrics.HealthCheck{Name: "postgres", Check: pg.PingContext})
		log.Info("postgres connected")
	}

	// Métricas Prometheus
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gameMetrics := session.NewMetrics(reg)

	// Estado do jogo: só em memória, perdido ao reiniciar
	balances := ledger.New()
	matches := match.NewRegistry(balances, match.CryptoCoin{})

	allowAll := func(*http.Request) bool { return true }
	hub := ws.NewHub(log, allowAll)
	coord := session.New(log, balances, matches, hub, sinks, gameMetrics)

	api := &httpapi.API{
		Matches:   matches,
		Balances:  balances,
		WS:        hub.Handler(coord),
		StaticDir: cfg.StaticDir,
	}
	apiSrv := &http.Server{
		Addr:              ":" + config.GamePort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, func(err error) {
		log.Fatal("metrics srv", zap.Error(err))
	}, checks...)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("game server listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api srv", zap.Error(err))
	}
	log.Info("game server stopped")
}
