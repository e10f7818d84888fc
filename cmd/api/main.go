// Executável principal da API: carrega a configuração, monta o store
// escolhido e sobe o servidor HTTP com API, UI, readiness e métricas.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquetes/internal/app/enquetes"
	"github.com/marcelojr/enquetes/internal/app/httpapi"
	"github.com/marcelojr/enquetes/internal/app/web"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/antifraude"
	"github.com/marcelojr/enquetes/internal/platform/clock"
	"github.com/marcelojr/enquetes/internal/platform/config"
	"github.com/marcelojr/enquetes/internal/platform/health"
	"github.com/marcelojr/enquetes/internal/platform/logger"
	"github.com/marcelojr/enquetes/internal/platform/migrations"
	"github.com/marcelojr/enquetes/internal/platform/storage/jsonfile"
	redisstorage "github.com/marcelojr/enquetes/internal/platform/storage/redis"
	"github.com/marcelojr/enquetes/internal/platform/storage/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}

	// O arquivo JSON é o backend padrão; sqlite/postgres entram pela mesma
	// interface quando configurados, sem mudar o serviço.
	var store domain.EnqueteStore
	var sqlDB *sql.DB

	switch cfg.StoreDriver {
	case config.StoreJSONFile:
		store = jsonfile.New(cfg.DataFile, logger.L())
	default:
		dsn := cfg.SQLiteDSN
		if cfg.StoreDriver == config.StorePostgres {
			dsn = cfg.PostgresDSN()
		}

		db, err := sqlstore.Abrir(ctx, cfg.StoreDriver, dsn)
		if err != nil {
			logger.Fatal("falha ao conectar no banco", "driver", cfg.StoreDriver, "err", err)
		}
		sqlDB, err = db.DB()
		if err != nil {
			logger.Fatal("falha ao resgatar sql.DB", "err", err)
		}
		defer sqlDB.Close()

		if cfg.AutoMigrate {
			// Migrations automáticas apenas se habilitado para evitar surpresas em produção.
			if err := migrations.Run(db); err != nil {
				logger.Fatal("falha na migracao automatica", "err", err)
			}
		}

		store = sqlstore.New(db)
	}

	// Redis só é exigido quando o rate limit de votos está ligado.
	var redisClient *goredis.Client
	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		redisClient, err = redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("falha ao conectar no redis", "err", err)
		}
		defer redisClient.Close()

		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, window, cfg.RateLimitKeyPrefix)
	}

	servico := enquetes.NewService(store, clock.NewSystemClock(), antifraudeSvc)

	mux := http.NewServeMux()
	checker := health.NewChecker(store, sqlDB, redisClient)

	// HTTP expõe API, UI, health check e métricas que o Prometheus coleta.
	api := httpapi.New(servico, logger.L())
	api.Register(mux)

	frontend, err := web.New(servico)
	if err != nil {
		logger.Fatal("erro ao carregar templates", "err", err)
	}
	frontend.Register(mux)

	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "store", cfg.StoreDriver)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("erro no servidor", "err", err)
	}
}
