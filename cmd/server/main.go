package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pauloeilson-hash/ctrlpgto/internal/config"
	"github.com/pauloeilson-hash/ctrlpgto/internal/infra"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/router"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
	"github.com/pauloeilson-hash/ctrlpgto/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage backend ──────────────────────────────────────────────────────
	var kv store.KV
	var rdb *redis.Client

	switch cfg.StoreBackend {
	case "postgres":
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		kv, err = store.NewGormKV(db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare kv table")
		}
	case "redis":
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		kv = store.NewRedisKV(rdb)
	default:
		fileKV, err := store.NewFileKV(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare data dir")
		}
		kv = fileKV
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("storage ready")

	// Upgrade legacy payment collections before anything reads them.
	if err := store.RunMigrations(ctx, kv, store.PagamentosMigrations()); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// ── Collections and services ─────────────────────────────────────────────
	pagamentosCol := store.NewCollection[model.Pagamento](kv, store.KeyPagamentos)
	veiculosCol := store.NewCollection[model.Veiculo](kv, store.KeyVeiculos)
	abastecimentosCol := store.NewCollection[model.Abastecimento](kv, store.KeyAbastecimentos)
	produtosCol := store.NewCollection[model.Produto](kv, store.KeyEstoque)
	movimentacoesCol := store.NewCollection[model.Movimentacao](kv, store.KeyMovimentacoes)
	categoriasCol := store.NewCollection[model.Categoria](kv, store.KeyCategorias).
		WithSeed(model.CategoriasPadrao)

	pagamentosSvc := service.NewPagamentoService(pagamentosCol)
	frotaSvc := service.NewFrotaService(veiculosCol, abastecimentosCol)
	estoqueSvc := service.NewEstoqueService(produtosCol, movimentacoesCol, categoriasCol)
	backupsSvc := service.NewBackupService(kv)

	// ── Backup workers ───────────────────────────────────────────────────────
	runner := &worker.BackupRunner{
		Pagamentos: pagamentosSvc,
		Frota:      frotaSvc,
		Estoque:    estoqueSvc,
		Backups:    backupsSvc,
		Dir:        cfg.BackupDir,
	}

	var dispatcher *worker.Dispatcher
	if rdb == nil && cfg.RedisURL != "" {
		// A queue can run next to the file or postgres backend when Redis
		// is reachable.
		if queueRdb, err := infra.NewRedis(cfg.RedisURL); err == nil {
			rdb = queueRdb
		} else {
			log.Warn().Err(err).Msg("redis unavailable, backups run inline")
		}
	}
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, runner)
	}
	worker.StartBackupScheduler(ctx, worker.SchedulerConfig{
		Backups:    backupsSvc,
		Dispatcher: dispatcher,
		Runner:     runner,
	})

	// ── HTTP ─────────────────────────────────────────────────────────────────
	drive := infra.NewDriveClient(infra.DriveConfig{
		ClientID:     cfg.DriveClientID,
		ClientSecret: cfg.DriveClientSecret,
		RedirectURL:  cfg.DriveRedirectURL,
	})

	r := router.New(cfg, router.Deps{
		KV:         kv,
		Pagamentos: pagamentosSvc,
		Frota:      frotaSvc,
		Estoque:    estoqueSvc,
		Backups:    backupsSvc,
		Drive:      drive,
		DriveCB:    infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("ctrlpgto backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
