package worker

// scheduler.go
// Background goroutine that triggers automatic backups when the configured
// frequency says one is due. With Redis available the work is enqueued for
// the pool; without it the runner executes inline.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
)

const scheduleTickInterval = time.Minute

// SchedulerConfig holds the scheduler's dependencies. Dispatcher may be nil.
type SchedulerConfig struct {
	Backups    service.BackupService
	Dispatcher *Dispatcher
	Runner     *BackupRunner
}

// StartBackupScheduler launches the scheduling goroutine. It respects the
// context for graceful shutdown.
func StartBackupScheduler(ctx context.Context, cfg SchedulerConfig) {
	go func() {
		ticker := time.NewTicker(scheduleTickInterval)
		defer ticker.Stop()

		log.Info().Msg("backup scheduler: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("backup scheduler: shutting down")
				return
			case <-ticker.C:
				tick(ctx, cfg)
			}
		}
	}()
}

func tick(ctx context.Context, cfg SchedulerConfig) {
	conf, err := cfg.Backups.Config(ctx)
	if err != nil {
		log.Error().Err(err).Msg("backup scheduler: load config")
		return
	}

	now := time.Now().UTC()
	if !conf.DeveFazerBackup(now) {
		return
	}

	log.Info().Str("frequencia", conf.Frequencia).Msg("backup scheduler: backup due")

	if cfg.Dispatcher != nil {
		for _, dominio := range []string{DominioPagamentos, DominioFrota, DominioEstoque} {
			if err := cfg.Dispatcher.EnqueueBackup(ctx, dominio); err != nil {
				log.Error().Str("dominio", dominio).Err(err).Msg("backup scheduler: enqueue")
				return
			}
		}
	} else if err := cfg.Runner.RunAll(ctx); err != nil {
		log.Error().Err(err).Msg("backup scheduler: run")
		return
	}

	// Stamp only after the work was handed off so a failed tick retries.
	if err := cfg.Backups.MarcarExecutado(ctx, now); err != nil {
		log.Error().Err(err).Msg("backup scheduler: stamp")
	}
}
