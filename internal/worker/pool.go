package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueBackup = "jobs:backup"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// BackupPayload names the domain whose collections get snapshotted.
type BackupPayload struct {
	Dominio string `json:"dominio"` // pagamentos | frota | estoque
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueBackup pushes a backup job for one domain.
func (d *Dispatcher) EnqueueBackup(ctx context.Context, dominio string) error {
	payload, err := json.Marshal(BackupPayload{Dominio: dominio})
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: "backup", Payload: payload})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueBackup, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the backup queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, runner *BackupRunner) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, runner)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, runner *BackupRunner) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueBackup).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], runner)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, runner *BackupRunner) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var payload BackupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "invalid payload: "+err.Error(), 1)
		return
	}

	log.Info().Str("type", job.Type).Str("dominio", payload.Dominio).Msg("processing job")
	if err := runner.Run(ctx, payload.Dominio); err != nil {
		log.Error().Str("dominio", payload.Dominio).Err(err).Msg("backup job failed")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
	}
}
