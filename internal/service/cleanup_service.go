package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vtube-api/internal/storage"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/redis"
)

const (
	cleanupMaxAttempts  = 5
	cleanupPollInterval = 2 * time.Second
	cleanupCallTimeout  = 10 * time.Second
)

// cleanupJob is one pending storage-gateway deletion.
type cleanupJob struct {
	PublicID string `json:"publicId"`
	Kind     string `json:"kind"`
	Attempts int    `json:"attempts"`
}

// CleanupService drains a redis-backed queue of storage-gateway deletions.
// Deletions are awaited and retried with backoff; a job that keeps failing
// is dropped with a warning after cleanupMaxAttempts.
type CleanupService struct {
	redis     *redis.Client
	destroyer MediaStorage
	logger    *logger.Logger
	queueKey  string

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCleanupService creates a new media cleanup service
func NewCleanupService(redisClient *redis.Client, destroyer MediaStorage, log *logger.Logger) *CleanupService {
	return &CleanupService{
		redis:     redisClient,
		destroyer: destroyer,
		logger:    log,
		queueKey:  redisClient.KeyBuilder.KeyMediaCleanupQueue(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Enqueue schedules an asset for deletion
func (s *CleanupService) Enqueue(ctx context.Context, publicID string, kind storage.Kind) error {
	return s.enqueueJob(ctx, cleanupJob{PublicID: publicID, Kind: string(kind)})
}

func (s *CleanupService) enqueueJob(ctx context.Context, job cleanupJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup job: %w", err)
	}
	if err := s.redis.LPush(ctx, s.queueKey, payload); err != nil {
		return fmt.Errorf("failed to enqueue cleanup job: %w", err)
	}
	return nil
}

// Start launches the background worker
func (s *CleanupService) Start(ctx context.Context) error {
	go s.run()
	s.logger.Info("Media cleanup service started")
	return nil
}

// Stop signals the worker and waits for it to drain its current job
func (s *CleanupService) Stop(ctx context.Context) error {
	close(s.stopCh)
	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CleanupService) run() {
	defer close(s.doneCh)
	ctx := context.Background()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if _, err := s.ProcessNext(ctx); err != nil {
			s.logger.WithError(err).Warn("Media cleanup pass failed")
			// avoid a tight loop when redis is unreachable
			select {
			case <-s.stopCh:
				return
			case <-time.After(cleanupPollInterval):
			}
		}
	}
}

// ProcessNext pops and processes one job, blocking up to the poll interval.
// It reports whether a job was handled.
func (s *CleanupService) ProcessNext(ctx context.Context) (bool, error) {
	payload, err := s.redis.BRPop(ctx, cleanupPollInterval, s.queueKey)
	if err != nil {
		if redis.IsNil(err) {
			return false, nil
		}
		return false, err
	}

	var job cleanupJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		s.logger.WithError(err).Warn("Dropping malformed cleanup job")
		return true, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, cleanupCallTimeout)
	err = s.destroyer.Destroy(callCtx, job.PublicID, storage.Kind(job.Kind))
	cancel()

	if err == nil {
		s.logger.WithField("public_id", job.PublicID).Debug("Cleaned up stored asset")
		return true, nil
	}

	job.Attempts++
	if job.Attempts >= cleanupMaxAttempts {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"public_id":     job.PublicID,
			"resource_type": job.Kind,
			"attempts":      job.Attempts,
		}).Warn("Giving up on media cleanup job")
		return true, nil
	}

	// bounded backoff before the job becomes visible again
	select {
	case <-time.After(time.Duration(job.Attempts) * time.Second):
	case <-s.stopCh:
	}

	if enqueueErr := s.enqueueJob(ctx, job); enqueueErr != nil {
		s.logger.WithError(enqueueErr).WithField("public_id", job.PublicID).Warn("Failed to re-enqueue cleanup job")
	}
	return true, nil
}
