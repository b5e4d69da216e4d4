package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vtube-api/internal/storage"
	"vtube-api/pkg/redis"
)

// countingDestroyer implements MediaStorage for cleanup tests
type countingDestroyer struct {
	mu       sync.Mutex
	calls    []string
	failures int
}

func (d *countingDestroyer) Upload(ctx context.Context, localPath string) (*storage.Asset, error) {
	return nil, fmt.Errorf("not used")
}

func (d *countingDestroyer) Destroy(ctx context.Context, publicID string, kind storage.Kind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf("%s/%s", kind, publicID))
	if d.failures > 0 {
		d.failures--
		return fmt.Errorf("storage unavailable")
	}
	return nil
}

func setupCleanup(t *testing.T, destroyer MediaStorage) (*miniredis.Miniredis, *redis.Client, *CleanupService) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, client, NewCleanupService(client, destroyer, testLogger())
}

func TestCleanupServiceProcessesJob(t *testing.T) {
	ctx := context.Background()
	destroyer := &countingDestroyer{}
	_, client, svc := setupCleanup(t, destroyer)

	require.NoError(t, svc.Enqueue(ctx, "thumb-1", storage.KindImage))

	handled, err := svc.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"image/thumb-1"}, destroyer.calls)

	// queue is drained
	n, err := client.LLen(ctx, client.KeyBuilder.KeyMediaCleanupQueue())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleanupServiceRetriesFailedJob(t *testing.T) {
	ctx := context.Background()
	destroyer := &countingDestroyer{failures: 1}
	_, client, svc := setupCleanup(t, destroyer)

	require.NoError(t, svc.Enqueue(ctx, "vid-1", storage.KindVideo))

	handled, err := svc.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)

	// the failed job went back on the queue with one attempt recorded
	payload, err := client.BRPop(ctx, cleanupPollInterval, client.KeyBuilder.KeyMediaCleanupQueue())
	require.NoError(t, err)

	var job cleanupJob
	require.NoError(t, json.Unmarshal([]byte(payload), &job))
	assert.Equal(t, "vid-1", job.PublicID)
	assert.Equal(t, 1, job.Attempts)
}

func TestCleanupServiceGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	destroyer := &countingDestroyer{failures: 1}
	_, client, svc := setupCleanup(t, destroyer)

	job := cleanupJob{PublicID: "thumb-1", Kind: "image", Attempts: cleanupMaxAttempts - 1}
	require.NoError(t, svc.enqueueJob(ctx, job))

	handled, err := svc.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)

	// terminal failure: dropped, not re-enqueued
	n, err := client.LLen(ctx, client.KeyBuilder.KeyMediaCleanupQueue())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleanupServiceDropsMalformedJob(t *testing.T) {
	ctx := context.Background()
	destroyer := &countingDestroyer{}
	_, client, svc := setupCleanup(t, destroyer)

	require.NoError(t, client.LPush(ctx, client.KeyBuilder.KeyMediaCleanupQueue(), "not-json"))

	handled, err := svc.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, destroyer.calls)
}

func TestCleanupServiceStartStop(t *testing.T) {
	ctx := context.Background()
	destroyer := &countingDestroyer{}
	_, _, svc := setupCleanup(t, destroyer)

	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Stop(ctx))
}
