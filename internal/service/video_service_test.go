package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vtube-api/internal/domain"
	"vtube-api/internal/storage"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// stubVideoRepo implements repository.VideoRepository with function fields
type stubVideoRepo struct {
	createFn        func(ctx context.Context, video *domain.Video) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	getWithOwnerFn  func(ctx context.Context, id uuid.UUID) (*domain.VideoWithOwner, error)
	listFn          func(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error)
	updateFn        func(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) (bool, error)
	togglePublishFn func(ctx context.Context, id, ownerID uuid.UUID) (*bool, error)

	updateCalls int
	deleteCalls int
}

func (s *stubVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	return s.createFn(ctx, video)
}

func (s *stubVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubVideoRepo) GetWithOwner(ctx context.Context, id uuid.UUID) (*domain.VideoWithOwner, error) {
	return s.getWithOwnerFn(ctx, id)
}

func (s *stubVideoRepo) List(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error) {
	return s.listFn(ctx, params, viewerID)
}

func (s *stubVideoRepo) Update(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error) {
	s.updateCalls++
	return s.updateFn(ctx, id, upd)
}

func (s *stubVideoRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.deleteCalls++
	return s.deleteFn(ctx, id)
}

func (s *stubVideoRepo) TogglePublish(ctx context.Context, id, ownerID uuid.UUID) (*bool, error) {
	return s.togglePublishFn(ctx, id, ownerID)
}

// stubMedia implements MediaStorage
type stubMedia struct {
	uploadFn    func(ctx context.Context, localPath string) (*storage.Asset, error)
	uploadCalls []string
	destroyFn   func(ctx context.Context, publicID string, kind storage.Kind) error
}

func (s *stubMedia) Upload(ctx context.Context, localPath string) (*storage.Asset, error) {
	s.uploadCalls = append(s.uploadCalls, localPath)
	return s.uploadFn(ctx, localPath)
}

func (s *stubMedia) Destroy(ctx context.Context, publicID string, kind storage.Kind) error {
	if s.destroyFn != nil {
		return s.destroyFn(ctx, publicID, kind)
	}
	return nil
}

// recordingCleanup implements MediaCleanup
type recordingCleanup struct {
	enqueued []string
}

func (c *recordingCleanup) Enqueue(ctx context.Context, publicID string, kind storage.Kind) error {
	c.enqueued = append(c.enqueued, fmt.Sprintf("%s/%s", kind, publicID))
	return nil
}

func errType(t *testing.T, err error) errors.ErrorType {
	t.Helper()
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok, "expected *errors.AppError, got %T", err)
	return appErr.Type
}

func TestVideoServiceUpdate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	videoID := uuid.New()

	existing := &domain.Video{
		ID:                videoID,
		Title:             "old title",
		Description:       "old description",
		ThumbnailPublicID: "thumb-old",
		OwnerID:           owner,
	}

	t.Run("success schedules old thumbnail cleanup exactly once", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			updateFn: func(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error) {
				assert.Equal(t, "new title", upd.Title)
				assert.Equal(t, "thumb-new", upd.ThumbnailPublicID)
				return true, nil
			},
		}
		media := &stubMedia{
			uploadFn: func(ctx context.Context, localPath string) (*storage.Asset, error) {
				return &storage.Asset{URL: "https://cdn/thumb-new.jpg", PublicID: "thumb-new"}, nil
			},
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, media, cleanup, testLogger())

		video, err := svc.Update(ctx, owner, videoID, "new title", "new description", "/tmp/thumb")
		require.NoError(t, err)
		require.NotNil(t, video)
		assert.Equal(t, []string{"image/thumb-old"}, cleanup.enqueued)
	})

	t.Run("not owner fails before upload and mutation", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			updateFn: func(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error) {
				return true, nil
			},
		}
		media := &stubMedia{
			uploadFn: func(ctx context.Context, localPath string) (*storage.Asset, error) {
				return &storage.Asset{URL: "u", PublicID: "p"}, nil
			},
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, media, cleanup, testLogger())

		_, err := svc.Update(ctx, uuid.New(), videoID, "t", "d", "/tmp/thumb")
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeAuthorization, errType(t, err))
		assert.Empty(t, media.uploadCalls)
		assert.Zero(t, repo.updateCalls)
		assert.Empty(t, cleanup.enqueued)
	})

	t.Run("missing video is not found", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return nil, nil
			},
		}
		svc := NewVideoService(repo, &stubMedia{}, &recordingCleanup{}, testLogger())

		_, err := svc.Update(ctx, owner, videoID, "t", "d", "/tmp/thumb")
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeNotFound, errType(t, err))
	})

	t.Run("thumbnail upload failure is an external error", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
		}
		media := &stubMedia{
			uploadFn: func(ctx context.Context, localPath string) (*storage.Asset, error) {
				return nil, fmt.Errorf("storage unavailable")
			},
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, media, cleanup, testLogger())

		_, err := svc.Update(ctx, owner, videoID, "t", "d", "/tmp/thumb")
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeExternal, errType(t, err))
		assert.Zero(t, repo.updateCalls)
		assert.Empty(t, cleanup.enqueued)
	})
}

func TestVideoServiceDelete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	videoID := uuid.New()

	existing := &domain.Video{
		ID:                videoID,
		VideoPublicID:     "vid-1",
		ThumbnailPublicID: "thumb-1",
		OwnerID:           owner,
	}

	t.Run("success cascades and schedules both assets", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			deleteFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return true, nil
			},
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, &stubMedia{}, cleanup, testLogger())

		require.NoError(t, svc.Delete(ctx, owner, videoID))
		assert.Equal(t, []string{"image/thumb-1", "video/vid-1"}, cleanup.enqueued)
	})

	t.Run("not owner leaves everything untouched", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			deleteFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return true, nil
			},
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, &stubMedia{}, cleanup, testLogger())

		err := svc.Delete(ctx, uuid.New(), videoID)
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeAuthorization, errType(t, err))
		assert.Zero(t, repo.deleteCalls)
		assert.Empty(t, cleanup.enqueued)
	})
}

func TestVideoServicePublish(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("creates unpublished video from both assets", func(t *testing.T) {
		var created *domain.Video
		repo := &stubVideoRepo{
			createFn: func(ctx context.Context, video *domain.Video) error {
				created = video
				return nil
			},
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return created, nil
			},
		}
		media := &stubMedia{}
		media.uploadFn = func(ctx context.Context, localPath string) (*storage.Asset, error) {
			if len(media.uploadCalls) == 1 {
				return &storage.Asset{URL: "https://cdn/v.mp4", PublicID: "vid-1", Duration: 42.5}, nil
			}
			return &storage.Asset{URL: "https://cdn/t.jpg", PublicID: "thumb-1"}, nil
		}

		svc := NewVideoService(repo, media, &recordingCleanup{}, testLogger())

		video, err := svc.Publish(ctx, owner, "a title", "a description", "/tmp/v", "/tmp/t")
		require.NoError(t, err)
		assert.False(t, video.IsPublished)
		assert.Equal(t, owner, video.OwnerID)
		assert.Equal(t, 42.5, video.Duration)
		assert.Equal(t, "vid-1", video.VideoPublicID)
		assert.Equal(t, "thumb-1", video.ThumbnailPublicID)
	})

	t.Run("thumbnail failure schedules uploaded video asset for cleanup", func(t *testing.T) {
		repo := &stubVideoRepo{
			createFn: func(ctx context.Context, video *domain.Video) error { return nil },
		}
		media := &stubMedia{}
		media.uploadFn = func(ctx context.Context, localPath string) (*storage.Asset, error) {
			if len(media.uploadCalls) == 1 {
				return &storage.Asset{URL: "https://cdn/v.mp4", PublicID: "vid-1"}, nil
			}
			return nil, fmt.Errorf("storage unavailable")
		}
		cleanup := &recordingCleanup{}

		svc := NewVideoService(repo, media, cleanup, testLogger())

		_, err := svc.Publish(ctx, owner, "t", "d", "/tmp/v", "/tmp/t")
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeExternal, errType(t, err))
		assert.Equal(t, []string{"video/vid-1"}, cleanup.enqueued)
	})
}

func TestVideoServiceTogglePublish(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	videoID := uuid.New()

	existing := &domain.Video{ID: videoID, OwnerID: owner, IsPublished: false}

	t.Run("flips the flag", func(t *testing.T) {
		published := true
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			togglePublishFn: func(ctx context.Context, id, ownerID uuid.UUID) (*bool, error) {
				return &published, nil
			},
		}

		svc := NewVideoService(repo, &stubMedia{}, &recordingCleanup{}, testLogger())

		status, err := svc.TogglePublish(ctx, owner, videoID)
		require.NoError(t, err)
		assert.True(t, status.IsPublished)
	})

	t.Run("no matching row is internal", func(t *testing.T) {
		repo := &stubVideoRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
				return existing, nil
			},
			togglePublishFn: func(ctx context.Context, id, ownerID uuid.UUID) (*bool, error) {
				return nil, nil
			},
		}

		svc := NewVideoService(repo, &stubMedia{}, &recordingCleanup{}, testLogger())

		_, err := svc.TogglePublish(ctx, owner, videoID)
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeInternal, errType(t, err))
	})
}

func TestVideoServiceList(t *testing.T) {
	ctx := context.Background()
	viewer := uuid.New()

	t.Run("empty page is not found", func(t *testing.T) {
		repo := &stubVideoRepo{
			listFn: func(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error) {
				return nil, nil
			},
		}

		svc := NewVideoService(repo, &stubMedia{}, &recordingCleanup{}, testLogger())

		_, err := svc.List(ctx, domain.VideoListParams{Page: 1, Limit: 10}, viewer)
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeNotFound, errType(t, err))
	})

	t.Run("passes viewer through", func(t *testing.T) {
		repo := &stubVideoRepo{
			listFn: func(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error) {
				assert.Equal(t, viewer, viewerID)
				return []domain.VideoListItem{{Title: "one"}}, nil
			},
		}

		svc := NewVideoService(repo, &stubMedia{}, &recordingCleanup{}, testLogger())

		items, err := svc.List(ctx, domain.VideoListParams{Page: 1, Limit: 10}, viewer)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
