package service

import (
	"context"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/internal/repository"
	"vtube-api/internal/storage"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
)

type videoService struct {
	videos  repository.VideoRepository
	media   MediaStorage
	cleanup MediaCleanup
	logger  *logger.Logger
}

// NewVideoService creates a new video service
func NewVideoService(videos repository.VideoRepository, media MediaStorage, cleanup MediaCleanup, log *logger.Logger) VideoService {
	return &videoService{
		videos:  videos,
		media:   media,
		cleanup: cleanup,
		logger:  log,
	}
}

// List returns one page of the video listing. An empty page is reported as
// not found.
func (s *videoService) List(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error) {
	items, err := s.videos.List(ctx, params, viewerID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list videos", err)
	}
	if len(items) == 0 {
		return nil, errors.NewNotFoundError("No videos found")
	}

	return items, nil
}

// Get returns one video with its owner profile. Unpublished videos are
// visible to their owner only.
func (s *videoService) Get(ctx context.Context, videoID, viewerID uuid.UUID) (*domain.VideoWithOwner, error) {
	video, err := s.videos.GetWithOwner(ctx, videoID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to get video", err)
	}
	if video == nil || (!video.IsPublished && video.OwnerID != viewerID) {
		return nil, errors.NewNotFoundError("Video not found")
	}

	return video, nil
}

// Publish uploads both staged files and creates the video record with the
// publication flag off.
func (s *videoService) Publish(ctx context.Context, ownerID uuid.UUID, title, description, videoPath, thumbnailPath string) (*domain.Video, error) {
	videoAsset, err := s.media.Upload(ctx, videoPath)
	if err != nil {
		return nil, errors.NewExternalError("Failed to upload video file", err)
	}

	thumbnailAsset, err := s.media.Upload(ctx, thumbnailPath)
	if err != nil {
		// The video asset is already stored; schedule it for deletion so
		// a half-failed publish does not leak it.
		s.scheduleCleanup(ctx, videoAsset.PublicID, storage.KindVideo)
		return nil, errors.NewExternalError("Failed to upload thumbnail", err)
	}

	video := &domain.Video{
		Title:             title,
		Description:       description,
		Duration:          videoAsset.Duration,
		VideoURL:          videoAsset.URL,
		VideoPublicID:     videoAsset.PublicID,
		ThumbnailURL:      thumbnailAsset.URL,
		ThumbnailPublicID: thumbnailAsset.PublicID,
		OwnerID:           ownerID,
		IsPublished:       false,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, errors.NewInternalError("Failed to create video record", err)
	}

	created, err := s.videos.GetByID(ctx, video.ID)
	if err != nil || created == nil {
		return nil, errors.NewInternalError("Video record missing after create", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"video_id": video.ID,
		"owner_id": ownerID,
	}).Info("Video published")

	return created, nil
}

// Update replaces title, description and thumbnail of an owned video. The
// previous thumbnail is scheduled for deletion after the database update.
func (s *videoService) Update(ctx context.Context, callerID, videoID uuid.UUID, title, description, thumbnailPath string) (*domain.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to get video", err)
	}
	if video == nil {
		return nil, errors.NewNotFoundError("Video not found")
	}
	if video.OwnerID != callerID {
		return nil, errors.NewAuthorizationError("Only the owner can edit this video")
	}

	thumbnailAsset, err := s.media.Upload(ctx, thumbnailPath)
	if err != nil {
		return nil, errors.NewExternalError("Failed to upload thumbnail", err)
	}

	updated, err := s.videos.Update(ctx, videoID, domain.VideoUpdate{
		Title:             title,
		Description:       description,
		ThumbnailURL:      thumbnailAsset.URL,
		ThumbnailPublicID: thumbnailAsset.PublicID,
	})
	if err != nil {
		return nil, errors.NewInternalError("Failed to update video", err)
	}
	if !updated {
		return nil, errors.NewInternalError("Video update applied to no rows", nil)
	}

	s.scheduleCleanup(ctx, video.ThumbnailPublicID, storage.KindImage)

	after, err := s.videos.GetByID(ctx, videoID)
	if err != nil || after == nil {
		return nil, errors.NewInternalError("Video record missing after update", err)
	}

	return after, nil
}

// Delete removes an owned video, its dependent likes and comments, and both
// stored media assets.
func (s *videoService) Delete(ctx context.Context, callerID, videoID uuid.UUID) error {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return errors.NewInternalError("Failed to get video", err)
	}
	if video == nil {
		return errors.NewNotFoundError("Video not found")
	}
	if video.OwnerID != callerID {
		return errors.NewAuthorizationError("Only the owner can delete this video")
	}

	deleted, err := s.videos.Delete(ctx, videoID)
	if err != nil {
		return errors.NewInternalError("Failed to delete video", err)
	}
	if !deleted {
		return errors.NewNotFoundError("Video not found")
	}

	s.scheduleCleanup(ctx, video.ThumbnailPublicID, storage.KindImage)
	s.scheduleCleanup(ctx, video.VideoPublicID, storage.KindVideo)

	s.logger.WithFields(map[string]interface{}{
		"video_id": videoID,
		"owner_id": callerID,
	}).Info("Video deleted")

	return nil
}

// TogglePublish flips the publication flag of an owned video
func (s *videoService) TogglePublish(ctx context.Context, callerID, videoID uuid.UUID) (*domain.PublishStatus, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to get video", err)
	}
	if video == nil {
		return nil, errors.NewNotFoundError("Video not found")
	}
	if video.OwnerID != callerID {
		return nil, errors.NewAuthorizationError("Only the owner can change the publish status")
	}

	isPublished, err := s.videos.TogglePublish(ctx, videoID, callerID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to toggle publish status", err)
	}
	if isPublished == nil {
		return nil, errors.NewInternalError("Publish toggle applied to no rows", nil)
	}

	return &domain.PublishStatus{IsPublished: *isPublished}, nil
}

// scheduleCleanup enqueues a stored asset for deletion; a queue failure is
// logged but never fails the request that triggered it.
func (s *videoService) scheduleCleanup(ctx context.Context, publicID string, kind storage.Kind) {
	if publicID == "" {
		return
	}
	if err := s.cleanup.Enqueue(ctx, publicID, kind); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"public_id":     publicID,
			"resource_type": string(kind),
		}).Warn("Failed to schedule media cleanup")
	}
}
