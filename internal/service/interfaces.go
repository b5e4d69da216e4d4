package service

import (
	"context"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/internal/storage"
)

// MediaStorage is the storage-gateway surface the services depend on
type MediaStorage interface {
	// Upload sends a locally staged file to the storage service
	Upload(ctx context.Context, localPath string) (*storage.Asset, error)

	// Destroy deletes a stored asset by public id
	Destroy(ctx context.Context, publicID string, kind storage.Kind) error
}

// MediaCleanup schedules storage-gateway deletions for retry-backed processing
type MediaCleanup interface {
	// Enqueue schedules an asset for deletion
	Enqueue(ctx context.Context, publicID string, kind storage.Kind) error
}

// SubscriptionService defines subscription operations
type SubscriptionService interface {
	// Toggle subscribes or unsubscribes the caller to a channel
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (*domain.ToggleResult, error)

	// ListSubscribers lists a channel's subscribers with derived fields
	ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelSubscriber, error)

	// CountSubscribed counts the channels the caller follows
	CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscribedChannelCount, error)
}

// VideoService defines video operations
type VideoService interface {
	// List returns a page of videos for the given filters
	List(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error)

	// Get returns one video with its owner profile
	Get(ctx context.Context, videoID, viewerID uuid.UUID) (*domain.VideoWithOwner, error)

	// Publish uploads both staged files and creates the video record
	Publish(ctx context.Context, ownerID uuid.UUID, title, description, videoPath, thumbnailPath string) (*domain.Video, error)

	// Update replaces title, description and thumbnail of an owned video
	Update(ctx context.Context, callerID, videoID uuid.UUID, title, description, thumbnailPath string) (*domain.Video, error)

	// Delete removes an owned video, its dependents and its stored assets
	Delete(ctx context.Context, callerID, videoID uuid.UUID) error

	// TogglePublish flips the publication flag of an owned video
	TogglePublish(ctx context.Context, callerID, videoID uuid.UUID) (*domain.PublishStatus, error)
}
