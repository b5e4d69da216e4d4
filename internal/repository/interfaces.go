package repository

import (
	"context"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Exists reports whether a user with the given id exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// Toggle atomically subscribes or unsubscribes (subscriber, channel) and
	// reports the resulting state
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)

	// ListChannelSubscribers lists a channel's subscribers with derived
	// reciprocal-subscription and subscriber-count fields
	ListChannelSubscribers(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelSubscriber, error)

	// CountSubscribedChannels counts the channels a user follows
	CountSubscribedChannels(ctx context.Context, subscriberID uuid.UUID) (int64, error)
}

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	// Create inserts a video and fills its generated fields
	Create(ctx context.Context, video *domain.Video) error

	// GetByID retrieves a video by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)

	// GetWithOwner retrieves a video joined with its owner profile, nil when absent
	GetWithOwner(ctx context.Context, id uuid.UUID) (*domain.VideoWithOwner, error)

	// List runs the listing query for the given parameters
	List(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error)

	// Update applies a video update, reporting whether a row matched
	Update(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error)

	// Delete removes a video and its dependent likes and comments in one
	// transaction, reporting whether the video row existed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// TogglePublish flips the publication flag when the caller owns the
	// video, returning the new flag; nil when no row matched
	TogglePublish(ctx context.Context, id, ownerID uuid.UUID) (*bool, error)
}
