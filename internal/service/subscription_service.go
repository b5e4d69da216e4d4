package service

import (
	"context"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/internal/repository"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
)

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	logger        *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subscriptions repository.SubscriptionRepository, users repository.UserRepository, log *logger.Logger) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		users:         users,
		logger:        log,
	}
}

// Toggle subscribes the caller to the channel, or unsubscribes when a
// subscription already exists.
func (s *subscriptionService) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (*domain.ToggleResult, error) {
	exists, err := s.users.Exists(ctx, channelID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to look up channel", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("Channel not found")
	}

	subscribed, err := s.subscriptions.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to toggle subscription", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"channel_id":    channelID,
		"subscribed":    subscribed,
	}).Info("Subscription toggled")

	return &domain.ToggleResult{Subscribed: subscribed}, nil
}

// ListSubscribers lists a channel's subscribers
func (s *subscriptionService) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelSubscriber, error) {
	exists, err := s.users.Exists(ctx, channelID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to look up channel", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("Channel not found")
	}

	subscribers, err := s.subscriptions.ListChannelSubscribers(ctx, channelID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list channel subscribers", err)
	}

	return subscribers, nil
}

// CountSubscribed counts the channels the caller follows. A caller who
// follows no channels gets a zero count, not an error.
func (s *subscriptionService) CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscribedChannelCount, error) {
	count, err := s.subscriptions.CountSubscribedChannels(ctx, subscriberID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count subscribed channels", err)
	}

	return &domain.SubscribedChannelCount{Count: count}, nil
}
