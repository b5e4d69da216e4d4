package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription links a subscriber to a channel. A channel is itself a user
// account; at most one row exists per (subscriber, channel) pair, enforced by
// a unique constraint.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	SubscriberID uuid.UUID `json:"subscriberId"`
	ChannelID    uuid.UUID `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToggleResult reports the state after a subscribe/unsubscribe toggle.
type ToggleResult struct {
	Subscribed bool `json:"subscribed"`
}

// ChannelSubscriber is one entry of a channel's subscriber listing: the
// subscriber's public profile plus two derived fields.
type ChannelSubscriber struct {
	Subscriber UserProfile `json:"subscriber"`

	// SubscribedToSubscriber is true when the listed channel itself
	// subscribes to this subscriber.
	SubscribedToSubscriber bool `json:"subscribedToSubscriber"`

	// SubscribersCount is the number of subscribers this subscriber has on
	// their own channel.
	SubscribersCount int64 `json:"subscribersCount"`
}

// SubscribedChannelCount is the number of channels a user follows.
type SubscribedChannelCount struct {
	Count int64 `json:"count"`
}
