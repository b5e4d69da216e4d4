package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/pkg/database"
)

type PostgresSubscriptionRepository struct {
	db *database.PostgresDB
}

func NewSubscriptionRepository(db *database.PostgresDB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Toggle subscribes or unsubscribes in a single transaction. The delete and
// the conflict-guarded insert together with the UNIQUE (subscriber_id,
// channel_id) constraint make concurrent toggles settle on exactly one row
// or none, never duplicates.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM subscriptions
		WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	subscribed := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO subscriptions (id, subscriber_id, channel_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (subscriber_id, channel_id) DO NOTHING
		`, uuid.New(), subscriberID, channelID)
		if err != nil {
			return false, fmt.Errorf("failed to create subscription: %w", err)
		}
		subscribed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit subscription toggle: %w", err)
	}

	return subscribed, nil
}

// ListChannelSubscribers returns the channel's subscribers with their public
// profile, whether the channel subscribes back, and each subscriber's own
// subscriber count. The derived fields are computed by the database in one
// query; ordering is database-determined.
func (r *PostgresSubscriptionRepository) ListChannelSubscribers(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelSubscriber, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.avatar_url,
		       EXISTS (
		           SELECT 1 FROM subscriptions back
		           WHERE back.channel_id = u.id AND back.subscriber_id = $1
		       ) AS subscribed_to_subscriber,
		       (
		           SELECT COUNT(*) FROM subscriptions own
		           WHERE own.channel_id = u.id
		       ) AS subscribers_count
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
	`

	rows, err := r.db.Pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]domain.ChannelSubscriber, 0)
	for rows.Next() {
		var entry domain.ChannelSubscriber
		if err := rows.Scan(
			&entry.Subscriber.ID,
			&entry.Subscriber.Username,
			&entry.Subscriber.FullName,
			&entry.Subscriber.AvatarURL,
			&entry.SubscribedToSubscriber,
			&entry.SubscribersCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber row: %w", err)
		}
		subscribers = append(subscribers, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriber rows: %w", err)
	}

	return subscribers, nil
}

// CountSubscribedChannels counts the channels a user follows. Zero is a
// valid result.
func (r *PostgresSubscriptionRepository) CountSubscribedChannels(ctx context.Context, subscriberID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`

	if err := r.db.Pool.QueryRow(ctx, query, subscriberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribed channels: %w", err)
	}

	return count, nil
}
