package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vtube-api/internal/domain"
	"vtube-api/pkg/database"
)

type PostgresVideoRepository struct {
	db *database.PostgresDB
}

func NewVideoRepository(db *database.PostgresDB) *PostgresVideoRepository {
	return &PostgresVideoRepository{db: db}
}

// Create inserts a new video record
func (r *PostgresVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}

	query := `
		INSERT INTO videos (
			id, title, description, duration,
			video_url, video_public_id, thumbnail_url, thumbnail_public_id,
			owner_id, is_published
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID,
		video.Title,
		video.Description,
		video.Duration,
		video.VideoURL,
		video.VideoPublicID,
		video.ThumbnailURL,
		video.ThumbnailPublicID,
		video.OwnerID,
		video.IsPublished,
	).Scan(&video.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID gets a video by id
func (r *PostgresVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	query := `
		SELECT id, title, description, duration,
		       video_url, video_public_id, thumbnail_url, thumbnail_public_id,
		       owner_id, is_published, created_at
		FROM videos
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.Duration,
		&video.VideoURL,
		&video.VideoPublicID,
		&video.ThumbnailURL,
		&video.ThumbnailPublicID,
		&video.OwnerID,
		&video.IsPublished,
		&video.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

// GetWithOwner gets a video joined with its owner's public profile
func (r *PostgresVideoRepository) GetWithOwner(ctx context.Context, id uuid.UUID) (*domain.VideoWithOwner, error) {
	var v domain.VideoWithOwner
	query := `
		SELECT v.id, v.title, v.description, v.duration,
		       v.video_url, v.video_public_id, v.thumbnail_url, v.thumbnail_public_id,
		       v.owner_id, v.is_published, v.created_at,
		       u.id, u.username, u.full_name, u.avatar_url
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE v.id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&v.Duration,
		&v.VideoURL,
		&v.VideoPublicID,
		&v.ThumbnailURL,
		&v.ThumbnailPublicID,
		&v.OwnerID,
		&v.IsPublished,
		&v.CreatedAt,
		&v.Owner.ID,
		&v.Owner.Username,
		&v.Owner.FullName,
		&v.Owner.AvatarURL,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video with owner: %w", err)
	}

	return &v, nil
}

// List runs the listing query built by buildVideoListQuery
func (r *PostgresVideoRepository) List(ctx context.Context, params domain.VideoListParams, viewerID uuid.UUID) ([]domain.VideoListItem, error) {
	query, args := buildVideoListQuery(params, viewerID)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	items := make([]domain.VideoListItem, 0)
	for rows.Next() {
		var item domain.VideoListItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Duration,
			&item.VideoURL,
			&item.ThumbnailURL,
			&item.CreatedAt,
			&item.Owner.ID,
			&item.Owner.Username,
			&item.Owner.FullName,
			&item.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read video rows: %w", err)
	}

	return items, nil
}

// Update sets title, description and thumbnail reference in one statement
func (r *PostgresVideoRepository) Update(ctx context.Context, id uuid.UUID, upd domain.VideoUpdate) (bool, error) {
	query := `
		UPDATE videos
		SET title = $2, description = $3, thumbnail_url = $4, thumbnail_public_id = $5
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		id,
		upd.Title,
		upd.Description,
		upd.ThumbnailURL,
		upd.ThumbnailPublicID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update video: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the video together with its dependent likes and comments.
// The three deletes share one transaction so a failure leaves no orphans.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE video_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete video likes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete video comments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete video: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit video delete: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// TogglePublish flips the publication flag. Ownership rides in the WHERE
// clause so the check and the mutation cannot race.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id, ownerID uuid.UUID) (*bool, error) {
	var isPublished bool
	query := `
		UPDATE videos
		SET is_published = NOT is_published
		WHERE id = $1 AND owner_id = $2
		RETURNING is_published
	`

	err := r.db.Pool.QueryRow(ctx, query, id, ownerID).Scan(&isPublished)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle publish status: %w", err)
	}

	return &isPublished, nil
}
