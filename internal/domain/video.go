package domain

import (
	"time"

	"github.com/google/uuid"
)

// Video represents an uploaded video and its stored media assets.
type Video struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Duration          float64   `json:"duration"`
	VideoURL          string    `json:"videoUrl"`
	VideoPublicID     string    `json:"-"`
	ThumbnailURL      string    `json:"thumbnailUrl"`
	ThumbnailPublicID string    `json:"-"`
	OwnerID           uuid.UUID `json:"ownerId"`
	IsPublished       bool      `json:"isPublished"`
	CreatedAt         time.Time `json:"createdAt"`
}

// VideoWithOwner is a video joined with its owner's public profile.
type VideoWithOwner struct {
	Video
	Owner UserProfile `json:"owner"`
}

// VideoListItem is the projected shape returned by the listing endpoint.
type VideoListItem struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Duration     float64     `json:"duration"`
	VideoURL     string      `json:"videoUrl"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	CreatedAt    time.Time   `json:"createdAt"`
	Owner        UserProfile `json:"owner"`
}

// VideoListParams captures the listing filters after parsing and defaulting.
type VideoListParams struct {
	Page     int
	Limit    int
	Query    string
	OwnerID  *uuid.UUID
	SortBy   string
	SortType string
}

// VideoUpdate carries the mutable fields of a video update.
type VideoUpdate struct {
	Title             string
	Description       string
	ThumbnailURL      string
	ThumbnailPublicID string
}

// PublishStatus reports the publication flag after a toggle.
type PublishStatus struct {
	IsPublished bool `json:"isPublished"`
}
