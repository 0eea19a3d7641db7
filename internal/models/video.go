package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Video is one curated piece of content belonging to a channel.
type Video struct {
	ID           surrealmodels.RecordID `json:"id"`
	ExternalURL  string                 `json:"external_url"`
	ExternalID   string                 `json:"external_id"`
	ChannelID    string                 `json:"channel_id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	ThumbnailURL string                 `json:"thumbnail_url,omitempty"`
	DurationSecs int                    `json:"duration_secs,omitempty"`
	PublishedAt  time.Time              `json:"published_at,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Score        int                    `json:"score,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	CreatedAt    time.Time              `json:"created_at,omitempty"`
}

// VideoInput holds the fields for creating a video record.
type VideoInput struct {
	ExternalURL  string    `json:"external_url"`
	ExternalID   string    `json:"external_id"`
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	DurationSecs int       `json:"duration_secs,omitempty"`
	PublishedAt  time.Time `json:"published_at,omitempty"`
	Category     string    `json:"category,omitempty"`
	Score        int       `json:"score,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}
