// Package models defines the persisted records for curated content.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Channel is a content source imported from the video platform.
type Channel struct {
	ID              surrealmodels.RecordID `json:"id"`
	ExternalID      string                 `json:"external_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description,omitempty"`
	ThumbnailURL    string                 `json:"thumbnail_url,omitempty"`
	SubscriberCount int64                  `json:"subscriber_count,omitempty"`
	ImportedBy      string                 `json:"imported_by,omitempty"`
	CreatedAt       time.Time              `json:"created_at,omitempty"`
}

// ChannelInput holds the fields for creating a channel record.
type ChannelInput struct {
	ExternalID      string `json:"external_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	SubscriberCount int64  `json:"subscriber_count,omitempty"`
	ImportedBy      string `json:"imported_by,omitempty"`
}
