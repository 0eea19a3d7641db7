package store

import (
	"context"
	"fmt"

	"github.com/mindtube/curator/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// ChannelByExternalID returns the channel with the given platform ID,
// or nil if none exists.
func (c *Client) ChannelByExternalID(ctx context.Context, externalID string) (*models.Channel, error) {
	results, err := surrealdb.Query[[]models.Channel](ctx, c.db, `
		SELECT * FROM channel WHERE external_id = $external_id LIMIT 1
	`, map[string]any{"external_id": externalID})
	if err != nil {
		return nil, fmt.Errorf("channel by external id: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// CreateChannel inserts a new channel record.
func (c *Client) CreateChannel(ctx context.Context, input models.ChannelInput) (*models.Channel, error) {
	results, err := surrealdb.Query[[]models.Channel](ctx, c.db, `
		CREATE channel CONTENT {
			external_id: $external_id,
			title: $title,
			description: $description,
			thumbnail_url: $thumbnail_url,
			subscriber_count: $subscriber_count,
			imported_by: $imported_by
		} RETURN AFTER
	`, map[string]any{
		"external_id":      input.ExternalID,
		"title":            input.Title,
		"description":      input.Description,
		"thumbnail_url":    input.ThumbnailURL,
		"subscriber_count": input.SubscriberCount,
		"imported_by":      input.ImportedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create channel: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// VideoByURL returns the video with the given external URL, or nil if
// none exists. The pipeline uses this as its duplicate check.
func (c *Client) VideoByURL(ctx context.Context, externalURL string) (*models.Video, error) {
	results, err := surrealdb.Query[[]models.Video](ctx, c.db, `
		SELECT * FROM video WHERE external_url = $external_url LIMIT 1
	`, map[string]any{"external_url": externalURL})
	if err != nil {
		return nil, fmt.Errorf("video by url: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// CreateVideo inserts a new video record.
func (c *Client) CreateVideo(ctx context.Context, input models.VideoInput) (*models.Video, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	results, err := surrealdb.Query[[]models.Video](ctx, c.db, `
		CREATE video CONTENT {
			external_url: $external_url,
			external_id: $external_id,
			channel_id: $channel_id,
			title: $title,
			description: $description,
			thumbnail_url: $thumbnail_url,
			duration_secs: $duration_secs,
			published_at: <datetime>$published_at,
			category: $category,
			score: $score,
			tags: $tags
		} RETURN AFTER
	`, map[string]any{
		"external_url":  input.ExternalURL,
		"external_id":   input.ExternalID,
		"channel_id":    input.ChannelID,
		"title":         input.Title,
		"description":   input.Description,
		"thumbnail_url": input.ThumbnailURL,
		"duration_secs": input.DurationSecs,
		"published_at":  input.PublishedAt,
		"category":      input.Category,
		"score":         input.Score,
		"tags":          tags,
	})
	if err != nil {
		return nil, fmt.Errorf("create video: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create video: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// CountVideosByChannel returns the number of stored videos for a channel.
func (c *Client) CountVideosByChannel(ctx context.Context, channelID string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM video WHERE channel_id = $channel_id GROUP ALL
	`, map[string]any{"channel_id": channelID})
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}
