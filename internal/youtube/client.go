// Package youtube provides a minimal YouTube Data API v3 client covering
// the three calls the curation pipeline needs: channel search, channel
// details, and a bounded page of a channel's recent uploads.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ChannelSummary is one channel search hit.
type ChannelSummary struct {
	ID    string
	Title string
}

// ChannelDetails carries the channel fields persisted alongside approved videos.
type ChannelDetails struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	SubscriberCount int64
}

// Video is one candidate item produced by ChannelUploads.
type Video struct {
	ExternalID      string
	Title           string
	Description     string
	ChannelID       string
	ChannelTitle    string
	ThumbnailURL    string
	DurationSeconds int
	PublishedAt     time.Time
	Language        string
	Tags            []string
}

// URL returns the canonical watch URL, which doubles as the external
// identifier in the persistence layer.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ExternalID
}

// Client calls the YouTube Data API over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a new YouTube Data API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SearchChannels returns up to maxResults channels matching the query.
func (c *Client) SearchChannels(ctx context.Context, query string, maxResults int) ([]ChannelSummary, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search channels: %w", err)
	}

	channels := make([]ChannelSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.ChannelID == "" {
			continue
		}
		channels = append(channels, ChannelSummary{
			ID:    item.ID.ChannelID,
			Title: item.Snippet.Title,
		})
	}
	return channels, nil
}

// ChannelDetails fetches snippet and statistics for one channel.
// Returns an *APIError for API-level failures; IsQuotaExceeded
// distinguishes quota exhaustion from other errors.
func (c *Client) ChannelDetails(ctx context.Context, channelID string) (*ChannelDetails, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return nil, fmt.Errorf("channel details: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", channelID)
	}

	item := resp.Items[0]
	return &ChannelDetails{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		ThumbnailURL:    item.Snippet.Thumbnails.High.URL,
		SubscriberCount: item.Statistics.SubscriberCount,
	}, nil
}

// ChannelUploads returns up to maxResults of a channel's most recent
// videos with durations and declared language. Internally this is a
// search call followed by a videos lookup for contentDetails.
func (c *Client) ChannelUploads(ctx context.Context, channelID string, maxResults int) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(maxResults))

	var searchResp searchResponse
	if err := c.get(ctx, "/search", params, &searchResp); err != nil {
		return nil, fmt.Errorf("channel uploads: %w", err)
	}

	ids := make([]string, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params = url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var videosResp videoListResponse
	if err := c.get(ctx, "/videos", params, &videosResp); err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	videos := make([]Video, 0, len(videosResp.Items))
	for _, item := range videosResp.Items {
		duration, err := ParseDuration(item.ContentDetails.Duration)
		if err != nil {
			// Malformed durations are rare; treat as unknown rather
			// than dropping the item.
			duration = 0
		}
		language := item.Snippet.DefaultAudioLanguage
		if language == "" {
			language = item.Snippet.DefaultLanguage
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)

		videos = append(videos, Video{
			ExternalID:      item.ID,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			ChannelID:       item.Snippet.ChannelID,
			ChannelTitle:    item.Snippet.ChannelTitle,
			ThumbnailURL:    item.Snippet.Thumbnails.High.URL,
			DurationSeconds: duration,
			PublishedAt:     publishedAt,
			Language:        language,
			Tags:            item.Snippet.Tags,
		})
	}
	return videos, nil
}

// get issues one API request and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Wire types below mirror the API's JSON shapes.

type thumbnails struct {
	High struct {
		URL string `json:"url"`
	} `json:"high"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Thumbnails  thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount int64 `json:"subscriberCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title                string     `json:"title"`
			Description          string     `json:"description"`
			ChannelID            string     `json:"channelId"`
			ChannelTitle         string     `json:"channelTitle"`
			PublishedAt          string     `json:"publishedAt"`
			Thumbnails           thumbnails `json:"thumbnails"`
			DefaultLanguage      string     `json:"defaultLanguage"`
			DefaultAudioLanguage string     `json:"defaultAudioLanguage"`
			Tags                 []string   `json:"tags"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}
