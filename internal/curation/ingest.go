package curation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mindtube/curator/internal/metrics"
	"github.com/mindtube/curator/internal/youtube"
)

// fetchCandidates pulls one page of recent uploads and grows the run's
// expected item count.
func (p *Pipeline) fetchCandidates(ctx context.Context, governor *Governor, details *youtube.ChannelDetails) ([]youtube.Video, error) {
	p.tracker.SetAction("Fetching videos from " + details.Title)

	start := time.Now()
	videos, err := p.source.ChannelUploads(ctx, details.ID, p.policy.MaxItemsPerChannel)
	p.collector.Record(metrics.OpChannelUploads, time.Since(start), err)
	governor.Increment(QuotaMetadata, 1)
	p.tracker.SetQuota(governor.Snapshot())
	if err != nil {
		return nil, err
	}

	p.tracker.AddTotal(len(videos))
	return videos, nil
}

// filterCandidates applies the cheap pre-evaluation filters: duration
// floor, language allow-list, and duplicate skip. Every fetched item
// counts as processed; filter rejections count as rejected and note
// the reason in the current action; duplicates are skipped silently
// and touch no counter.
func (p *Pipeline) filterCandidates(ctx context.Context, details *youtube.ChannelDetails, candidates []youtube.Video) []youtube.Video {
	survivors := make([]youtube.Video, 0, len(candidates))

	for _, video := range candidates {
		p.tracker.ItemProcessed()

		if video.DurationSeconds <= p.policy.MinDurationSeconds {
			p.tracker.SetAction(fmt.Sprintf("Rejected (too short): %s", video.Title))
			p.tracker.ItemRejected()
			p.logger.Debug("rejected: too short",
				"title", video.Title,
				"durationSecs", video.DurationSeconds)
			continue
		}

		if video.Language != "" && !languageAllowed(video.Language, p.policy.AllowedLanguages) {
			p.tracker.SetAction(fmt.Sprintf("Rejected (language %s): %s", video.Language, video.Title))
			p.tracker.ItemRejected()
			p.logger.Debug("rejected: language not allowed",
				"title", video.Title,
				"language", video.Language)
			continue
		}

		existing, err := p.store.VideoByURL(ctx, video.URL())
		if err != nil {
			p.logger.Warn("duplicate check failed", "url", video.URL(), "error", err)
			p.tracker.AddError(fmt.Sprintf("duplicate check failed for %s: %v", video.URL(), err))
			continue
		}
		if existing != nil {
			p.logger.Debug("skipping duplicate", "url", video.URL())
			continue
		}

		survivors = append(survivors, video)
	}

	if len(survivors) > 0 {
		p.logger.Info("candidates ready for evaluation",
			"channel", details.Title,
			"fetched", len(candidates),
			"survivors", len(survivors))
	}
	return survivors
}

// languageAllowed matches the declared language against the allow-list,
// case-insensitively. Items with no declared language pass the filter
// upstream; this only runs for non-empty codes.
func languageAllowed(code string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(code, a) {
			return true
		}
	}
	return false
}
