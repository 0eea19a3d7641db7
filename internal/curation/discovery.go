package curation

import (
	"context"
	"fmt"
	"time"

	"github.com/mindtube/curator/internal/metrics"
	"github.com/mindtube/curator/internal/youtube"
)

// discoverChannels searches each configured topic and collects unique
// channel IDs in first-seen order, up to the policy cap. Failed topic
// searches are logged and skipped; a provider quota rejection aborts
// discovery entirely.
func (p *Pipeline) discoverChannels(ctx context.Context, governor *Governor) []string {
	p.tracker.SetAction("Discovering channels")

	seen := make(map[string]struct{})
	var ordered []string

	for _, topic := range p.policy.Topics {
		if len(ordered) >= p.policy.MaxChannels {
			break
		}
		if p.tracker.ShouldStop() || ctx.Err() != nil {
			break
		}
		if reached, reason := governor.Check(); reached {
			p.tracker.AddError("discovery halted: " + reason)
			break
		}

		p.tracker.SetAction("Searching channels: " + topic)

		start := time.Now()
		results, err := p.source.SearchChannels(ctx, topic, p.policy.SearchPageSize)
		p.collector.Record(metrics.OpChannelSearch, time.Since(start), err)
		governor.Increment(QuotaMetadata, 1)
		p.tracker.SetQuota(governor.Snapshot())

		if err != nil {
			if youtube.IsQuotaExceeded(err) {
				p.logger.Warn("metadata quota exceeded during discovery", "topic", topic)
				p.tracker.AddError("discovery halted: provider quota exceeded: " + err.Error())
				break
			}
			p.logger.Warn("channel search failed", "topic", topic, "error", err)
			p.tracker.AddError(fmt.Sprintf("search %q failed: %v", topic, err))
			continue
		}

		for _, ch := range results {
			if _, ok := seen[ch.ID]; ok {
				continue
			}
			seen[ch.ID] = struct{}{}
			ordered = append(ordered, ch.ID)
			if len(ordered) >= p.policy.MaxChannels {
				break
			}
		}

		p.pause(ctx, p.topicDelay)
	}

	return ordered
}
