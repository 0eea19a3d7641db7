package curation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindtube/curator/internal/config"
	"github.com/mindtube/curator/internal/metrics"
	"github.com/mindtube/curator/internal/models"
	"github.com/mindtube/curator/internal/store"
	"github.com/mindtube/curator/internal/youtube"
)

// importedByPipeline marks channel records created by automated runs.
const importedByPipeline = "auto-curation"

// MetadataSource fetches channel and video metadata from the platform.
// *youtube.Client satisfies it.
type MetadataSource interface {
	SearchChannels(ctx context.Context, query string, maxResults int) ([]youtube.ChannelSummary, error)
	ChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelDetails, error)
	ChannelUploads(ctx context.Context, channelID string, maxResults int) ([]youtube.Video, error)
}

var _ MetadataSource = (*youtube.Client)(nil)

// Store persists curated channels and videos. *store.Client satisfies it.
type Store interface {
	ChannelByExternalID(ctx context.Context, externalID string) (*models.Channel, error)
	CreateChannel(ctx context.Context, input models.ChannelInput) (*models.Channel, error)
	VideoByURL(ctx context.Context, externalURL string) (*models.Video, error)
	CreateVideo(ctx context.Context, input models.VideoInput) (*models.Video, error)
}

var _ Store = (*store.Client)(nil)

// Pipeline runs one end-to-end curation pass: discover channels for the
// configured topics, fetch and filter their recent uploads, evaluate
// survivors, and persist approved items.
type Pipeline struct {
	source    MetadataSource
	store     Store
	evaluator *Evaluator
	tracker   *Tracker
	policy    config.Policy
	logger    *slog.Logger
	collector *metrics.Collector

	topicDelay time.Duration
	itemDelay  time.Duration
}

// NewPipeline wires a pipeline. collector may be nil.
func NewPipeline(
	source MetadataSource,
	st Store,
	evaluator *Evaluator,
	tracker *Tracker,
	policy config.Policy,
	logger *slog.Logger,
	collector *metrics.Collector,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     source,
		store:      st,
		evaluator:  evaluator,
		tracker:    tracker,
		policy:     policy,
		logger:     logger,
		collector:  collector,
		topicDelay: time.Duration(policy.TopicDelayMS) * time.Millisecond,
		itemDelay:  time.Duration(policy.ItemDelayMS) * time.Millisecond,
	}
}

// Tracker exposes the run-state tracker for observers.
func (p *Pipeline) Tracker() *Tracker {
	return p.tracker
}

// Run executes one curation run under a fresh tracker record. Intended
// for synchronous callers; Manager initializes the tracker itself and
// calls execute directly.
func (p *Pipeline) Run(ctx context.Context, jobID string) {
	p.tracker.Initialize(jobID)
	p.execute(ctx)
}

// execute drives the run to a terminal state. It never returns an
// error; failures resolve the tracked run instead.
func (p *Pipeline) execute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("curation run panicked", "panic", r)
			p.tracker.AddError(fmt.Sprintf("internal error: %v", r))
			p.tracker.Complete(StatusError)
		}
	}()

	governor := NewGovernor(p.policy.MetadataCallLimit, p.policy.EvaluationCallLimit)
	p.tracker.SetQuota(governor.Snapshot())

	p.logger.Info("curation run started",
		"topics", len(p.policy.Topics),
		"maxChannels", p.policy.MaxChannels)

	channelIDs := p.discoverChannels(ctx, governor)
	if len(channelIDs) == 0 {
		p.tracker.AddError("no channels discovered for configured topics")
		p.tracker.Complete(StatusCompleted)
		return
	}

	p.logger.Info("discovery finished", "channels", len(channelIDs))

	for _, channelID := range channelIDs {
		if p.checkpointStop(ctx) {
			return
		}
		if reached, reason := governor.Check(); reached {
			p.finishQuotaExhausted(reason)
			return
		}

		if err := p.processChannel(ctx, governor, channelID); err != nil {
			if errors.Is(err, errRunStopped) || errors.Is(err, errQuotaExhausted) {
				return
			}
			// Anything unexpected escaping a channel is a run failure.
			p.logger.Error("curation run failed", "channel", channelID, "error", err)
			p.tracker.AddError(err.Error())
			p.tracker.Complete(StatusError)
			return
		}
	}

	p.tracker.Complete(StatusCompleted)
	p.logRunSummary()
}

// Control-flow sentinels for early exits inside a channel.
var (
	errRunStopped     = errors.New("run stopped")
	errQuotaExhausted = errors.New("quota exhausted")
)

// processChannel fetches one channel's details and uploads, filters the
// candidates, and evaluates the survivors. Fetch failures are logged
// per-channel and skipped; only evaluator contract breaches and panics
// propagate.
func (p *Pipeline) processChannel(ctx context.Context, governor *Governor, channelID string) error {
	p.tracker.SetAction("Fetching channel details: " + channelID)

	start := time.Now()
	details, err := p.source.ChannelDetails(ctx, channelID)
	p.collector.Record(metrics.OpChannelDetails, time.Since(start), err)
	governor.Increment(QuotaMetadata, 1)
	p.tracker.SetQuota(governor.Snapshot())
	if err != nil {
		p.logger.Warn("channel details fetch failed", "channel", channelID, "error", err)
		p.tracker.AddError(fmt.Sprintf("channel %s: details fetch failed: %v", channelID, err))
		return nil
	}

	candidates, err := p.fetchCandidates(ctx, governor, details)
	if err != nil {
		p.logger.Warn("uploads fetch failed", "channel", details.Title, "error", err)
		p.tracker.AddError(fmt.Sprintf("channel %s: uploads fetch failed: %v", details.Title, err))
		return nil
	}

	survivors := p.filterCandidates(ctx, details, candidates)

	for _, video := range survivors {
		if p.checkpointStop(ctx) {
			return errRunStopped
		}
		if reached, reason := governor.Check(); reached {
			p.finishQuotaExhausted(reason)
			return errQuotaExhausted
		}

		if err := p.evaluateAndPersist(ctx, governor, details, video); err != nil {
			return err
		}

		p.pause(ctx, p.itemDelay)
	}
	return nil
}

// evaluateAndPersist sends one candidate to the evaluator and stores it
// when the verdict clears the approval bar. Evaluation failures and
// persistence failures are per-item: logged, counted, never fatal.
func (p *Pipeline) evaluateAndPersist(ctx context.Context, governor *Governor, details *youtube.ChannelDetails, video youtube.Video) error {
	p.tracker.SetAction("Evaluating: " + video.Title)
	governor.Increment(QuotaEvaluation, 1)

	start := time.Now()
	result, err := p.evaluator.Evaluate(ctx, video)
	p.collector.Record(metrics.OpEvaluation, time.Since(start), err)
	p.tracker.SetQuota(governor.Snapshot())

	if err != nil {
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			return err
		}
		p.logger.Warn("evaluation failed", "title", video.Title, "error", err)
		p.tracker.AddError(err.Error())
		p.tracker.ItemRejected()
		return nil
	}

	if !p.evaluator.ShouldAutoApprove(result) {
		p.logger.Debug("rejected by evaluator",
			"title", video.Title,
			"decision", result.Decision,
			"score", result.Score,
			"reason", result.RejectionReason)
		p.tracker.ItemRejected()
		return nil
	}

	if err := p.persistApproved(ctx, details, video, result); err != nil {
		p.logger.Warn("persist failed", "title", video.Title, "error", err)
		p.tracker.AddError(fmt.Sprintf("persist %q failed: %v", video.Title, err))
		return nil
	}

	p.tracker.ItemApproved()
	p.logger.Info("approved",
		"title", video.Title,
		"score", result.Score,
		"category", result.Category)
	return nil
}

// persistApproved ensures the channel record exists, then inserts the
// video. A duplicate insert racing past the earlier check is treated as
// a silent skip.
func (p *Pipeline) persistApproved(ctx context.Context, details *youtube.ChannelDetails, video youtube.Video, result *EvaluationResult) error {
	channel, err := p.store.ChannelByExternalID(ctx, details.ID)
	if err != nil {
		return fmt.Errorf("channel lookup: %w", err)
	}
	if channel == nil {
		start := time.Now()
		_, err := p.store.CreateChannel(ctx, models.ChannelInput{
			ExternalID:      details.ID,
			Title:           details.Title,
			Description:     details.Description,
			ThumbnailURL:    details.ThumbnailURL,
			SubscriberCount: details.SubscriberCount,
			ImportedBy:      importedByPipeline,
		})
		p.collector.Record(metrics.OpStoreWrite, time.Since(start), err)
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("create channel: %w", err)
		}
	}

	start := time.Now()
	_, err = p.store.CreateVideo(ctx, models.VideoInput{
		ExternalURL:  video.URL(),
		ExternalID:   video.ExternalID,
		ChannelID:    video.ChannelID,
		Title:        video.Title,
		Description:  video.Description,
		ThumbnailURL: video.ThumbnailURL,
		DurationSecs: video.DurationSeconds,
		PublishedAt:  video.PublishedAt,
		Category:     result.Category,
		Score:        result.Score,
		Tags:         result.Tags,
	})
	p.collector.Record(metrics.OpStoreWrite, time.Since(start), err)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

// checkpointStop resolves the run to stopped when a stop was requested
// or the context is gone. Returns true when the run should end.
func (p *Pipeline) checkpointStop(ctx context.Context) bool {
	if !p.tracker.ShouldStop() && ctx.Err() == nil {
		return false
	}
	p.tracker.Complete(StatusStopped)
	p.logger.Info("curation run stopped")
	return true
}

func (p *Pipeline) finishQuotaExhausted(reason string) {
	p.logger.Info("curation run ended early", "reason", reason)
	p.tracker.AddError("run ended early: " + reason)
	p.tracker.Complete(StatusCompleted)
	p.logRunSummary()
}

func (p *Pipeline) logRunSummary() {
	status := p.tracker.Status()
	if status == nil {
		return
	}
	p.logger.Info("curation run finished",
		"status", status.Status,
		"total", status.TotalItems,
		"processed", status.ProcessedItems,
		"approved", status.ApprovedItems,
		"rejected", status.RejectedItems,
		"errors", len(status.Errors))
}

// pause sleeps unless the context ends first. Zero and negative delays
// return immediately.
func (p *Pipeline) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
