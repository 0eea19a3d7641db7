package curation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindtube/curator/internal/config"
	"github.com/mindtube/curator/internal/llm"
	"github.com/mindtube/curator/internal/youtube"
)

// ChatModel is the evaluation-service surface the evaluator needs.
// *llm.Model satisfies it.
type ChatModel interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ ChatModel = (*llm.Model)(nil)

// Decision is the evaluation service's verdict on a candidate.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Confidence grades how sure the evaluation service is of its decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders confidence grades so a policy floor can compare them.
// Unknown values rank below every real grade.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// EvaluationResult is the validated verdict for one candidate item.
// Category is empty when the service returned one outside the allowed
// set; such items remain eligible for approval.
type EvaluationResult struct {
	Decision        Decision   `json:"decision"`
	Score           int        `json:"score"`
	Category        string     `json:"category"`
	Confidence      Confidence `json:"confidence"`
	Tags            []string   `json:"tags"`
	RejectionReason string     `json:"rejectionReason"`
}

// EvaluationError marks a per-item evaluation failure after retries.
// The pipeline treats it as a rejection rather than a run failure.
type EvaluationError struct {
	Title    string
	Attempts int
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q: %v (after %d attempt(s))", e.Title, e.Err, e.Attempts)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = time.Second
	defaultBatchSize   = 10
	defaultBatchDelay  = 2 * time.Second

	// Descriptions beyond this are truncated before being sent; the
	// opening text carries the signal.
	maxDescriptionLen = 1000
)

const systemPromptTemplate = `You are a content curator for a wellbeing app focused on meditation, mindfulness, philosophy, and healthy living. You review candidate videos and decide whether they belong in the app's library.

Be permissive: approve content that is plausibly useful to someone working on their mental or physical wellbeing. Reject only content that is clearly off-topic, clickbait, or promotional.

Allowed categories: %s.

Respond with a single JSON object and nothing else:
{
  "decision": "APPROVE" or "REJECT",
  "score": integer 0-100 rating relevance and quality,
  "category": one of the allowed categories,
  "confidence": "high", "medium" or "low",
  "tags": up to 5 short lowercase topic tags,
  "rejectionReason": short explanation, empty string when approving
}`

// Evaluator sends candidate items to the evaluation service and turns
// responses into validated verdicts.
type Evaluator struct {
	model  ChatModel
	policy config.Policy
	logger *slog.Logger

	maxRetries  int
	baseBackoff time.Duration
	batchSize   int
	batchDelay  time.Duration
}

// NewEvaluator creates an evaluator bound to a chat model and policy.
func NewEvaluator(model ChatModel, policy config.Policy, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		model:       model,
		policy:      policy,
		logger:      logger,
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		batchSize:   defaultBatchSize,
		batchDelay:  defaultBatchDelay,
	}
}

// evaluationPayload is the JSON document describing one candidate.
type evaluationPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ChannelTitle    string   `json:"channelTitle"`
	DurationMinutes int      `json:"durationMinutes"`
	Tags            []string `json:"tags,omitempty"`
}

// Evaluate submits one candidate and returns its verdict. Transient
// failures (network errors, malformed responses) are retried with
// exponential backoff; fatal API errors (billing, auth) abort
// immediately. All failures come back as *EvaluationError.
func (e *Evaluator) Evaluate(ctx context.Context, video youtube.Video) (*EvaluationResult, error) {
	payload, err := json.Marshal(evaluationPayload{
		Title:           video.Title,
		Description:     truncate(video.Description, maxDescriptionLen),
		ChannelTitle:    video.ChannelTitle,
		DurationMinutes: video.DurationSeconds / 60,
		Tags:            video.Tags,
	})
	if err != nil {
		return nil, &EvaluationError{Title: video.Title, Attempts: 0, Err: err}
	}

	systemPrompt := fmt.Sprintf(systemPromptTemplate, strings.Join(e.policy.Categories, ", "))

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries+1; attempt++ {
		if attempt > 1 {
			backoff := e.baseBackoff << (attempt - 2)
			e.logger.Debug("retrying evaluation",
				"title", video.Title,
				"attempt", attempt,
				"backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, &EvaluationError{Title: video.Title, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		raw, err := e.model.GenerateJSON(ctx, systemPrompt, string(payload))
		if err != nil {
			if errors.Is(err, llm.ErrFatalAPI) {
				return nil, &EvaluationError{Title: video.Title, Attempts: attempt, Err: err}
			}
			lastErr = err
			continue
		}

		result, err := e.parseResult(raw)
		if err != nil {
			lastErr = fmt.Errorf("invalid response: %w", err)
			continue
		}
		return result, nil
	}

	return nil, &EvaluationError{Title: video.Title, Attempts: e.maxRetries + 1, Err: lastErr}
}

// BatchOutcome pairs a candidate with its evaluation outcome.
type BatchOutcome struct {
	Video  youtube.Video
	Result *EvaluationResult
	Err    error
}

// EvaluateBatch evaluates candidates sequentially in fixed-size batches
// with a pause between batches. Per-item failures are reported in the
// outcome slice; a fatal API error stops the batch early and the
// remaining items are omitted.
func (e *Evaluator) EvaluateBatch(ctx context.Context, videos []youtube.Video) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(videos))

	for i, video := range videos {
		if i > 0 && i%e.batchSize == 0 {
			select {
			case <-ctx.Done():
				return outcomes
			case <-time.After(e.batchDelay):
			}
		}

		result, err := e.Evaluate(ctx, video)
		outcomes = append(outcomes, BatchOutcome{Video: video, Result: result, Err: err})

		if errors.Is(err, llm.ErrFatalAPI) {
			e.logger.Error("aborting batch on fatal API error", "error", err)
			return outcomes
		}
	}
	return outcomes
}

// parseResult validates the raw completion into a result. Code fences
// around the JSON are tolerated; anything else malformed is an error.
func (e *Evaluator) parseResult(raw string) (*EvaluationResult, error) {
	cleaned := stripCodeFences(raw)

	var parsed struct {
		Decision        *string  `json:"decision"`
		Score           *int     `json:"score"`
		Category        string   `json:"category"`
		Confidence      string   `json:"confidence"`
		Tags            []string `json:"tags"`
		RejectionReason string   `json:"rejectionReason"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if parsed.Decision == nil {
		return nil, fmt.Errorf("missing decision")
	}
	decision := Decision(strings.ToUpper(strings.TrimSpace(*parsed.Decision)))
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("unknown decision %q", *parsed.Decision)
	}

	if parsed.Score == nil {
		return nil, fmt.Errorf("missing score")
	}
	if *parsed.Score < 0 || *parsed.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", *parsed.Score)
	}

	confidence := Confidence(strings.ToLower(strings.TrimSpace(parsed.Confidence)))
	switch confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		return nil, fmt.Errorf("unknown confidence %q", parsed.Confidence)
	}

	// Out-of-set categories are cleared, not rejected.
	category := strings.ToLower(strings.TrimSpace(parsed.Category))
	if !contains(e.policy.Categories, category) {
		category = ""
	}

	return &EvaluationResult{
		Decision:        decision,
		Score:           *parsed.Score,
		Category:        category,
		Confidence:      confidence,
		Tags:            parsed.Tags,
		RejectionReason: parsed.RejectionReason,
	}, nil
}

// ShouldAutoApprove reports whether the verdict clears the bar for
// persisting without human review: an approval at or above the score
// threshold, held with at least the configured confidence.
func (e *Evaluator) ShouldAutoApprove(r *EvaluationResult) bool {
	floor := Confidence(strings.ToLower(strings.TrimSpace(e.policy.ApproveConfidence)))
	return r.Decision == DecisionApprove &&
		r.Score >= e.policy.ApproveScore &&
		r.Confidence.rank() >= floor.rank()
}

// ShouldReview reports whether the verdict deserves a second look:
// mid-band scores on approvals, or any decision the service is not
// highly confident in.
func (e *Evaluator) ShouldReview(r *EvaluationResult) bool {
	if r.Confidence != ConfidenceHigh {
		return true
	}
	return r.Decision == DecisionApprove &&
		r.Score >= e.policy.ReviewLowScore && r.Score < e.policy.ReviewHighScore
}

// ShouldAutoReject reports whether the verdict rules the item out.
func (e *Evaluator) ShouldAutoReject(r *EvaluationResult) bool {
	return r.Decision == DecisionReject || r.Score < e.policy.ReviewLowScore
}

func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
