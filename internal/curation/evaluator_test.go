package curation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtube/curator/internal/config"
	"github.com/mindtube/curator/internal/llm"
	"github.com/mindtube/curator/internal/youtube"
)

// fakeModel returns scripted responses in order; once the script runs
// out it repeats the last entry.
type fakeModel struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	content string
	err     error
}

func (f *fakeModel) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	resp := f.responses[idx]
	return resp.content, resp.err
}

func newTestEvaluator(model ChatModel) *Evaluator {
	e := NewEvaluator(model, config.DefaultPolicy(), nil)
	e.baseBackoff = time.Millisecond
	e.batchDelay = time.Millisecond
	return e
}

func verdict(decision string, score int, category, confidence string) string {
	return fmt.Sprintf(`{"decision":%q,"score":%d,"category":%q,"confidence":%q,"tags":["calm"],"rejectionReason":""}`,
		decision, score, category, confidence)
}

func testVideo() youtube.Video {
	return youtube.Video{
		ExternalID:      "vid1",
		Title:           "20 Minute Guided Meditation",
		Description:     "A calming body scan for beginners.",
		ChannelTitle:    "Calm Minds",
		DurationSeconds: 1264,
	}
}

func TestEvaluateParsesVerdict(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{content: verdict("APPROVE", 85, "mind", "high")},
	}}
	e := newTestEvaluator(model)

	result, err := e.Evaluate(context.Background(), testVideo())
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, result.Decision)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, "mind", result.Category)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
	assert.Equal(t, []string{"calm"}, result.Tags)
	assert.Equal(t, 1, model.calls)
}

func TestEvaluateToleratesCodeFences(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{content: "```json\n" + verdict("REJECT", 20, "mind", "high") + "\n```"},
	}}
	e := newTestEvaluator(model)

	result, err := e.Evaluate(context.Background(), testVideo())
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, result.Decision)
}

func TestEvaluateNormalizesUnknownCategory(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{content: verdict("APPROVE", 90, "astrology", "high")},
	}}
	e := newTestEvaluator(model)

	result, err := e.Evaluate(context.Background(), testVideo())
	require.NoError(t, err)
	assert.Empty(t, result.Category, "out-of-set category is cleared")
	assert.True(t, e.ShouldAutoApprove(result), "cleared category does not block approval")
}

func TestEvaluateRetriesTransientErrors(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{err: errors.New("connection reset")},
		{content: "not json at all"},
		{content: verdict("APPROVE", 75, "body", "high")},
	}}
	e := newTestEvaluator(model)

	result, err := e.Evaluate(context.Background(), testVideo())
	require.NoError(t, err)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, 3, model.calls)
}

func TestEvaluateExhaustsRetries(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{err: errors.New("connection reset")},
	}}
	e := newTestEvaluator(model)

	_, err := e.Evaluate(context.Background(), testVideo())
	require.Error(t, err)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 4, evalErr.Attempts)
	assert.Equal(t, 4, model.calls, "initial attempt plus three retries")
}

func TestEvaluateFatalErrorShortCircuits(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{err: fmt.Errorf("generate: %w", errors.Join(llm.ErrFatalAPI, errors.New("credit balance too low")))},
	}}
	e := newTestEvaluator(model)

	_, err := e.Evaluate(context.Background(), testVideo())
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrFatalAPI)
	assert.Equal(t, 1, model.calls, "fatal errors are not retried")
}

func TestEvaluateInvalidVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing decision", `{"score":80,"category":"mind","confidence":"high"}`},
		{"unknown decision", `{"decision":"MAYBE","score":80,"category":"mind","confidence":"high"}`},
		{"missing score", `{"decision":"APPROVE","category":"mind","confidence":"high"}`},
		{"score too high", `{"decision":"APPROVE","score":150,"category":"mind","confidence":"high"}`},
		{"negative score", `{"decision":"APPROVE","score":-5,"category":"mind","confidence":"high"}`},
		{"unknown confidence", `{"decision":"APPROVE","score":80,"category":"mind","confidence":"certain"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{responses: []fakeResponse{{content: tt.content}}}
			e := newTestEvaluator(model)

			_, err := e.Evaluate(context.Background(), testVideo())
			var evalErr *EvaluationError
			require.ErrorAs(t, err, &evalErr)
		})
	}
}

func TestApprovalThresholdBoundary(t *testing.T) {
	e := newTestEvaluator(nil)

	atThreshold := &EvaluationResult{Decision: DecisionApprove, Score: 70, Confidence: ConfidenceHigh}
	belowThreshold := &EvaluationResult{Decision: DecisionApprove, Score: 69, Confidence: ConfidenceHigh}

	assert.True(t, e.ShouldAutoApprove(atThreshold))
	assert.False(t, e.ShouldAutoApprove(belowThreshold))
}

func TestApprovalConfidenceGate(t *testing.T) {
	e := newTestEvaluator(nil)

	tests := []struct {
		confidence Confidence
		approve    bool
	}{
		{ConfidenceHigh, true},
		{ConfidenceMedium, false},
		{ConfidenceLow, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.confidence), func(t *testing.T) {
			result := &EvaluationResult{Decision: DecisionApprove, Score: 85, Confidence: tt.confidence}
			assert.Equal(t, tt.approve, e.ShouldAutoApprove(result))
		})
	}

	// Rejections never auto-approve, regardless of confidence.
	rejected := &EvaluationResult{Decision: DecisionReject, Score: 95, Confidence: ConfidenceHigh}
	assert.False(t, e.ShouldAutoApprove(rejected))
}

func TestApprovalConfidenceFloorIsConfigurable(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.ApproveConfidence = "medium"
	e := NewEvaluator(nil, policy, nil)

	medium := &EvaluationResult{Decision: DecisionApprove, Score: 85, Confidence: ConfidenceMedium}
	low := &EvaluationResult{Decision: DecisionApprove, Score: 85, Confidence: ConfidenceLow}

	assert.True(t, e.ShouldAutoApprove(medium), "lowered floor admits medium confidence")
	assert.False(t, e.ShouldAutoApprove(low), "low confidence stays below the floor")
}

func TestReviewAndRejectPolicy(t *testing.T) {
	e := newTestEvaluator(nil)

	tests := []struct {
		name    string
		result  EvaluationResult
		approve bool
		review  bool
		reject  bool
	}{
		{
			name:    "strong approval",
			result:  EvaluationResult{Decision: DecisionApprove, Score: 95, Confidence: ConfidenceHigh},
			approve: true,
		},
		{
			name:    "mid-band approval flagged for review",
			result:  EvaluationResult{Decision: DecisionApprove, Score: 75, Confidence: ConfidenceHigh},
			approve: true,
			review:  true,
		},
		{
			name:   "low-confidence approval held for review, not persisted",
			result: EvaluationResult{Decision: DecisionApprove, Score: 95, Confidence: ConfidenceLow},
			review: true,
		},
		{
			name:   "medium-confidence approval held for review, not persisted",
			result: EvaluationResult{Decision: DecisionApprove, Score: 85, Confidence: ConfidenceMedium},
			review: true,
		},
		{
			name:   "rejection",
			result: EvaluationResult{Decision: DecisionReject, Score: 20, Confidence: ConfidenceHigh},
			reject: true,
		},
		{
			name:   "low score approval rejected",
			result: EvaluationResult{Decision: DecisionApprove, Score: 40, Confidence: ConfidenceHigh},
			reject: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.approve, e.ShouldAutoApprove(&tt.result), "auto-approve")
			assert.Equal(t, tt.review, e.ShouldReview(&tt.result), "review")
			assert.Equal(t, tt.reject, e.ShouldAutoReject(&tt.result), "auto-reject")
		})
	}
}

func TestEvaluateBatchStopsOnFatalError(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{content: verdict("APPROVE", 80, "mind", "high")},
		{err: errors.Join(llm.ErrFatalAPI, errors.New("invalid api key"))},
	}}
	e := newTestEvaluator(model)

	videos := []youtube.Video{testVideo(), testVideo(), testVideo()}
	outcomes := e.EvaluateBatch(context.Background(), videos)

	require.Len(t, outcomes, 2, "third item skipped after fatal error")
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, llm.ErrFatalAPI)
}

func TestEvaluateBatchReportsPerItemFailures(t *testing.T) {
	model := &fakeModel{responses: []fakeResponse{
		{content: verdict("APPROVE", 80, "mind", "high")},
		{content: "garbage"}, // retried, still garbage
	}}
	e := newTestEvaluator(model)

	outcomes := e.EvaluateBatch(context.Background(), []youtube.Video{testVideo(), testVideo()})

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)

	var evalErr *EvaluationError
	assert.ErrorAs(t, outcomes[1].Err, &evalErr)
}
