// Package curation implements the automated content-curation pipeline:
// channel discovery, candidate ingestion and filtering, LLM evaluation,
// and persistence of approved items, all tracked by an in-memory run
// state and bounded by per-run external-call budgets.
package curation

import "sync"

// QuotaChannel identifies one externally-billed call budget.
type QuotaChannel string

const (
	// QuotaMetadata counts calls against the metadata provider
	// (channel search, channel details, uploads listing).
	QuotaMetadata QuotaChannel = "metadata"

	// QuotaEvaluation counts evaluation-service calls. Retries of the
	// same item count once.
	QuotaEvaluation QuotaChannel = "evaluation"
)

// QuotaSnapshot is a point-in-time copy of the governor's counters.
type QuotaSnapshot struct {
	MetadataUsed    int `json:"metadataUsed"`
	MetadataLimit   int `json:"metadataLimit"`
	EvaluationUsed  int `json:"evaluationUsed"`
	EvaluationLimit int `json:"evaluationLimit"`
}

// Governor tracks external-call usage for a single run. Counters only
// grow; a fresh governor is built for each run. A limit of zero or less
// disables the cap for that channel.
type Governor struct {
	mu sync.Mutex

	metadataUsed    int
	metadataLimit   int
	evaluationUsed  int
	evaluationLimit int
}

// NewGovernor creates a governor with the given per-run limits.
func NewGovernor(metadataLimit, evaluationLimit int) *Governor {
	return &Governor{
		metadataLimit:   metadataLimit,
		evaluationLimit: evaluationLimit,
	}
}

// Increment records n calls against the given channel. Unknown channels
// are ignored.
func (g *Governor) Increment(ch QuotaChannel, n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch ch {
	case QuotaMetadata:
		g.metadataUsed += n
	case QuotaEvaluation:
		g.evaluationUsed += n
	}
}

// Check reports whether any budget is exhausted. Channels are checked
// in a fixed order (metadata first) so the reported reason is
// deterministic when both are exhausted.
func (g *Governor) Check() (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.metadataLimit > 0 && g.metadataUsed >= g.metadataLimit {
		return true, "metadata call budget exhausted"
	}
	if g.evaluationLimit > 0 && g.evaluationUsed >= g.evaluationLimit {
		return true, "evaluation call budget exhausted"
	}
	return false, ""
}

// Snapshot returns a copy of the current counters and limits.
func (g *Governor) Snapshot() QuotaSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	return QuotaSnapshot{
		MetadataUsed:    g.metadataUsed,
		MetadataLimit:   g.metadataLimit,
		EvaluationUsed:  g.evaluationUsed,
		EvaluationLimit: g.evaluationLimit,
	}
}
