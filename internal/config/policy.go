package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the curation pipeline's tunable behavior: what to search
// for, how hard to filter, when to auto-approve, and how much external
// quota a single run may burn. Values left zero in the YAML file fall
// back to the defaults below.
type Policy struct {
	// Discovery
	Topics         []string `yaml:"topics"`
	MaxChannels    int      `yaml:"max_channels"`
	SearchPageSize int      `yaml:"search_page_size"`

	// Ingestion filters
	MaxItemsPerChannel int      `yaml:"max_items_per_channel"`
	MinDurationSeconds int      `yaml:"min_duration_seconds"`
	AllowedLanguages   []string `yaml:"allowed_languages"`

	// Evaluation
	Categories        []string `yaml:"categories"`
	ApproveScore      int      `yaml:"approve_score"`
	ApproveConfidence string   `yaml:"approve_confidence"`
	ReviewLowScore    int      `yaml:"review_low_score"`
	ReviewHighScore   int      `yaml:"review_high_score"`

	// External-call budgets for one run
	MetadataCallLimit   int `yaml:"metadata_call_limit"`
	EvaluationCallLimit int `yaml:"evaluation_call_limit"`

	// Politeness delays (milliseconds)
	TopicDelayMS int `yaml:"topic_delay_ms"`
	ItemDelayMS  int `yaml:"item_delay_ms"`
}

// DefaultPolicy returns the built-in curation policy.
func DefaultPolicy() Policy {
	return Policy{
		Topics: []string{
			"guided meditation",
			"mindfulness practice",
			"stoic philosophy",
			"breathwork techniques",
			"neuroscience of focus",
			"sleep science",
		},
		MaxChannels:         25,
		SearchPageSize:      5,
		MaxItemsPerChannel:  20,
		MinDurationSeconds:  360,
		AllowedLanguages:    []string{"en", "en-US", "en-GB"},
		Categories:          []string{"mind", "body", "philosophy", "science", "sleep"},
		ApproveScore:        70,
		ApproveConfidence:   "high",
		ReviewLowScore:      60,
		ReviewHighScore:     90,
		MetadataCallLimit:   200,
		EvaluationCallLimit: 500,
		TopicDelayMS:        1000,
		ItemDelayMS:         500,
	}
}

// LoadPolicy reads a policy YAML file, filling unset fields from defaults.
// An empty path returns the defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}

	var loaded Policy
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return policy, fmt.Errorf("parse policy file: %w", err)
	}

	policy.merge(loaded)
	return policy, nil
}

// merge overlays non-zero fields from loaded onto the policy.
func (p *Policy) merge(loaded Policy) {
	if len(loaded.Topics) > 0 {
		p.Topics = loaded.Topics
	}
	if loaded.MaxChannels > 0 {
		p.MaxChannels = loaded.MaxChannels
	}
	if loaded.SearchPageSize > 0 {
		p.SearchPageSize = loaded.SearchPageSize
	}
	if loaded.MaxItemsPerChannel > 0 {
		p.MaxItemsPerChannel = loaded.MaxItemsPerChannel
	}
	if loaded.MinDurationSeconds > 0 {
		p.MinDurationSeconds = loaded.MinDurationSeconds
	}
	if len(loaded.AllowedLanguages) > 0 {
		p.AllowedLanguages = loaded.AllowedLanguages
	}
	if len(loaded.Categories) > 0 {
		p.Categories = loaded.Categories
	}
	if loaded.ApproveScore > 0 {
		p.ApproveScore = loaded.ApproveScore
	}
	if loaded.ApproveConfidence != "" {
		p.ApproveConfidence = loaded.ApproveConfidence
	}
	if loaded.ReviewLowScore > 0 {
		p.ReviewLowScore = loaded.ReviewLowScore
	}
	if loaded.ReviewHighScore > 0 {
		p.ReviewHighScore = loaded.ReviewHighScore
	}
	if loaded.MetadataCallLimit > 0 {
		p.MetadataCallLimit = loaded.MetadataCallLimit
	}
	if loaded.EvaluationCallLimit > 0 {
		p.EvaluationCallLimit = loaded.EvaluationCallLimit
	}
	if loaded.TopicDelayMS > 0 {
		p.TopicDelayMS = loaded.TopicDelayMS
	}
	if loaded.ItemDelayMS > 0 {
		p.ItemDelayMS = loaded.ItemDelayMS
	}
}
