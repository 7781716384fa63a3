package usecase

import (
	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/service/aggregate"
	"github.com/campus-pulse/pulse/pkg/service/frequency"
	"github.com/campus-pulse/pulse/pkg/service/routing"
	"github.com/campus-pulse/pulse/pkg/service/scoring"
)

// DefaultSpamThreshold is the spam confidence at or above which a
// report is acknowledged and discarded
const DefaultSpamThreshold = 0.8

// Config holds the tunable settings of the use case layer
type Config struct {
	spamThreshold float64
	routingRules  *model.RoutingConfig
	scoringRules  *model.ScoringConfig
}

// Option is a functional option for configuring UseCases
type Option func(*Config)

// WithSpamThreshold overrides the spam discard threshold
func WithSpamThreshold(threshold float64) Option {
	return func(c *Config) {
		if threshold > 0 && threshold <= 1 {
			c.spamThreshold = threshold
		}
	}
}

// WithRoutingRules overrides the built-in routing rule table
func WithRoutingRules(rules *model.RoutingConfig) Option {
	return func(c *Config) {
		if rules != nil {
			c.routingRules = rules
		}
	}
}

// WithScoringRules overrides the built-in scoring parameters
func WithScoringRules(rules *model.ScoringConfig) Option {
	return func(c *Config) {
		if rules != nil {
			c.scoringRules = rules
		}
	}
}

// UseCases wires the triage pipeline and the admin surface over one
// repository and one triage client
type UseCases struct {
	repo   interfaces.Repository
	triage interfaces.TriageClient
	hub    *ProgressHub
	agg    *aggregate.Engine
	scorer *scoring.Engine
	router *routing.Engine
	freq   *frequency.Service
	config *Config
}

// New creates the use case layer
func New(repo interfaces.Repository, triageClient interfaces.TriageClient, opts ...Option) *UseCases {
	config := &Config{
		spamThreshold: DefaultSpamThreshold,
		routingRules:  model.DefaultRoutingConfig(),
		scoringRules:  model.DefaultScoringConfig(),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &UseCases{
		repo:   repo,
		triage: triageClient,
		hub:    NewProgressHub(),
		agg:    aggregate.New(repo),
		scorer: scoring.New(config.scoringRules),
		router: routing.New(config.routingRules, repo),
		freq:   frequency.New(repo, config.scoringRules.FrequencyWindow),
		config: config,
	}
}

// Hub exposes the progress hub to the HTTP controller
func (u *UseCases) Hub() *ProgressHub {
	return u.hub
}

// Repository exposes the repository for read-only controller queries
func (u *UseCases) Repository() interfaces.Repository {
	return u.repo
}
