// Package config centralizes conversational engine configuration.
package config

import (
	"fmt"
	"time"
)

// EngineConfig holds the knobs for turn processing: input bounds, context
// assembly budgets, session memory, and chat-facing rate limits.
type EngineConfig struct {
	// Turn processing
	TurnTimeout       time.Duration
	MaxUtteranceChars int
	MinUtteranceChars int

	// Context assembly
	MaxContextChars  int
	ExcerptBudget    int
	FactsPerCategory int
	HistoryTurns     int
	TurnMaxChars     int

	// Session memory
	SessionTTL time.Duration

	// Rate limiting
	ChatRequestsPerMinute int     // Per-session sliding window on POST /chat
	GlobalRateLimitRPS    float64 // Token bucket over all requests
	LLMRateBurst          float64 // Maximum burst tokens for LLM calls
	LLMRateRefillPerHour  float64 // LLM tokens refilled per hour
	LLMRateDaily          int     // Maximum LLM calls per day (0 = disabled)
}

// DefaultEngineConfig returns default configuration values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		TurnTimeout:       TurnProcessing,
		MaxUtteranceChars: MaxUtteranceLength,
		MinUtteranceChars: MinUtteranceLength,

		MaxContextChars:  6000,
		ExcerptBudget:    4000,
		FactsPerCategory: MaxFactsPerCategory,
		HistoryTurns:     MaxHistoryTurns,
		TurnMaxChars:     HistoryTurnMaxChars,

		SessionTTL: 30 * time.Minute,

		ChatRequestsPerMinute: 20,
		GlobalRateLimitRPS:    100.0,
		LLMRateBurst:          40.0,
		LLMRateRefillPerHour:  20.0,
		LLMRateDaily:          100,
	}
}

// Validate checks if the configuration is valid.
// Returns error describing the first validation failure.
func (c *EngineConfig) Validate() error {
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeout must be positive, got %v", c.TurnTimeout)
	}

	if c.MinUtteranceChars < 1 {
		return fmt.Errorf("min utterance chars must be at least 1, got %d", c.MinUtteranceChars)
	}

	if c.MaxUtteranceChars < c.MinUtteranceChars {
		return fmt.Errorf("max utterance chars must be at least %d, got %d", c.MinUtteranceChars, c.MaxUtteranceChars)
	}

	if c.MaxContextChars < 1 {
		return fmt.Errorf("max context chars must be positive, got %d", c.MaxContextChars)
	}

	if c.ExcerptBudget < 1 {
		return fmt.Errorf("excerpt budget must be positive, got %d", c.ExcerptBudget)
	}

	if c.ExcerptBudget > c.MaxContextChars {
		return fmt.Errorf("excerpt budget %d cannot exceed max context chars %d", c.ExcerptBudget, c.MaxContextChars)
	}

	if c.FactsPerCategory < 1 {
		return fmt.Errorf("facts per category must be positive, got %d", c.FactsPerCategory)
	}

	if c.HistoryTurns < 0 {
		return fmt.Errorf("history turns cannot be negative, got %d", c.HistoryTurns)
	}

	if c.TurnMaxChars < 1 {
		return fmt.Errorf("turn max chars must be positive, got %d", c.TurnMaxChars)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %v", c.SessionTTL)
	}

	if c.ChatRequestsPerMinute < 1 {
		return fmt.Errorf("chat requests per minute must be positive, got %d", c.ChatRequestsPerMinute)
	}

	if c.GlobalRateLimitRPS <= 0 {
		return fmt.Errorf("global rate limit RPS must be positive, got %f", c.GlobalRateLimitRPS)
	}

	if c.LLMRateBurst <= 0 {
		return fmt.Errorf("LLM rate burst must be positive, got %f", c.LLMRateBurst)
	}

	if c.LLMRateRefillPerHour <= 0 {
		return fmt.Errorf("LLM rate refill must be positive, got %f", c.LLMRateRefillPerHour)
	}

	if c.LLMRateDaily < 0 {
		return fmt.Errorf("LLM daily limit cannot be negative, got %d", c.LLMRateDaily)
	}

	return nil
}
