// Package agents wraps the language-model calls behind small role-specific
// agents. Every agent degrades to a deterministic fallback when the model
// is unreachable or returns something unparseable.
package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// ErrNoJSON is returned when a model response contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model response")

// BaseAgent provides common functionality for all agents
type BaseAgent struct {
	name        string
	model       llms.Model
	temperature float64
}

// NewBaseAgent creates a new base agent around a language model. A nil
// model is allowed; agents then run on their fallbacks only.
func NewBaseAgent(name string, model llms.Model) *BaseAgent {
	return &BaseAgent{
		name:        name,
		model:       model,
		temperature: 0.3,
	}
}

// Name returns the agent's name
func (a *BaseAgent) Name() string {
	return a.name
}

// Model returns the agent's language model
func (a *BaseAgent) Model() llms.Model {
	return a.model
}

// Generate runs a single prompt through the model and returns the raw text.
func (a *BaseAgent) Generate(ctx context.Context, prompt string) (string, error) {
	if a.model == nil {
		return "", errors.New("no model configured")
	}
	return llms.GenerateFromSinglePrompt(ctx, a.model, prompt,
		llms.WithTemperature(a.temperature))
}

// ExtractJSON pulls the JSON object out of a model response. Models often
// wrap the object in prose, so everything outside the first '{' and the
// last '}' is discarded.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
