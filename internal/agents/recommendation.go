package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// RecommendationAgent phrases the introduction for a set of personalized
// recommendations. The dishes themselves come from the learning loop, not
// from the model.
type RecommendationAgent struct {
	*BaseAgent
}

// NewRecommendationAgent creates a new recommendation agent
func NewRecommendationAgent(model llms.Model) *RecommendationAgent {
	return &RecommendationAgent{BaseAgent: NewBaseAgent("recommendation", model)}
}

// Introduce returns a one-line intro for the recommended dish names.
func (a *RecommendationAgent) Introduce(ctx context.Context, userQuery string, dishNames []string) string {
	fallback := "Based on what you've enjoyed before, here's what I'd suggest:"
	if len(dishNames) == 0 {
		return "I couldn't find anything matching that right now."
	}

	prompt := fmt.Sprintf(recommendationPrompt, userQuery, strings.Join(dishNames, ", "))
	response, err := a.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Recommendation agent model call failed, using fallback intro: %v", err)
		return fallback
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return fallback
	}
	return response
}
