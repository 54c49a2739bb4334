package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// OrderHandlerAgent phrases confirmations for cart and order actions.
type OrderHandlerAgent struct {
	*BaseAgent
}

// NewOrderHandlerAgent creates a new order handler agent
func NewOrderHandlerAgent(model llms.Model) *OrderHandlerAgent {
	return &OrderHandlerAgent{BaseAgent: NewBaseAgent("order_handler", model)}
}

// Confirm returns a one-line confirmation for a cart action such as
// "added" or "removed".
func (a *OrderHandlerAgent) Confirm(ctx context.Context, action, itemName string, quantity int) string {
	fallback := fmt.Sprintf("%dx %s %s to your cart.", quantity, itemName, action)

	prompt := fmt.Sprintf(orderHandlerPrompt, action, itemName, quantity)
	response, err := a.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Order handler model call failed, using fallback confirmation: %v", err)
		return fallback
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return fallback
	}
	return response
}
