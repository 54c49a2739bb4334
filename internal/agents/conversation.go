package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Intents the classifier can produce.
const (
	IntentGreeting       = "greeting"
	IntentMenuBrowse     = "menu_browse"
	IntentRecommendation = "recommendation_request"
	IntentOrderPlacement = "order_placement"
	IntentCartView       = "cart_view"
	IntentCheckout       = "checkout"
	IntentItemDetails    = "item_details"
	IntentGeneral        = "general"
	IntentOutOfDomain    = "out_of_domain"
)

const historyWindow = 5

// Turn is one exchange in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IntentResult is the classifier's structured verdict on a user message.
type IntentResult struct {
	Intent                 string  `json:"intent"`
	ConversationalResponse string  `json:"conversational_response"`
	Confidence             float64 `json:"confidence"`
	DomainValid            bool    `json:"domain_valid"`
}

// ConversationAgent classifies user intent and produces the conversational
// framing for each reply.
type ConversationAgent struct {
	*BaseAgent
}

// NewConversationAgent creates a new conversation agent
func NewConversationAgent(model llms.Model) *ConversationAgent {
	return &ConversationAgent{BaseAgent: NewBaseAgent("conversation", model)}
}

// Classify determines the intent of a user message. The model sees the last
// few turns of history plus the user's stored preferences; when the model
// call or the JSON parse fails, a keyword classifier takes over so the
// pipeline keeps moving.
func (a *ConversationAgent) Classify(ctx context.Context, userInput string,
	history []Turn, preferences map[string]string) IntentResult {

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	historyJSON, _ := json.Marshal(history)
	preferencesJSON, _ := json.Marshal(preferences)

	prompt := fmt.Sprintf(conversationPrompt, userInput, historyJSON, preferencesJSON)

	response, err := a.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Conversation agent model call failed, using keyword fallback: %v", err)
		return classifyByKeywords(userInput)
	}

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		log.Printf("Conversation agent returned no JSON, using keyword fallback")
		return classifyByKeywords(userInput)
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		log.Printf("Conversation agent JSON parse failed, using keyword fallback: %v", err)
		return classifyByKeywords(userInput)
	}
	if result.Intent == "" {
		return classifyByKeywords(userInput)
	}
	return result
}

// classifyByKeywords is the deterministic fallback classifier. It covers
// the phrasings the demo sessions actually use.
func classifyByKeywords(userInput string) IntentResult {
	text := strings.ToLower(userInput)

	contains := func(keywords ...string) bool {
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				return true
			}
		}
		return false
	}

	result := IntentResult{Confidence: 0.5, DomainValid: true}

	switch {
	case contains("checkout", "place my order", "place the order", "pay"):
		result.Intent = IntentCheckout
		result.ConversationalResponse = "Let's get your order placed!"
	case contains("cart", "basket"):
		result.Intent = IntentCartView
		result.ConversationalResponse = "Here's what's in your cart."
	case contains("add ", "order ", "i want ", "get me ", "i'll have"):
		result.Intent = IntentOrderPlacement
		result.ConversationalResponse = "Adding that to your cart."
	case contains("recommend", "suggest", "something spicy", "something sweet", "hungry", "what should i"):
		result.Intent = IntentRecommendation
		result.ConversationalResponse = "Here are some dishes picked for you."
	case contains("menu", "show me", "what do you have", "browse"):
		result.Intent = IntentMenuBrowse
		result.ConversationalResponse = "Here's our menu."
	case contains("hi", "hello", "hey", "good morning", "good evening"):
		result.Intent = IntentGreeting
		result.ConversationalResponse = "Hello! What are you in the mood for today?"
	default:
		result.Intent = IntentGeneral
		result.Confidence = 0.3
		result.ConversationalResponse = "I can help you browse the menu, get recommendations, or place an order."
	}

	return result
}
