// Package orchestrator wires the conversation pipeline: classify each user
// message, route it to the learning loop, the cart, or plain conversation,
// and keep per-session context as the exchange unfolds.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"tiffin/internal/agents"
	"tiffin/internal/cart"
	"tiffin/internal/database"
	"tiffin/internal/models"
	"tiffin/internal/monitoring"
	"tiffin/internal/rl"
	"tiffin/internal/vectorstore"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// Orchestrator routes classified user messages to the right subsystem.
type Orchestrator struct {
	store          *database.Store
	engine         *rl.Engine
	conversation   *agents.ConversationAgent
	recommendation *agents.RecommendationAgent
	orders         *agents.OrderHandlerAgent
	conversations  *vectorstore.Store
	menu           *vectorstore.Store
	metrics        *monitoring.MetricsCollector
	monitor        *monitoring.Monitor
}

// New creates an orchestrator over the data store, the learning engine, and
// a language model shared by the three agents.
func New(store *database.Store, engine *rl.Engine, model llms.Model,
	metrics *monitoring.MetricsCollector, monitor *monitoring.Monitor) *Orchestrator {

	return &Orchestrator{
		store:          store,
		engine:         engine,
		conversation:   agents.NewConversationAgent(model),
		recommendation: agents.NewRecommendationAgent(model),
		orders:         agents.NewOrderHandlerAgent(model),
		conversations:  vectorstore.New(),
		menu:           vectorstore.New(),
		metrics:        metrics,
		monitor:        monitor,
	}
}

// SeedMenuVectors loads the catalog into the menu collection so dish
// queries can be answered semantically. Call once at startup.
func (o *Orchestrator) SeedMenuVectors() error {
	items, err := o.store.SearchMenuItems("", "")
	if err != nil {
		return fmt.Errorf("failed to load catalog for vector seeding: %w", err)
	}

	for _, item := range items {
		tags, _ := item.GetTags()
		content := strings.Join([]string{
			item.Name, item.Description, item.Category, item.CuisineType,
			strings.Join(tags, " "),
		}, " ")

		o.menu.Add(vectorstore.Document{
			ID:      fmt.Sprintf("menu-%d", item.ID),
			Content: content,
			Metadata: map[string]interface{}{
				"item_id": int(item.ID),
			},
		})
	}

	log.Printf("Seeded %d menu items into the vector store", o.menu.Len())
	return nil
}

// Session holds one user's conversation state.
type Session struct {
	ID       string
	UserID   int
	UserName string

	mu             sync.Mutex
	preferences    map[string]string
	cart           *cart.Manager
	history        []agents.Turn
	currentEventID string
}

// NewSession creates a session for a user and returns it with the opening
// message. Unknown users still get a session; they just start as guests.
func (o *Orchestrator) NewSession(userID int) (*Session, string) {
	session := &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		UserName:    "Guest",
		preferences: map[string]string{},
		cart:        cart.NewManager(o.store),
	}

	if user, err := o.store.GetUser(userID); err == nil {
		session.UserName = user.Name
		if prefs, err := user.GetPreferences(); err == nil {
			session.preferences = prefs
		}
	} else {
		log.Printf("Session for unknown user %d: %v", userID, err)
	}

	welcome := fmt.Sprintf(
		"Hi %s! I'm your food ordering assistant. Ask me for recommendations, browse the menu, or tell me what you'd like to order.",
		session.UserName)
	return session, welcome
}

// ChatResponse is the structured result of one processed message.
type ChatResponse struct {
	Status          string          `json:"status"`
	Message         string          `json:"message"`
	Recommendations []rl.ScoredItem `json:"recommendations"`
	Intent          string          `json:"intent"`
	SessionID       string          `json:"session_id"`
	Cart            cart.State      `json:"cart"`
}

// Chat runs one user message through the pipeline: classify, branch on
// intent, learn from the interaction, and keep the session context current.
func (o *Orchestrator) Chat(ctx context.Context, session *Session, userInput string) ChatResponse {
	session.mu.Lock()
	history := append([]agents.Turn(nil), session.history...)
	preferences := session.preferences
	session.mu.Unlock()

	intent := o.conversation.Classify(ctx, userInput, history, preferences)
	o.metrics.ObserveChat(intent.Intent)
	o.monitor.IncrementCounter("chat_messages")
	log.Printf("Session %s intent: %s", session.ID, intent.Intent)

	response := ChatResponse{
		Status:    "success",
		Message:   intent.ConversationalResponse,
		Intent:    intent.Intent,
		SessionID: session.ID,
	}

	switch intent.Intent {
	case agents.IntentRecommendation, agents.IntentMenuBrowse, agents.IntentItemDetails:
		o.handleRecommendation(ctx, session, userInput, intent, &response)
	case agents.IntentOrderPlacement:
		o.handleOrder(ctx, session, userInput, &response)
	case agents.IntentCartView:
		state := session.cart.GetState()
		response.Message = cartText(state)
	case agents.IntentCheckout:
		result := o.Checkout(session)
		response.Message = result.Message
	}

	response.Cart = session.cart.GetState()

	o.remember(session, userInput, response.Message, intent.Intent)
	return response
}

// handleRecommendation serves personalized items: dish-detail queries get a
// semantic slice of the catalog, everything else the full catalog.
func (o *Orchestrator) handleRecommendation(ctx context.Context, session *Session,
	userInput string, intent agents.IntentResult, response *ChatResponse) {

	var candidates []rl.Candidate
	var err error
	if intent.Intent == agents.IntentItemDetails {
		candidates, err = o.semanticCandidates(userInput)
	} else {
		candidates, err = o.catalogCandidates()
	}
	if err != nil {
		log.Printf("Failed to load candidates: %v", err)
		response.Message = "I couldn't reach the menu right now. Please try again."
		return
	}

	recommendations, err := o.engine.Recommend(session.UserID, candidates)
	if err != nil {
		log.Printf("Recommendation failed for user %d: %v", session.UserID, err)
		response.Message = "I couldn't build recommendations right now."
		return
	}
	if len(recommendations) == 0 {
		response.Message = "Nothing on the menu matches that right now."
		return
	}

	shown := make([]rl.ShownItem, len(recommendations))
	names := make([]string, len(recommendations))
	for i, item := range recommendations {
		shown[i] = rl.ShownItem{ItemID: item.ItemID, Name: item.Name}
		names[i] = item.Name
	}
	eventID, err := o.engine.RecordShown(session.UserID, shown)
	if err != nil {
		log.Printf("Failed to record shown batch: %v", err)
	}

	session.mu.Lock()
	session.currentEventID = eventID
	session.mu.Unlock()

	intro := o.recommendation.Introduce(ctx, userInput, names)
	lines := make([]string, len(recommendations))
	for i, item := range recommendations {
		lines[i] = fmt.Sprintf("• %s - ₹%.0f (score: %.2f)", item.Name, item.Price, item.RLScore)
	}
	response.Message = intro + "\n\n" + strings.Join(lines, "\n")
	response.Recommendations = recommendations

	o.metrics.ObserveRecommendations(len(recommendations))
}

// handleOrder parses "add 2 garlic naan" style requests into a cart action.
func (o *Orchestrator) handleOrder(ctx context.Context, session *Session,
	userInput string, response *ChatResponse) {

	itemName, quantity := parseOrderRequest(userInput)
	if itemName == "" {
		response.Message = "Which dish would you like? Try something like \"add 2 garlic naan\"."
		return
	}

	item, err := o.store.FindMenuItemByName(itemName)
	if err != nil {
		response.Message = fmt.Sprintf("I couldn't find %q on the menu.", itemName)
		return
	}

	session.mu.Lock()
	eventID := session.currentEventID
	session.mu.Unlock()

	if err := o.engine.RecordSelected(session.UserID, int(item.ID), eventID); err != nil {
		log.Printf("Failed to record selection: %v", err)
	}

	state, err := session.cart.AddItem(int(item.ID), quantity)
	if err != nil {
		response.Message = fmt.Sprintf("I couldn't add that: %v", err)
		return
	}

	confirmation := o.orders.Confirm(ctx, "added", item.Name, quantity)
	response.Message = fmt.Sprintf("%s\n\nCart Total: ₹%.0f", confirmation, state.Total)
}

// AddToCart is the direct, non-conversational add used by the button-style
// endpoints. It still feeds the selection into the learning loop.
func (o *Orchestrator) AddToCart(session *Session, itemID, quantity int) (cart.State, error) {
	session.mu.Lock()
	eventID := session.currentEventID
	session.mu.Unlock()

	if err := o.engine.RecordSelected(session.UserID, itemID, eventID); err != nil {
		log.Printf("Failed to record selection: %v", err)
	}
	return session.cart.AddItem(itemID, quantity)
}

// CartState returns the session's current cart.
func (o *Orchestrator) CartState(session *Session) cart.State {
	return session.cart.GetState()
}

// CheckoutResult reports the outcome of a checkout attempt.
type CheckoutResult struct {
	Success         bool    `json:"success"`
	OrderID         int     `json:"order_id,omitempty"`
	Total           float64 `json:"total,omitempty"`
	DeliveryAddress string  `json:"delivery_address,omitempty"`
	Reward          float64 `json:"rl_reward,omitempty"`
	Message         string  `json:"message"`
}

// Checkout validates the cart, stores the order, applies the completion
// reward, and checkpoints the learned state.
func (o *Orchestrator) Checkout(session *Session) CheckoutResult {
	state := session.cart.GetState()

	if len(state.Items) == 0 {
		return CheckoutResult{Message: "Your cart is empty."}
	}
	if !state.MinimumOrderMet {
		remaining := state.MinimumOrder - state.Subtotal
		return CheckoutResult{
			Message: fmt.Sprintf("Add ₹%.0f more to reach the ₹%.0f minimum order.", remaining, state.MinimumOrder),
		}
	}

	address := o.store.GetUserAddress(session.UserID)
	orderLines := session.cart.OrderLines()

	orderID, err := o.store.CreateOrder(session.UserID, state.RestaurantID,
		orderLines, state.Total, address, "")
	if err != nil {
		log.Printf("Order creation failed for user %d: %v", session.UserID, err)
		return CheckoutResult{Message: "Something went wrong placing your order. Please try again."}
	}

	completed := rl.CompletedOrder{Total: state.Total}
	for _, line := range orderLines {
		completed.Items = append(completed.Items, rl.OrderLine{
			ItemID:   line.ItemID,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	reward, err := o.engine.RecordCompleted(session.UserID, completed)
	if err != nil {
		log.Printf("Failed to apply completion reward: %v", err)
	}
	o.engine.SaveState()
	o.metrics.ObserveOrder(state.Total, reward.Reward)
	o.monitor.IncrementCounter("orders_completed")

	session.cart.Clear()

	return CheckoutResult{
		Success:         true,
		OrderID:         orderID,
		Total:           state.Total,
		DeliveryAddress: address,
		Reward:          reward.Reward,
		Message:         fmt.Sprintf("Order #%d placed! It will be delivered to %s.", orderID, address),
	}
}

// Feedback applies an explicit rating to the learning loop.
func (o *Orchestrator) Feedback(userID, itemID int, score float64) error {
	return o.engine.RecordFeedback(userID, itemID, score)
}

// Summary reports what the engine has learned about a user.
func (o *Orchestrator) Summary(userID int) (rl.Summary, error) {
	return o.engine.Summary(userID)
}

// remember appends the exchange to the session history, the conversation
// vector store, and the interaction log.
func (o *Orchestrator) remember(session *Session, userInput, reply, intent string) {
	session.mu.Lock()
	session.history = append(session.history,
		agents.Turn{Role: "user", Content: userInput},
		agents.Turn{Role: "assistant", Content: reply},
	)
	turn := len(session.history)
	session.mu.Unlock()

	o.conversations.Add(vectorstore.Document{
		ID:      fmt.Sprintf("%s-%d", session.ID, turn),
		Content: userInput,
		Metadata: map[string]interface{}{
			"user_id":    session.UserID,
			"session_id": session.ID,
			"intent":     intent,
		},
	})

	if err := o.store.LogInteraction(session.UserID, session.ID, "chat", userInput, intent); err != nil {
		log.Printf("Failed to log interaction: %v", err)
	}
}

// catalogCandidates converts the full available menu into scoring
// candidates, resolving restaurant names once per restaurant.
func (o *Orchestrator) catalogCandidates() ([]rl.Candidate, error) {
	items, err := o.store.SearchMenuItems("", "")
	if err != nil {
		return nil, err
	}
	return o.toCandidates(items), nil
}

// semanticCandidates narrows the catalog to the dishes closest to the
// query in the menu vector collection.
func (o *Orchestrator) semanticCandidates(query string) ([]rl.Candidate, error) {
	docs := o.menu.Query(query, 5, nil)
	if len(docs) == 0 {
		return o.catalogCandidates()
	}

	var items []rl.Candidate
	for _, doc := range docs {
		itemID, ok := doc.Metadata["item_id"].(int)
		if !ok {
			continue
		}
		item, err := o.store.GetMenuItem(itemID)
		if err != nil {
			continue
		}
		items = append(items, o.toCandidates([]models.MenuItem{*item})...)
	}
	return items, nil
}

func (o *Orchestrator) toCandidates(items []models.MenuItem) []rl.Candidate {
	restaurantNames := map[int]string{}
	candidates := make([]rl.Candidate, 0, len(items))

	for _, item := range items {
		restaurantID := int(item.RestaurantID)
		name, ok := restaurantNames[restaurantID]
		if !ok {
			if restaurant, err := o.store.GetRestaurant(restaurantID); err == nil {
				name = restaurant.Name
			}
			restaurantNames[restaurantID] = name
		}

		candidates = append(candidates, rl.Candidate{
			ItemID:         int(item.ID),
			Name:           item.Name,
			Description:    item.Description,
			Price:          item.Price,
			Category:       item.Category,
			CuisineType:    item.CuisineType,
			RestaurantID:   restaurantID,
			RestaurantName: name,
		})
	}
	return candidates
}

var orderNumbers = regexp.MustCompile(`\d+`)

// parseOrderRequest extracts an item name and quantity from phrasings like
// "add 2 garlic naan" or "i want butter chicken".
func parseOrderRequest(input string) (string, int) {
	quantity := 1
	if numbers := orderNumbers.FindAllString(input, -1); len(numbers) > 0 {
		fmt.Sscanf(numbers[0], "%d", &quantity)
		if quantity < 1 {
			quantity = 1
		}
	}

	name := strings.ToLower(input)
	name = orderNumbers.ReplaceAllString(name, "")

	for _, prefix := range []string{"add", "i want", "get me", "order", "i'll have", "please"} {
		name = strings.TrimSpace(name)
		name = strings.TrimPrefix(name, prefix)
	}
	for _, suffix := range []string{"to my cart", "to the cart", "please"} {
		name = strings.TrimSpace(name)
		name = strings.TrimSuffix(name, suffix)
	}

	return strings.TrimSpace(name), quantity
}

// cartText renders the cart for conversational replies.
func cartText(state cart.State) string {
	if len(state.Items) == 0 {
		return "Your cart is empty. Ask me for recommendations to get started!"
	}

	lines := make([]string, 0, len(state.Items)+2)
	lines = append(lines, fmt.Sprintf("Your cart from %s:", state.RestaurantName))
	for _, line := range state.Items {
		lines = append(lines, fmt.Sprintf("• %dx %s - ₹%.0f", line.Quantity, line.ItemName, line.TotalPrice))
	}
	lines = append(lines, fmt.Sprintf("Subtotal ₹%.0f + delivery ₹%.0f = ₹%.0f",
		state.Subtotal, state.DeliveryFee, state.Total))

	if !state.MinimumOrderMet {
		lines = append(lines, fmt.Sprintf("Add ₹%.0f more to reach the minimum order.",
			state.MinimumOrder-state.Subtotal))
	}
	return strings.Join(lines, "\n")
}
