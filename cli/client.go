package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the tiffin server
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("TIFFIN_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		BaseURL: baseURL,
	}
}

// Ping checks if the API server is available
func (c *ApiClient) Ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Session is the server-side conversation handle
type Session struct {
	SessionID string `json:"session_id"`
	UserID    int    `json:"user_id"`
	UserName  string `json:"user_name"`
	Message   string `json:"message"`
}

// ChatReply is the structured answer to one chat message
type ChatReply struct {
	Status          string           `json:"status"`
	Message         string           `json:"message"`
	Intent          string           `json:"intent"`
	Recommendations []Recommendation `json:"recommendations"`
	Cart            Cart             `json:"cart"`
}

// Recommendation is one personalized menu item
type Recommendation struct {
	ItemID  int     `json:"item_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	RLScore float64 `json:"rl_score"`
}

// Cart mirrors the server's cart state
type Cart struct {
	Items           []CartLine `json:"items"`
	Subtotal        float64    `json:"subtotal"`
	DeliveryFee     float64    `json:"delivery_fee"`
	Total           float64    `json:"total"`
	RestaurantName  string     `json:"restaurant_name"`
	MinimumOrder    float64    `json:"minimum_order"`
	MinimumOrderMet bool       `json:"minimum_order_met"`
}

// CartLine is one entry in the cart
type CartLine struct {
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// CheckoutResult reports the outcome of a checkout
type CheckoutResult struct {
	Success         bool    `json:"success"`
	OrderID         int     `json:"order_id"`
	Total           float64 `json:"total"`
	DeliveryAddress string  `json:"delivery_address"`
	Reward          float64 `json:"rl_reward"`
	Message         string  `json:"message"`
}

// Summary reports the personalization state for a user
type Summary struct {
	UserID            int       `json:"user_id"`
	LearnedItems      int       `json:"learned_items"`
	TopItems          []TopItem `json:"top_items"`
	TotalInteractions int       `json:"total_interactions"`
}

// TopItem is one entry of the personalization summary
type TopItem struct {
	ItemID          int     `json:"item_id"`
	PreferenceScore float64 `json:"preference_score"`
}

// InitSession opens a session for the given user
func (c *ApiClient) InitSession(userID int) (*Session, error) {
	var session Session
	if err := c.post("/api/init", map[string]interface{}{"user_id": userID}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Chat sends one message within a session
func (c *ApiClient) Chat(sessionID, message string) (*ChatReply, error) {
	var reply ChatReply
	err := c.post("/api/chat", map[string]interface{}{
		"session_id": sessionID,
		"message":    message,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetCart retrieves the session's cart
func (c *ApiClient) GetCart(sessionID string) (*Cart, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/cart?session_id=" + sessionID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get cart: %s", string(body))
	}

	var cart Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Checkout completes the session's order. An unmet minimum comes back as a
// result with Success=false, not as an error.
func (c *ApiClient) Checkout(sessionID string) (*CheckoutResult, error) {
	data, err := json.Marshal(map[string]interface{}{"session_id": sessionID})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.BaseURL+"/api/checkout", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("checkout failed: %s", string(body))
	}

	var result CheckoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSummary retrieves the personalization summary for a user
func (c *ApiClient) GetSummary(userID int) (*Summary, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/api/rl/summary?user_id=%d", c.BaseURL, userID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get summary: %s", string(body))
	}

	var summary Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *ApiClient) post(path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.BaseURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s failed: %s", path, string(body))
	}

	return json.Unmarshal(body, out)
}
