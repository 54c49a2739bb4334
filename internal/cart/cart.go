// Package cart implements per-session shopping cart bookkeeping: items may
// only come from one restaurant at a time, quantities merge, and checkout
// is gated on the restaurant's minimum order.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"tiffin/internal/models"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrMixedRestaurants is returned when an item from a different restaurant
// is added to a non-empty cart.
var ErrMixedRestaurants = errors.New("cannot mix items from different restaurants")

// Catalog is the menu lookup the cart depends on.
type Catalog interface {
	GetMenuItem(itemID int) (*models.MenuItem, error)
	GetRestaurant(restaurantID int) (*models.Restaurant, error)
}

// Line is one entry in the cart.
type Line struct {
	ItemID         int     `json:"item_id"`
	ItemName       string  `json:"item_name"`
	RestaurantID   int     `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
}

// State is a snapshot of the cart with derived totals.
type State struct {
	Items           []Line  `json:"items"`
	Subtotal        float64 `json:"subtotal"`
	DeliveryFee     float64 `json:"delivery_fee"`
	Total           float64 `json:"total"`
	RestaurantID    int     `json:"restaurant_id,omitempty"`
	RestaurantName  string  `json:"restaurant_name,omitempty"`
	MinimumOrder    float64 `json:"minimum_order"`
	MinimumOrderMet bool    `json:"minimum_order_met"`
}

// Manager holds one session's cart.
type Manager struct {
	mu           sync.Mutex
	catalog      Catalog
	lines        []Line
	restaurantID int
}

// NewManager creates an empty cart over a catalog.
func NewManager(catalog Catalog) *Manager {
	return &Manager{catalog: catalog}
}

// AddItem adds quantity of a menu item to the cart, merging with an
// existing line for the same item.
func (m *Manager) AddItem(itemID, quantity int) (State, error) {
	if quantity < 1 {
		quantity = 1
	}

	item, err := m.catalog.GetMenuItem(itemID)
	if err != nil {
		return m.GetState(), fmt.Errorf("item not found or unavailable: %w", err)
	}

	restaurant, err := m.catalog.GetRestaurant(int(item.RestaurantID))
	if err != nil {
		return m.GetState(), fmt.Errorf("restaurant lookup failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.restaurantID == 0 {
		m.restaurantID = int(item.RestaurantID)
	} else if m.restaurantID != int(item.RestaurantID) {
		return m.stateLocked(), ErrMixedRestaurants
	}

	for i := range m.lines {
		if m.lines[i].ItemID == int(item.ID) {
			m.lines[i].Quantity += quantity
			m.lines[i].TotalPrice = float64(m.lines[i].Quantity) * m.lines[i].UnitPrice
			return m.stateLocked(), nil
		}
	}

	m.lines = append(m.lines, Line{
		ItemID:         int(item.ID),
		ItemName:       item.Name,
		RestaurantID:   int(item.RestaurantID),
		RestaurantName: restaurant.Name,
		Quantity:       quantity,
		UnitPrice:      item.Price,
		TotalPrice:     item.Price * float64(quantity),
	})

	return m.stateLocked(), nil
}

// RemoveItem drops an item from the cart entirely.
func (m *Manager) RemoveItem(itemID int) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].ItemID == itemID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			break
		}
	}
	if len(m.lines) == 0 {
		m.restaurantID = 0
	}

	return m.stateLocked()
}

// GetState returns a snapshot with derived totals.
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	if len(m.lines) == 0 {
		return State{Items: []Line{}}
	}

	state := State{
		Items:        make([]Line, len(m.lines)),
		RestaurantID: m.restaurantID,
	}
	copy(state.Items, m.lines)

	for _, line := range m.lines {
		state.Subtotal += line.TotalPrice
	}

	if restaurant, err := m.catalog.GetRestaurant(m.restaurantID); err == nil {
		state.RestaurantName = restaurant.Name
		state.DeliveryFee = restaurant.DeliveryFee
		state.MinimumOrder = restaurant.MinimumOrder
	}

	state.Total = state.Subtotal + state.DeliveryFee
	state.MinimumOrderMet = state.Subtotal >= state.MinimumOrder

	return state
}

// Clear empties the cart.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.restaurantID = 0
}

// OrderLines converts the cart contents into order line items for storage.
func (m *Manager) OrderLines() []models.OrderLineItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.OrderLineItem, 0, len(m.lines))
	for _, line := range m.lines {
		items = append(items, models.OrderLineItem{
			ItemID:     line.ItemID,
			Name:       line.ItemName,
			Quantity:   line.Quantity,
			Price:      line.UnitPrice,
			TotalPrice: line.TotalPrice,
		})
	}
	return items
}
