package database

import (
	"fmt"
	"strings"

	"tiffin/internal/models"

	"github.com/jinzhu/gorm"
)

// Store wraps catalog, user, and order queries behind one type so callers
// never touch gorm directly.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store around an open database connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// User methods

// GetUser returns a user by ID
func (s *Store) GetUser(userID int) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user %d not found: %w", userID, err)
	}
	return &user, nil
}

// GetUserAddress returns the formatted delivery address for a user
func (s *Store) GetUserAddress(userID int) string {
	user, err := s.GetUser(userID)
	if err != nil {
		return "Unknown Address"
	}
	if user.Address == "" {
		return user.Name
	}
	return fmt.Sprintf("%s, %s", user.Name, user.Address)
}

// Menu methods

// SearchMenuItems returns available menu items matching a name search term
// and an optional cuisine filter. An empty term returns the full catalog,
// capped at 20 rows as the listing endpoints expect.
func (s *Store) SearchMenuItems(searchTerm, cuisineFilter string) ([]models.MenuItem, error) {
	query := s.db.Where("availability = ?", true)

	if searchTerm != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(searchTerm)+"%")
	}
	if cuisineFilter != "" {
		query = query.Where("cuisine_type = ?", cuisineFilter)
	}

	var items []models.MenuItem
	if err := query.Limit(20).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("menu search failed: %w", err)
	}
	return items, nil
}

// GetMenuItem returns an available menu item by ID
func (s *Store) GetMenuItem(itemID int) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Where("availability = ?", true).First(&item, itemID).Error; err != nil {
		return nil, fmt.Errorf("menu item %d not found: %w", itemID, err)
	}
	return &item, nil
}

// FindMenuItemByName returns the first available item whose name matches
// the search term
func (s *Store) FindMenuItemByName(name string) (*models.MenuItem, error) {
	items, err := s.SearchMenuItems(name, "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no menu item matching %q", name)
	}
	return &items[0], nil
}

// Restaurant methods

// GetRestaurant returns a restaurant by ID
func (s *Store) GetRestaurant(restaurantID int) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, restaurantID).Error; err != nil {
		return nil, fmt.Errorf("restaurant %d not found: %w", restaurantID, err)
	}
	return &restaurant, nil
}

// Order methods

// CreateOrder stores a new order and returns its ID
func (s *Store) CreateOrder(userID, restaurantID int, items []models.OrderLineItem,
	totalAmount float64, deliveryAddress, specialInstructions string) (int, error) {

	order := models.Order{
		UserID:              uint(userID),
		RestaurantID:        uint(restaurantID),
		TotalAmount:         totalAmount,
		DeliveryAddress:     deliveryAddress,
		SpecialInstructions: specialInstructions,
		Status:              string(models.OrderStatusPending),
	}
	if err := order.SetItems(items); err != nil {
		return 0, fmt.Errorf("failed to serialize order items: %w", err)
	}

	if err := s.db.Create(&order).Error; err != nil {
		return 0, fmt.Errorf("order creation failed: %w", err)
	}
	return int(order.ID), nil
}

// GetOrder returns an order by ID
func (s *Store) GetOrder(orderID int) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("order %d not found: %w", orderID, err)
	}
	return &order, nil
}

// GetUserOrders returns a user's most recent orders
func (s *Store) GetUserOrders(userID, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// Interaction logging

// LogInteraction records a user query for later analysis
func (s *Store) LogInteraction(userID int, sessionID, interactionType, queryText, intent string) error {
	interaction := models.UserInteraction{
		UserID:          uint(userID),
		SessionID:       sessionID,
		InteractionType: interactionType,
		QueryText:       queryText,
		Intent:          intent,
	}
	return s.db.Create(&interaction).Error
}
