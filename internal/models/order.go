package models

import (
	"encoding/json"

	"github.com/jinzhu/gorm"
)

// Order represents a placed food order
type Order struct {
	gorm.Model
	UserID              uint
	RestaurantID        uint
	OrderItems          string `gorm:"type:text"` // JSON list of OrderLineItem
	TotalAmount         float64
	DeliveryAddress     string
	SpecialInstructions string
	Status              string
}

// OrderLineItem represents one line of an order, stored with the item name
// so order history stays readable even if the menu changes
type OrderLineItem struct {
	ItemID     int     `json:"item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// GetItems deserializes the order's line items
func (o *Order) GetItems() ([]OrderLineItem, error) {
	if o.OrderItems == "" {
		return []OrderLineItem{}, nil
	}
	var items []OrderLineItem
	if err := json.Unmarshal([]byte(o.OrderItems), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetItems serializes and stores the order's line items
func (o *Order) SetItems(items []OrderLineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	o.OrderItems = string(data)
	return nil
}
