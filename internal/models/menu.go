package models

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/gorm"
)

// MenuItem represents a dish on a restaurant's menu
type MenuItem struct {
	gorm.Model
	RestaurantID uint
	Name         string
	Description  string
	Price        float64
	Category     string
	CuisineType  string
	Tags         string `gorm:"type:text"` // JSON list of tags
	Availability bool   `gorm:"default:true"`
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	MenuCategoryAppetizer MenuCategory = "appetizer"
	MenuCategoryMain      MenuCategory = "main"
	MenuCategorySide      MenuCategory = "side"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategoryBeverage  MenuCategory = "beverage"
)

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price <= 0 {
		return fmt.Errorf("menu item price must be greater than 0")
	}
	if item.RestaurantID == 0 {
		return fmt.Errorf("menu item must belong to a restaurant")
	}
	return nil
}

// GetTags deserializes the item's tag list
func (mi *MenuItem) GetTags() ([]string, error) {
	if mi.Tags == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(mi.Tags), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// SetTags serializes and stores the item's tag list
func (mi *MenuItem) SetTags(tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	mi.Tags = string(data)
	return nil
}

// HasTag checks if the item carries a specific tag
func (mi *MenuItem) HasTag(tag string) bool {
	tags, err := mi.GetTags()
	if err != nil {
		return false
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category MenuCategory) bool {
	return mi.Category == string(category)
}
