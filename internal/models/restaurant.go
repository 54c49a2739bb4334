package models

import "github.com/jinzhu/gorm"

// Restaurant represents a restaurant serving menu items
type Restaurant struct {
	gorm.Model
	Name         string
	CuisineType  string
	Address      string
	MinimumOrder float64
	DeliveryFee  float64
	IsOpen       bool `gorm:"default:true"`
}
