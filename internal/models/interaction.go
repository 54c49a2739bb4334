package models

import "github.com/jinzhu/gorm"

// UserInteraction logs a single user query for learning and analytics
type UserInteraction struct {
	gorm.Model
	UserID          uint
	SessionID       string `gorm:"index"`
	InteractionType string
	QueryText       string `gorm:"type:text"`
	Intent          string
}
