package models

import (
	"encoding/json"

	"github.com/jinzhu/gorm"
)

// User represents a registered customer
type User struct {
	gorm.Model
	Name                string
	Email               string `gorm:"unique_index"`
	Address             string
	Preferences         string `gorm:"type:text"` // JSON map of preference -> weight
	DietaryRestrictions string `gorm:"type:text"` // JSON list of restrictions
}

// GetPreferences deserializes the user's preference map
func (u *User) GetPreferences() (map[string]string, error) {
	prefs := make(map[string]string)
	if u.Preferences == "" {
		return prefs, nil
	}
	if err := json.Unmarshal([]byte(u.Preferences), &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPreferences serializes and stores the user's preference map
func (u *User) SetPreferences(prefs map[string]string) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	u.Preferences = string(data)
	return nil
}

// GetDietaryRestrictions deserializes the user's dietary restrictions
func (u *User) GetDietaryRestrictions() ([]string, error) {
	if u.DietaryRestrictions == "" {
		return []string{}, nil
	}
	var restrictions []string
	if err := json.Unmarshal([]byte(u.DietaryRestrictions), &restrictions); err != nil {
		return nil, err
	}
	return restrictions, nil
}

// SetDietaryRestrictions serializes and stores the dietary restrictions
func (u *User) SetDietaryRestrictions(restrictions []string) error {
	data, err := json.Marshal(restrictions)
	if err != nil {
		return err
	}
	u.DietaryRestrictions = string(data)
	return nil
}
