package rl

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// UserItem is the compound key for per-user, per-item learned values.
type UserItem struct {
	UserID int
	ItemID int
}

// Encode flattens the key into a string for serialization.
func (k UserItem) Encode() string {
	return fmt.Sprintf("%d_%d", k.UserID, k.ItemID)
}

// DecodeUserItem parses a flat "user_item" key back into a compound key.
// Both components must be integers; anything else is rejected.
func DecodeUserItem(s string) (UserItem, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return UserItem{}, fmt.Errorf("malformed key %q: want two underscore-separated fields", s)
	}

	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return UserItem{}, fmt.Errorf("malformed user id in key %q: %w", s, err)
	}

	itemID, err := strconv.Atoi(parts[1])
	if err != nil {
		return UserItem{}, fmt.Errorf("malformed item id in key %q: %w", s, err)
	}

	return UserItem{UserID: userID, ItemID: itemID}, nil
}

// ScoreStore holds the three learned mappings: per-(user,item) Q-values,
// per-(user,item) preference weights, and global per-item popularity.
// Reads of an absent key return 0 without materializing the entry;
// additive writes create the entry if needed. All access is guarded by a
// single lock, which is sufficient since every update is O(1).
type ScoreStore struct {
	mu          sync.RWMutex
	qValues     map[UserItem]float64
	preferences map[int]map[int]float64
	popularity  map[int]float64
}

// NewScoreStore creates an empty score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		qValues:     make(map[UserItem]float64),
		preferences: make(map[int]map[int]float64),
		popularity:  make(map[int]float64),
	}
}

// GetQ returns the learned Q-value for a (user, item) pair, or 0.
func (s *ScoreStore) GetQ(userID, itemID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qValues[UserItem{UserID: userID, ItemID: itemID}]
}

// GetPreference returns the preference weight for a (user, item) pair, or 0.
func (s *ScoreStore) GetPreference(userID, itemID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences[userID][itemID]
}

// GetPopularity returns the global popularity score for an item, or 0.
func (s *ScoreStore) GetPopularity(itemID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.popularity[itemID]
}

// AddQ adds delta to the Q-value for a (user, item) pair.
func (s *ScoreStore) AddQ(userID, itemID int, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qValues[UserItem{UserID: userID, ItemID: itemID}] += delta
}

// AddPreference adds delta to the preference weight for a (user, item) pair.
func (s *ScoreStore) AddPreference(userID, itemID int, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs := s.preferences[userID]
	if prefs == nil {
		prefs = make(map[int]float64)
		s.preferences[userID] = prefs
	}
	prefs[itemID] += delta
}

// AddPopularity adds delta to the global popularity score for an item.
func (s *ScoreStore) AddPopularity(itemID int, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popularity[itemID] += delta
}

// UserPreferences returns a copy of all preference weights for a user.
func (s *ScoreStore) UserPreferences(userID int) map[int]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs := make(map[int]float64, len(s.preferences[userID]))
	for itemID, weight := range s.preferences[userID] {
		prefs[itemID] = weight
	}
	return prefs
}

// Snapshot returns deep copies of all three mappings, suitable for
// serialization without holding the lock during I/O.
func (s *ScoreStore) Snapshot() (map[UserItem]float64, map[int]map[int]float64, map[int]float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qValues := make(map[UserItem]float64, len(s.qValues))
	for key, value := range s.qValues {
		qValues[key] = value
	}

	preferences := make(map[int]map[int]float64, len(s.preferences))
	for userID, prefs := range s.preferences {
		copied := make(map[int]float64, len(prefs))
		for itemID, weight := range prefs {
			copied[itemID] = weight
		}
		preferences[userID] = copied
	}

	popularity := make(map[int]float64, len(s.popularity))
	for itemID, score := range s.popularity {
		popularity[itemID] = score
	}

	return qValues, preferences, popularity
}

// Restore replaces all three mappings with the given state. Nil maps are
// treated as empty.
func (s *ScoreStore) Restore(qValues map[UserItem]float64, preferences map[int]map[int]float64, popularity map[int]float64) {
	if qValues == nil {
		qValues = make(map[UserItem]float64)
	}
	if preferences == nil {
		preferences = make(map[int]map[int]float64)
	}
	if popularity == nil {
		popularity = make(map[int]float64)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.qValues = qValues
	s.preferences = preferences
	s.popularity = popularity
}

// Counts returns the number of stored Q-values, users with preferences,
// and items with popularity scores.
func (s *ScoreStore) Counts() (int, int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.qValues), len(s.preferences), len(s.popularity)
}
