// Package rl implements the reinforcement-learning personalization loop:
// per-user per-item value estimates updated from selections, completed
// orders, and explicit feedback, blended into recommendation scores with
// epsilon-greedy exploration, and checkpointed to disk across restarts.
package rl

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ErrInvalidIdentifier is returned when a caller passes a non-positive
// user or item identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrInvalidScore is returned when a feedback score is not a finite number.
var ErrInvalidScore = errors.New("invalid feedback score")

// Hyperparameters are the process-wide learning constants, fixed at
// construction and not persisted.
type Hyperparameters struct {
	// Alpha is the learning rate applied to selection and feedback
	// Q-value updates.
	Alpha float64 `yaml:"alpha"`
	// Gamma is the discount factor. It is declared for future temporal-
	// difference credit assignment but does not enter the current blend.
	Gamma float64 `yaml:"gamma"`
	// Epsilon is the exploration rate for epsilon-greedy recommendation.
	Epsilon float64 `yaml:"epsilon"`
}

// DefaultHyperparameters returns the standard learning constants.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 0.1}
}

// TopItem is one entry of a user's learning summary.
type TopItem struct {
	ItemID          int     `json:"item_id"`
	PreferenceScore float64 `json:"preference_score"`
}

// Summary reports what the engine has learned about a user.
type Summary struct {
	UserID            int       `json:"user_id"`
	LearnedItems      int       `json:"learned_items"`
	TopItems          []TopItem `json:"top_items"`
	TotalInteractions int       `json:"total_interactions"`
}

// Engine ties the score store, event recorder, reward updater, recommender,
// and persistence manager into the personalization loop consumed by the
// orchestration layer.
type Engine struct {
	params      Hyperparameters
	store       *ScoreStore
	events      *EventRecorder
	rewards     *RewardUpdater
	recommender *Recommender
	persistence *PersistenceManager
}

// NewEngine creates an engine with an empty store. A nil rng gets a
// time-seeded source. Call LoadState to hydrate from a prior checkpoint.
func NewEngine(params Hyperparameters, statePath string, rng *rand.Rand) *Engine {
	store := NewScoreStore()
	return &Engine{
		params:      params,
		store:       store,
		events:      NewEventRecorder(),
		rewards:     NewRewardUpdater(store, params.Alpha),
		recommender: NewRecommender(store, params.Epsilon, rng),
		persistence: NewPersistenceManager(statePath),
	}
}

// Store exposes the underlying score store.
func (e *Engine) Store() *ScoreStore {
	return e.store
}

// RecordShown logs that a recommendation batch was shown and returns the
// event identifier for later correlation.
func (e *Engine) RecordShown(userID int, recommendations []ShownItem) (string, error) {
	if userID <= 0 {
		return "", ErrInvalidIdentifier
	}
	return e.events.RecordShown(userID, recommendations), nil
}

// RecordSelected applies the selection reward. The event ID, when present,
// ties the selection back to the shown batch for traceability; it does not
// change the reward magnitude.
func (e *Engine) RecordSelected(userID, itemID int, eventID string) error {
	if userID <= 0 || itemID <= 0 {
		return ErrInvalidIdentifier
	}

	e.events.MarkSelected(eventID, itemID)
	e.rewards.ItemSelected(userID, itemID)
	return nil
}

// RecordCompleted applies the order-completion reward and reports the
// reward granted.
func (e *Engine) RecordCompleted(userID int, order CompletedOrder) (RewardInfo, error) {
	if userID <= 0 {
		return RewardInfo{}, ErrInvalidIdentifier
	}
	for _, line := range order.Items {
		if line.ItemID <= 0 {
			return RewardInfo{}, ErrInvalidIdentifier
		}
	}
	return e.rewards.OrderCompleted(userID, order), nil
}

// RecordFeedback applies an explicit rating. Non-finite scores are
// rejected so NaN or Inf can never reach the store.
func (e *Engine) RecordFeedback(userID, itemID int, score float64) error {
	if userID <= 0 || itemID <= 0 {
		return ErrInvalidIdentifier
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return ErrInvalidScore
	}

	e.rewards.Feedback(userID, itemID, score)
	return nil
}

// Recommend returns the personalized ranked top items for a user.
func (e *Engine) Recommend(userID int, candidates []Candidate) ([]ScoredItem, error) {
	if userID <= 0 {
		return nil, ErrInvalidIdentifier
	}
	return e.recommender.Recommend(userID, candidates), nil
}

// Summary reports the learning state for a user: how many items carry a
// preference weight, the top five by weight, and how many recommendation
// batches the user has been shown.
func (e *Engine) Summary(userID int) (Summary, error) {
	if userID <= 0 {
		return Summary{}, ErrInvalidIdentifier
	}

	prefs := e.store.UserPreferences(userID)

	top := make([]TopItem, 0, len(prefs))
	for itemID, weight := range prefs {
		top = append(top, TopItem{ItemID: itemID, PreferenceScore: weight})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].PreferenceScore != top[j].PreferenceScore {
			return top[i].PreferenceScore > top[j].PreferenceScore
		}
		return top[i].ItemID < top[j].ItemID
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return Summary{
		UserID:            userID,
		LearnedItems:      len(prefs),
		TopItems:          top,
		TotalInteractions: e.events.TotalInteractions(userID),
	}, nil
}

// SaveState checkpoints the score store. Errors are logged, not returned.
func (e *Engine) SaveState() {
	e.persistence.Save(e.store)
}

// LoadState restores the score store from the checkpoint file, starting
// empty when no usable checkpoint exists.
func (e *Engine) LoadState() {
	e.persistence.Load(e.store)
}
