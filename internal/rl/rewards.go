package rl

import (
	"log"
	"time"
)

// Reward shaping constants. The selection increments are deliberately
// small: a selection is a weak signal compared to a completed order.
const (
	selectionPreferenceDelta = 0.2
	selectionPopularityDelta = 0.1

	orderBaseReward    = 1.0
	highValueBonus     = 0.5
	highValueThreshold = 500.0
	multiItemBonus     = 0.3
	multiItemThreshold = 3

	popularityPerQuantity = 0.5

	// Feedback above 1 is assumed to be on a 0-5 rating scale.
	feedbackRatingScale = 5.0
)

// OrderLine is one line item of a completed order.
type OrderLine struct {
	ItemID   int     `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CompletedOrder carries the line items and total of a checked-out order.
type CompletedOrder struct {
	Items []OrderLine `json:"items"`
	Total float64     `json:"total"`
}

// RewardInfo reports the reward granted for a completed order.
type RewardInfo struct {
	UserID     int     `json:"user_id"`
	Reward     float64 `json:"reward"`
	ItemsCount int     `json:"items_count"`
	OrderTotal float64 `json:"order_total"`
	Timestamp  string  `json:"timestamp"`
}

// RewardUpdater translates observed events (selection, order completion,
// explicit feedback) into score store mutations.
type RewardUpdater struct {
	store *ScoreStore
	alpha float64
}

// NewRewardUpdater creates a reward updater applying learning rate alpha.
func NewRewardUpdater(store *ScoreStore, alpha float64) *RewardUpdater {
	return &RewardUpdater{store: store, alpha: alpha}
}

// ItemSelected applies the small positive signal for a user acting on a
// recommendation: Q-value moves by alpha, preference and popularity by
// fixed increments.
func (u *RewardUpdater) ItemSelected(userID, itemID int) {
	oldQ := u.store.GetQ(userID, itemID)

	u.store.AddQ(userID, itemID, u.alpha)
	u.store.AddPreference(userID, itemID, selectionPreferenceDelta)
	u.store.AddPopularity(itemID, selectionPopularityDelta)

	log.Printf("rl: user %d selected item %d (q %.3f -> %.3f)",
		userID, itemID, oldQ, u.store.GetQ(userID, itemID))
}

// OrderCompleted applies the high reward signal at checkout. The order-level
// reward (base plus bonuses for high-value and multi-item orders) is applied
// in full to every distinct line item, not divided across them, so items in
// large or valuable orders accumulate credit faster.
func (u *RewardUpdater) OrderCompleted(userID int, order CompletedOrder) RewardInfo {
	reward := orderBaseReward

	if order.Total > highValueThreshold {
		reward += highValueBonus
	}
	if len(order.Items) > multiItemThreshold {
		reward += multiItemBonus
	}

	for _, line := range order.Items {
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}

		u.store.AddQ(userID, line.ItemID, reward)
		u.store.AddPreference(userID, line.ItemID, reward)
		u.store.AddPopularity(line.ItemID, float64(quantity)*popularityPerQuantity)
	}

	log.Printf("rl: user %d completed order (reward %.2f, %d items, total %.2f)",
		userID, reward, len(order.Items), order.Total)

	return RewardInfo{
		UserID:     userID,
		Reward:     reward,
		ItemsCount: len(order.Items),
		OrderTotal: order.Total,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// Feedback applies an explicit rating. Scores above 1 are normalized from
// the 0-5 rating scale into [0,1]. The Q-value update is scaled by the
// learning rate; the preference update takes the normalized score directly.
func (u *RewardUpdater) Feedback(userID, itemID int, score float64) {
	if score > 1 {
		score = score / feedbackRatingScale
	}

	u.store.AddQ(userID, itemID, score*u.alpha)
	u.store.AddPreference(userID, itemID, score)

	log.Printf("rl: user %d rated item %d: %.2f/1.0", userID, itemID, score)
}
