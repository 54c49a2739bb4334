package rl

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Score blending weights. Personalized signals (Q-value and preference)
// carry 80% of the blend; cross-user popularity carries the rest and is
// additionally down-weighted by a factor of 10.
const (
	qWeight           = 0.4
	preferenceWeight  = 0.4
	popularityWeight  = 0.2
	popularityDamping = 0.1

	recommendationCap  = 5
	explorationTopN    = 3
	explorationRandomN = 2
)

// Candidate is a catalog item eligible for recommendation.
type Candidate struct {
	ItemID         int     `json:"item_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	Category       string  `json:"category,omitempty"`
	CuisineType    string  `json:"cuisine_type,omitempty"`
	RestaurantID   int     `json:"restaurant_id,omitempty"`
	RestaurantName string  `json:"restaurant_name,omitempty"`
}

// ScoredItem is a candidate annotated with its score components.
type ScoredItem struct {
	Candidate
	RLScore    float64 `json:"rl_score"`
	QValue     float64 `json:"q_value"`
	Preference float64 `json:"preference"`
}

// Recommender ranks catalog candidates for a user by blending learned
// signals from the score store, with epsilon-greedy exploration.
type Recommender struct {
	store   *ScoreStore
	epsilon float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommender creates a recommender. A nil rng gets a time-seeded
// source; tests inject a fixed seed for deterministic exploration.
func NewRecommender(store *ScoreStore, epsilon float64, rng *rand.Rand) *Recommender {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Recommender{store: store, epsilon: epsilon, rng: rng}
}

// Recommend scores every candidate, applies the exploration policy, and
// returns the top items capped at the display limit. Ties keep input order.
func (r *Recommender) Recommend(userID int, candidates []Candidate) []ScoredItem {
	if len(candidates) == 0 {
		return []ScoredItem{}
	}

	scored := make([]ScoredItem, 0, len(candidates))
	for _, candidate := range candidates {
		q := r.store.GetQ(userID, candidate.ItemID)
		pref := r.store.GetPreference(userID, candidate.ItemID)
		pop := r.store.GetPopularity(candidate.ItemID) * popularityDamping

		scored = append(scored, ScoredItem{
			Candidate:  candidate,
			RLScore:    q*qWeight + pref*preferenceWeight + pop*popularityWeight,
			QValue:     q,
			Preference: pref,
		})
	}

	var ranked []ScoredItem
	if r.explore() && len(scored) > explorationTopN {
		ranked = r.exploreList(scored)
	} else {
		ranked = make([]ScoredItem, len(scored))
		copy(ranked, scored)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].RLScore > ranked[j].RLScore
		})
	}

	if len(ranked) > recommendationCap {
		ranked = ranked[:recommendationCap]
	}
	return ranked
}

// explore rolls the epsilon-greedy dice.
func (r *Recommender) explore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.epsilon
}

// exploreList builds the hybrid exploration list: the top items by score
// plus a couple drawn uniformly from the whole pool. The random tail may
// duplicate a top item; that is accepted, it still surfaces fresh signal.
func (r *Recommender) exploreList(scored []ScoredItem) []ScoredItem {
	best := make([]ScoredItem, len(scored))
	copy(best, scored)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].RLScore > best[j].RLScore
	})
	best = best[:explorationTopN]

	sampleN := explorationRandomN
	if len(scored) < sampleN {
		sampleN = len(scored)
	}

	r.mu.Lock()
	indices := r.rng.Perm(len(scored))[:sampleN]
	r.mu.Unlock()

	hybrid := make([]ScoredItem, 0, len(best)+sampleN)
	hybrid = append(hybrid, best...)
	for _, idx := range indices {
		hybrid = append(hybrid, scored[idx])
	}
	return hybrid
}
