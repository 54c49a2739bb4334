package rl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidatePool(n int) []Candidate {
	pool := make([]Candidate, n)
	for i := range pool {
		pool[i] = Candidate{ItemID: i + 1, Name: "item", Price: 100}
	}
	return pool
}

// greedyRecommender never explores so ranking tests are deterministic.
func greedyRecommender(store *ScoreStore) *Recommender {
	return NewRecommender(store, 0, rand.New(rand.NewSource(1)))
}

func TestRecommendEmptyCandidates(t *testing.T) {
	rec := greedyRecommender(NewScoreStore())
	assert.Empty(t, rec.Recommend(1, nil))
}

func TestRecommendColdStartPreservesInputOrder(t *testing.T) {
	rec := greedyRecommender(NewScoreStore())

	pool := candidatePool(5)
	ranked := rec.Recommend(1, pool)

	require.Len(t, ranked, 5)
	for i, item := range ranked {
		// All scores are 0 on a cold start; the stable sort must keep
		// the catalog order.
		assert.Equal(t, pool[i].ItemID, item.ItemID)
		assert.Equal(t, 0.0, item.RLScore)
		assert.Equal(t, 0.0, item.QValue)
		assert.Equal(t, 0.0, item.Preference)
	}
}

func TestRecommendBlendedScore(t *testing.T) {
	store := NewScoreStore()
	store.AddQ(1, 3, 2.0)
	store.AddPreference(1, 3, 1.0)
	store.AddPopularity(3, 10.0)

	rec := greedyRecommender(store)
	ranked := rec.Recommend(1, candidatePool(5))

	require.NotEmpty(t, ranked)
	top := ranked[0]
	assert.Equal(t, 3, top.ItemID)
	// 0.4*2.0 + 0.4*1.0 + 0.2*(10.0*0.1)
	assert.InDelta(t, 1.4, top.RLScore, 1e-9)
	assert.InDelta(t, 2.0, top.QValue, 1e-9)
	assert.InDelta(t, 1.0, top.Preference, 1e-9)
}

func TestRecommendRanksByScoreDescending(t *testing.T) {
	store := NewScoreStore()
	store.AddPreference(1, 2, 0.5)
	store.AddPreference(1, 4, 1.5)
	store.AddPreference(1, 6, 1.0)

	rec := greedyRecommender(store)
	ranked := rec.Recommend(1, candidatePool(6))

	require.Len(t, ranked, 5)
	assert.Equal(t, 4, ranked[0].ItemID)
	assert.Equal(t, 6, ranked[1].ItemID)
	assert.Equal(t, 2, ranked[2].ItemID)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i].RLScore, ranked[i-1].RLScore)
	}
}

func TestRecommendCap(t *testing.T) {
	store := NewScoreStore()
	for i := 1; i <= 10; i++ {
		store.AddPreference(1, i, float64(i))
	}

	rec := greedyRecommender(store)

	assert.Len(t, rec.Recommend(1, candidatePool(10)), 5)
	assert.Len(t, rec.Recommend(1, candidatePool(2)), 2)
}

func TestExplorationListShape(t *testing.T) {
	store := NewScoreStore()
	for i := 1; i <= 10; i++ {
		store.AddPreference(1, i, float64(i))
	}

	// Epsilon 1 forces the exploration branch on every call.
	rec := NewRecommender(store, 1, rand.New(rand.NewSource(42)))
	ranked := rec.Recommend(1, candidatePool(10))

	require.Len(t, ranked, 5)
	// The head is the greedy top-3; the tail is drawn from the pool and
	// may duplicate one of them.
	assert.Equal(t, 10, ranked[0].ItemID)
	assert.Equal(t, 9, ranked[1].ItemID)
	assert.Equal(t, 8, ranked[2].ItemID)
}

func TestExplorationSkippedForSmallPools(t *testing.T) {
	store := NewScoreStore()
	store.AddPreference(1, 1, 1.0)
	store.AddPreference(1, 2, 3.0)
	store.AddPreference(1, 3, 2.0)

	// Even with epsilon 1, three or fewer candidates always rank greedily.
	rec := NewRecommender(store, 1, rand.New(rand.NewSource(7)))
	ranked := rec.Recommend(1, candidatePool(3))

	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].ItemID)
	assert.Equal(t, 3, ranked[1].ItemID)
	assert.Equal(t, 1, ranked[2].ItemID)
}

func TestExplorationFrequency(t *testing.T) {
	store := NewScoreStore()
	for i := 1; i <= 10; i++ {
		store.AddPreference(1, i, float64(i))
	}

	rec := NewRecommender(store, 0.1, rand.New(rand.NewSource(99)))
	pool := candidatePool(10)

	const trials = 5000
	explored := 0
	for i := 0; i < trials; i++ {
		ranked := rec.Recommend(1, pool)
		// Greedy output is exactly items 10..6; anything else means the
		// exploration branch fired.
		greedy := len(ranked) == 5
		for j, item := range ranked {
			if item.ItemID != 10-j {
				greedy = false
				break
			}
		}
		if !greedy {
			explored++
		}
	}

	rate := float64(explored) / trials
	// The exploration branch fires with probability epsilon, though a
	// random tail can coincide with the greedy order, so the observed
	// rate sits at or just under epsilon.
	assert.Less(t, rate, 0.13)
	assert.Greater(t, rate, 0.06)
}
