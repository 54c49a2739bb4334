package rl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "rl_state.json")
}

func TestLoadMissingFileColdStart(t *testing.T) {
	store := NewScoreStore()
	store.AddQ(1, 2, 1.0) // stale in-memory data must be cleared

	NewPersistenceManager(stateFile(t)).Load(store)

	qCount, userCount, itemCount := store.Counts()
	assert.Equal(t, 0, qCount)
	assert.Equal(t, 0, userCount)
	assert.Equal(t, 0, itemCount)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := stateFile(t)

	store := NewScoreStore()
	store.AddQ(1, 2, 0.3)
	store.AddQ(1, 3, 1.8)
	store.AddQ(4, 2, 0.1)
	store.AddPreference(1, 2, 0.2)
	store.AddPreference(1, 3, 1.5)
	store.AddPreference(4, 2, 0.9)
	store.AddPopularity(2, 1.1)
	store.AddPopularity(3, 0.5)
	// An item with popularity but no per-user entries.
	store.AddPopularity(77, 2.0)

	manager := NewPersistenceManager(path)
	manager.Save(store)

	restored := NewScoreStore()
	manager.Load(restored)

	wantQ, wantPrefs, wantPop := store.Snapshot()
	gotQ, gotPrefs, gotPop := restored.Snapshot()

	require.Len(t, gotQ, len(wantQ))
	for key, value := range wantQ {
		assert.InDelta(t, value, gotQ[key], 1e-9)
	}

	require.Len(t, gotPrefs, len(wantPrefs))
	for userID, prefs := range wantPrefs {
		require.Contains(t, gotPrefs, userID)
		require.Len(t, gotPrefs[userID], len(prefs))
		for itemID, weight := range prefs {
			assert.InDelta(t, weight, gotPrefs[userID][itemID], 1e-9)
		}
	}

	require.Len(t, gotPop, len(wantPop))
	for itemID, score := range wantPop {
		assert.InDelta(t, score, gotPop[itemID], 1e-9)
	}
}

func TestSaveOverwritesPreviousCheckpoint(t *testing.T) {
	path := stateFile(t)
	manager := NewPersistenceManager(path)

	store := NewScoreStore()
	store.AddQ(1, 2, 1.0)
	manager.Save(store)

	store.AddQ(1, 2, 1.0)
	manager.Save(store)

	restored := NewScoreStore()
	manager.Load(restored)
	assert.InDelta(t, 2.0, restored.GetQ(1, 2), 1e-9)
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	path := stateFile(t)

	state := persistedState{
		QValues: map[string]float64{
			"3_7":     1.5,
			"abc_xyz": 9.9,
			"4_2":     0.3,
		},
		UserPreferences: map[string]map[string]float64{
			"3":   {"7": 0.8, "oops": 1.0},
			"bad": {"1": 1.0},
		},
		ItemPopularity: map[string]float64{
			"7":    2.5,
			"junk": 1.0,
		},
		Timestamp: "2025-01-01T00:00:00Z",
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := NewScoreStore()
	NewPersistenceManager(path).Load(store)

	// Well-formed entries survive, malformed ones are dropped.
	assert.InDelta(t, 1.5, store.GetQ(3, 7), 1e-9)
	assert.InDelta(t, 0.3, store.GetQ(4, 2), 1e-9)
	assert.InDelta(t, 0.8, store.GetPreference(3, 7), 1e-9)
	assert.InDelta(t, 2.5, store.GetPopularity(7), 1e-9)

	qCount, userCount, itemCount := store.Counts()
	assert.Equal(t, 2, qCount)
	assert.Equal(t, 1, userCount)
	assert.Equal(t, 1, itemCount)
}

func TestLoadUnparseableFileFallsBackEmpty(t *testing.T) {
	path := stateFile(t)
	require.NoError(t, os.WriteFile(path, []byte("not json at all{"), 0o644))

	store := NewScoreStore()
	store.AddQ(9, 9, 9)
	NewPersistenceManager(path).Load(store)

	qCount, userCount, itemCount := store.Counts()
	assert.Equal(t, 0, qCount)
	assert.Equal(t, 0, userCount)
	assert.Equal(t, 0, itemCount)
}

func TestLoadToleratesMissingSections(t *testing.T) {
	path := stateFile(t)
	// Old-format file carrying only q_values; the other sections default
	// empty and unknown fields are ignored.
	payload := `{"q_values": {"1_2": 0.4}, "future_section": {"x": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store := NewScoreStore()
	NewPersistenceManager(path).Load(store)

	assert.InDelta(t, 0.4, store.GetQ(1, 2), 1e-9)
	_, userCount, itemCount := store.Counts()
	assert.Equal(t, 0, userCount)
	assert.Equal(t, 0, itemCount)
}

func TestSaveFailureLeavesStoreIntact(t *testing.T) {
	// A directory path cannot be written as a file.
	manager := NewPersistenceManager(t.TempDir())

	store := NewScoreStore()
	store.AddQ(1, 2, 0.7)
	manager.Save(store)

	assert.InDelta(t, 0.7, store.GetQ(1, 2), 1e-9)
}
