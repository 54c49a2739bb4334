package rl

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"
)

// persistedState is the on-disk checkpoint format. Compound (user, item)
// keys are flattened to "user_item" strings; absent sections load as empty
// so old files stay readable as the format grows.
type persistedState struct {
	QValues         map[string]float64            `json:"q_values"`
	UserPreferences map[string]map[string]float64 `json:"user_preferences"`
	ItemPopularity  map[string]float64            `json:"item_popularity"`
	Timestamp       string                        `json:"timestamp"`
}

// PersistenceManager checkpoints a ScoreStore to a JSON file and restores
// it. Failures are logged, never propagated: a stale or absent checkpoint
// only means recommendations are less personalized.
type PersistenceManager struct {
	path string
}

// NewPersistenceManager creates a persistence manager writing to path.
func NewPersistenceManager(path string) *PersistenceManager {
	return &PersistenceManager{path: path}
}

// Path returns the checkpoint file path.
func (p *PersistenceManager) Path() string {
	return p.path
}

// Save serializes the store to the checkpoint file, overwriting any
// previous checkpoint. The in-memory store is unaffected on failure.
func (p *PersistenceManager) Save(store *ScoreStore) {
	qValues, preferences, popularity := store.Snapshot()

	state := persistedState{
		QValues:         make(map[string]float64, len(qValues)),
		UserPreferences: make(map[string]map[string]float64, len(preferences)),
		ItemPopularity:  make(map[string]float64, len(popularity)),
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	for key, value := range qValues {
		state.QValues[key.Encode()] = value
	}

	for userID, prefs := range preferences {
		serialized := make(map[string]float64, len(prefs))
		for itemID, weight := range prefs {
			serialized[strconv.Itoa(itemID)] = weight
		}
		state.UserPreferences[strconv.Itoa(userID)] = serialized
	}

	for itemID, score := range popularity {
		state.ItemPopularity[strconv.Itoa(itemID)] = score
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("rl: failed to serialize state: %v", err)
		return
	}

	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		log.Printf("rl: failed to save state to %s: %v", p.path, err)
		return
	}

	log.Printf("rl: state saved to %s (%d q-values, %d users, %d items)",
		p.path, len(state.QValues), len(state.UserPreferences), len(state.ItemPopularity))
}

// Load restores the store from the checkpoint file. A missing file is a
// cold start, an unparseable file resets to empty, and malformed
// individual entries are skipped with a warning so one corrupt key cannot
// lose the rest of the checkpoint.
func (p *PersistenceManager) Load(store *ScoreStore) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("rl: no state file at %s, starting fresh", p.path)
		} else {
			log.Printf("rl: failed to read state from %s: %v", p.path, err)
		}
		store.Restore(nil, nil, nil)
		return
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("rl: failed to parse state file %s: %v", p.path, err)
		store.Restore(nil, nil, nil)
		return
	}

	qValues := make(map[UserItem]float64, len(state.QValues))
	for key, value := range state.QValues {
		decoded, err := DecodeUserItem(key)
		if err != nil {
			log.Printf("rl: skipping q-value entry: %v", err)
			continue
		}
		qValues[decoded] = value
	}

	preferences := make(map[int]map[int]float64, len(state.UserPreferences))
	for userKey, prefs := range state.UserPreferences {
		userID, err := strconv.Atoi(userKey)
		if err != nil {
			log.Printf("rl: skipping preferences for malformed user key %q", userKey)
			continue
		}

		restored := make(map[int]float64, len(prefs))
		for itemKey, weight := range prefs {
			itemID, err := strconv.Atoi(itemKey)
			if err != nil {
				log.Printf("rl: skipping preference for malformed item key %q (user %d)", itemKey, userID)
				continue
			}
			restored[itemID] = weight
		}
		preferences[userID] = restored
	}

	popularity := make(map[int]float64, len(state.ItemPopularity))
	for itemKey, score := range state.ItemPopularity {
		itemID, err := strconv.Atoi(itemKey)
		if err != nil {
			log.Printf("rl: skipping popularity for malformed item key %q", itemKey)
			continue
		}
		popularity[itemID] = score
	}

	store.Restore(qValues, preferences, popularity)

	log.Printf("rl: state loaded from %s (%d q-values, %d users, %d items)",
		p.path, len(qValues), len(preferences), len(popularity))
}
