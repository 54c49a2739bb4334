package rl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStoreDefaultZero(t *testing.T) {
	store := NewScoreStore()

	assert.Equal(t, 0.0, store.GetQ(1, 2))
	assert.Equal(t, 0.0, store.GetPreference(1, 2))
	assert.Equal(t, 0.0, store.GetPopularity(2))

	// Reads must not materialize entries.
	qCount, userCount, itemCount := store.Counts()
	assert.Equal(t, 0, qCount)
	assert.Equal(t, 0, userCount)
	assert.Equal(t, 0, itemCount)
}

func TestScoreStoreAdditiveUpdates(t *testing.T) {
	store := NewScoreStore()

	store.AddQ(1, 2, 0.5)
	store.AddQ(1, 2, 0.25)
	store.AddPreference(1, 2, 0.2)
	store.AddPreference(1, 3, 0.4)
	store.AddPopularity(2, 1.0)

	assert.InDelta(t, 0.75, store.GetQ(1, 2), 1e-9)
	assert.InDelta(t, 0.2, store.GetPreference(1, 2), 1e-9)
	assert.InDelta(t, 0.4, store.GetPreference(1, 3), 1e-9)
	assert.InDelta(t, 1.0, store.GetPopularity(2), 1e-9)

	// Users and items are independent.
	assert.Equal(t, 0.0, store.GetQ(2, 2))
	assert.Equal(t, 0.0, store.GetPreference(2, 2))
}

func TestSnapshotIsDetached(t *testing.T) {
	store := NewScoreStore()
	store.AddQ(1, 2, 1.0)
	store.AddPreference(1, 2, 0.5)
	store.AddPopularity(2, 2.0)

	qValues, preferences, popularity := store.Snapshot()
	qValues[UserItem{UserID: 1, ItemID: 2}] = 99
	preferences[1][2] = 99
	popularity[2] = 99

	assert.InDelta(t, 1.0, store.GetQ(1, 2), 1e-9)
	assert.InDelta(t, 0.5, store.GetPreference(1, 2), 1e-9)
	assert.InDelta(t, 2.0, store.GetPopularity(2), 1e-9)
}

func TestUserItemEncodeDecode(t *testing.T) {
	tests := []struct {
		key     UserItem
		encoded string
	}{
		{UserItem{UserID: 3, ItemID: 7}, "3_7"},
		{UserItem{UserID: 12, ItemID: 345}, "12_345"},
		{UserItem{UserID: 0, ItemID: 0}, "0_0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.encoded, tt.key.Encode())

		decoded, err := DecodeUserItem(tt.encoded)
		require.NoError(t, err)
		assert.Equal(t, tt.key, decoded)
	}
}

func TestDecodeUserItemMalformed(t *testing.T) {
	malformed := []string{
		"abc_xyz",
		"3",
		"3_7_9",
		"_7",
		"3_",
		"",
		"3.5_7",
	}

	for _, key := range malformed {
		_, err := DecodeUserItem(key)
		assert.Error(t, err, "key %q should not decode", key)
	}
}
