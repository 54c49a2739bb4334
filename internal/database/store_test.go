package database

import (
	"testing"

	"tiffin/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	SeedDefaultData(db)

	return NewStore(db)
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	items, err := store.SearchMenuItems("", "")
	require.NoError(t, err)
	count := len(items)
	require.NotZero(t, count)

	// Seeding again must not duplicate rows.
	SeedDefaultData(store.DB())
	items, err = store.SearchMenuItems("", "")
	require.NoError(t, err)
	assert.Len(t, items, count)
}

func TestSearchMenuItems(t *testing.T) {
	store := newTestStore(t)

	items, err := store.SearchMenuItems("naan", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Garlic Naan", items[0].Name)

	// Case-insensitive match.
	items, err = store.SearchMenuItems("BUTTER", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Butter Chicken", items[0].Name)

	// Cuisine filter narrows the catalog.
	items, err = store.SearchMenuItems("", "hyderabadi")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken Biryani", items[0].Name)

	// Unavailable items never surface.
	var dosa models.MenuItem
	require.NoError(t, store.DB().Where("name = ?", "Masala Dosa").First(&dosa).Error)
	require.NoError(t, store.DB().Model(&dosa).Update("availability", false).Error)

	items, err = store.SearchMenuItems("dosa", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFindMenuItemByName(t *testing.T) {
	store := newTestStore(t)

	item, err := store.FindMenuItemByName("gulab")
	require.NoError(t, err)
	assert.Equal(t, "Gulab Jamun", item.Name)

	_, err = store.FindMenuItemByName("pizza")
	assert.Error(t, err)
}

func TestGetUserAddress(t *testing.T) {
	store := newTestStore(t)

	var user models.User
	require.NoError(t, store.DB().Where("email = ?", "asha@example.com").First(&user).Error)

	address := store.GetUserAddress(int(user.ID))
	assert.Contains(t, address, "Asha Nair")
	assert.Contains(t, address, ",")

	assert.Equal(t, "Unknown Address", store.GetUserAddress(99999))
}

func TestCreateAndFetchOrder(t *testing.T) {
	store := newTestStore(t)

	lines := []models.OrderLineItem{
		{ItemID: 1, Name: "Butter Chicken", Quantity: 2, Price: 320, TotalPrice: 640},
	}
	orderID, err := store.CreateOrder(1, 1, lines, 680, "Asha Nair, 22 Lake View", "extra spicy")
	require.NoError(t, err)
	require.NotZero(t, orderID)

	order, err := store.GetOrder(orderID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderStatusPending), order.Status)
	assert.Equal(t, 680.0, order.TotalAmount)

	stored, err := order.GetItems()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Quantity)

	orders, err := store.GetUserOrders(1, 5)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestLogInteraction(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.LogInteraction(1, "session-1", "chat", "recommend something", "recommendation_request"))

	var count int64
	require.NoError(t, store.DB().Model(&models.UserInteraction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
