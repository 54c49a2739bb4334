package orchestrator

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"tiffin/internal/database"
	"tiffin/internal/models"
	"tiffin/internal/monitoring"
	"tiffin/internal/rl"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrchestrator brings up the full pipeline on an in-memory database
// with a nil model, so the agents run on their deterministic fallbacks.
func newTestOrchestrator(t *testing.T) (*Orchestrator, *Session) {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	restaurant := models.Restaurant{Name: "Spice Route", CuisineType: "north indian", MinimumOrder: 200, DeliveryFee: 40}
	require.NoError(t, db.Create(&restaurant).Error)

	menu := []models.MenuItem{
		{RestaurantID: restaurant.ID, Name: "Butter Chicken", Description: "creamy tomato gravy", Price: 320, Category: "main", CuisineType: "north indian"},
		{RestaurantID: restaurant.ID, Name: "Garlic Naan", Description: "tandoor flatbread", Price: 60, Category: "side", CuisineType: "north indian"},
		{RestaurantID: restaurant.ID, Name: "Chicken Biryani", Description: "spicy basmati rice", Price: 340, Category: "main", CuisineType: "hyderabadi"},
	}
	for i := range menu {
		require.NoError(t, db.Create(&menu[i]).Error)
	}

	user := models.User{Name: "Asha Nair", Email: "asha@example.com", Address: "22 Lake View"}
	require.NoError(t, db.Create(&user).Error)

	store := database.NewStore(db)

	params := rl.Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 0}
	engine := rl.NewEngine(params, filepath.Join(t.TempDir(), "state.json"), rand.New(rand.NewSource(1)))

	o := New(store, engine, nil, monitoring.NewMetricsCollector(), monitoring.NewMonitor())
	require.NoError(t, o.SeedMenuVectors())

	session, welcome := o.NewSession(int(user.ID))
	require.Contains(t, welcome, "Asha Nair")

	return o, session
}

func TestChatRecommendationFlow(t *testing.T) {
	o, session := newTestOrchestrator(t)

	response := o.Chat(context.Background(), session, "recommend me something")

	assert.Equal(t, "recommendation_request", response.Intent)
	assert.NotEmpty(t, response.Recommendations)
	assert.LessOrEqual(t, len(response.Recommendations), 5)
	assert.Contains(t, response.Message, "•")

	// The shown batch must be recorded for later selection correlation.
	assert.NotEmpty(t, session.currentEventID)

	summary, err := o.Summary(session.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalInteractions)
}

func TestChatOrderFlow(t *testing.T) {
	o, session := newTestOrchestrator(t)

	response := o.Chat(context.Background(), session, "add 2 garlic naan")

	assert.Equal(t, "order_placement", response.Intent)
	require.Len(t, response.Cart.Items, 1)
	assert.Equal(t, "Garlic Naan", response.Cart.Items[0].ItemName)
	assert.Equal(t, 2, response.Cart.Items[0].Quantity)
	assert.Contains(t, response.Message, "Cart Total")

	// The selection feeds the learning loop.
	item, err := o.store.FindMenuItemByName("garlic naan")
	require.NoError(t, err)
	q := o.engine.Store().GetQ(session.UserID, int(item.ID))
	assert.InDelta(t, 0.1, q, 1e-9)
}

func TestChatUnknownItem(t *testing.T) {
	o, session := newTestOrchestrator(t)

	response := o.Chat(context.Background(), session, "add 1 pepperoni pizza")

	assert.Contains(t, response.Message, "couldn't find")
	assert.Empty(t, response.Cart.Items)
}

func TestChatCartView(t *testing.T) {
	o, session := newTestOrchestrator(t)

	o.Chat(context.Background(), session, "add 1 butter chicken")
	response := o.Chat(context.Background(), session, "what's in my cart?")

	assert.Equal(t, "cart_view", response.Intent)
	assert.Contains(t, response.Message, "Butter Chicken")
	assert.Contains(t, response.Message, "Spice Route")
}

func TestChatGeneralFallthrough(t *testing.T) {
	o, session := newTestOrchestrator(t)

	response := o.Chat(context.Background(), session, "tell me a story")

	assert.Equal(t, "general", response.Intent)
	assert.Empty(t, response.Recommendations)
}

func TestCheckoutFlow(t *testing.T) {
	o, session := newTestOrchestrator(t)

	o.Chat(context.Background(), session, "add 1 butter chicken")
	result := o.Checkout(session)

	require.True(t, result.Success)
	assert.NotZero(t, result.OrderID)
	assert.Equal(t, 360.0, result.Total) // 320 + 40 delivery
	assert.Contains(t, result.DeliveryAddress, "Asha Nair")
	assert.InDelta(t, 1.0, result.Reward, 1e-9)

	// Cart is cleared after a successful checkout.
	assert.Empty(t, o.CartState(session).Items)

	order, err := o.store.GetOrder(result.OrderID)
	require.NoError(t, err)
	lines, err := order.GetItems()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Butter Chicken", lines[0].Name)
}

func TestCheckoutEmptyCart(t *testing.T) {
	o, session := newTestOrchestrator(t)

	result := o.Checkout(session)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "empty")
}

func TestCheckoutMinimumNotMet(t *testing.T) {
	o, session := newTestOrchestrator(t)

	o.Chat(context.Background(), session, "add 1 garlic naan") // 60 < 200 minimum
	result := o.Checkout(session)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "minimum")
}

func TestParseOrderRequest(t *testing.T) {
	tests := []struct {
		input        string
		wantName     string
		wantQuantity int
	}{
		{"add 2 garlic naan", "garlic naan", 2},
		{"i want butter chicken", "butter chicken", 1},
		{"get me 3 chicken biryani please", "chicken biryani", 3},
		{"order masala dosa", "masala dosa", 1},
		{"add 2 garlic naan to my cart", "garlic naan", 2},
		{"", "", 1},
	}

	for _, tt := range tests {
		name, quantity := parseOrderRequest(tt.input)
		assert.Equal(t, tt.wantName, name, "input %q", tt.input)
		assert.Equal(t, tt.wantQuantity, quantity, "input %q", tt.input)
	}
}

func TestFeedbackReachesStore(t *testing.T) {
	o, session := newTestOrchestrator(t)

	item, err := o.store.FindMenuItemByName("chicken biryani")
	require.NoError(t, err)

	require.NoError(t, o.Feedback(session.UserID, int(item.ID), 4.0))

	// 4/5 normalized; preference takes the raw normalized score.
	pref := o.engine.Store().GetPreference(session.UserID, int(item.ID))
	assert.InDelta(t, 0.8, pref, 1e-9)
}
