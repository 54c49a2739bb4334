package database

import (
	"log"

	"tiffin/internal/models"

	"github.com/jinzhu/gorm"
)

// SeedDefaultData ensures demo restaurants, menu items, and users exist so
// a fresh install can take orders immediately
func SeedDefaultData(db *gorm.DB) {
	var restaurantCount int64
	db.Model(&models.Restaurant{}).Count(&restaurantCount)
	if restaurantCount == 0 {
		seedRestaurants(db)
	}

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		seedUsers(db)
	}
}

func seedRestaurants(db *gorm.DB) {
	spiceRoute := models.Restaurant{
		Name:         "Spice Route",
		CuisineType:  "north indian",
		Address:      "14 MG Road",
		MinimumOrder: 200,
		DeliveryFee:  40,
	}
	if err := db.Create(&spiceRoute).Error; err != nil {
		log.Printf("Failed to seed restaurant: %v", err)
		return
	}

	menu := []models.MenuItem{
		{RestaurantID: spiceRoute.ID, Name: "Butter Chicken", Description: "Creamy tomato gravy with tandoori chicken", Price: 320, Category: "main", CuisineType: "north indian"},
		{RestaurantID: spiceRoute.ID, Name: "Paneer Tikka", Description: "Char-grilled cottage cheese skewers", Price: 260, Category: "appetizer", CuisineType: "north indian"},
		{RestaurantID: spiceRoute.ID, Name: "Dal Makhani", Description: "Slow-cooked black lentils", Price: 220, Category: "main", CuisineType: "north indian"},
		{RestaurantID: spiceRoute.ID, Name: "Garlic Naan", Description: "Tandoor-baked flatbread", Price: 60, Category: "side", CuisineType: "north indian"},
		{RestaurantID: spiceRoute.ID, Name: "Chicken Biryani", Description: "Fragrant basmati rice with spiced chicken", Price: 340, Category: "main", CuisineType: "hyderabadi"},
		{RestaurantID: spiceRoute.ID, Name: "Gulab Jamun", Description: "Syrup-soaked milk dumplings", Price: 120, Category: "dessert", CuisineType: "north indian"},
		{RestaurantID: spiceRoute.ID, Name: "Masala Dosa", Description: "Crisp rice crepe with potato filling", Price: 180, Category: "main", CuisineType: "south indian"},
		{RestaurantID: spiceRoute.ID, Name: "Mango Lassi", Description: "Sweet yogurt drink with mango", Price: 110, Category: "beverage", CuisineType: "north indian"},
	}

	tagged := map[string][]string{
		"Butter Chicken":  {"bestseller", "creamy", "mild"},
		"Paneer Tikka":    {"vegetarian", "grilled", "spicy"},
		"Dal Makhani":     {"vegetarian", "comfort"},
		"Chicken Biryani": {"spicy", "bestseller"},
		"Masala Dosa":     {"vegetarian", "breakfast"},
	}

	for i := range menu {
		if tags, ok := tagged[menu[i].Name]; ok {
			if err := menu[i].SetTags(tags); err != nil {
				log.Printf("Failed to serialize tags for %s: %v", menu[i].Name, err)
			}
		}
		if err := db.Create(&menu[i]).Error; err != nil {
			log.Printf("Failed to seed menu item %s: %v", menu[i].Name, err)
		}
	}
}

func seedUsers(db *gorm.DB) {
	users := []models.User{
		{Name: "Asha Nair", Email: "asha@example.com", Address: "22 Lake View Apartments, Koramangala"},
		{Name: "Rohan Mehta", Email: "rohan@example.com", Address: "5 Palm Grove, Indiranagar"},
	}

	for i := range users {
		if err := users[i].SetPreferences(map[string]string{"spice_level": "medium"}); err != nil {
			log.Printf("Failed to serialize preferences: %v", err)
		}
		if err := users[i].SetDietaryRestrictions([]string{}); err != nil {
			log.Printf("Failed to serialize dietary restrictions: %v", err)
		}
		if err := db.Create(&users[i]).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", users[i].Name, err)
		}
	}
}
