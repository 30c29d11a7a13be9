package dto

import "github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"

// MenuItemResponse is a menu item with its ingredient names.
type MenuItemResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
	Available   bool     `json:"available"`
	Ingredients []string `json:"ingredients"`
}

// AvailabilityResponse is returned by the availability toggle.
type AvailabilityResponse struct {
	ID        int64 `json:"id"`
	Available bool  `json:"available"`
}

// MenuItemCreatedResponse is returned when an admin adds a menu item.
type MenuItemCreatedResponse struct {
	MenuItemID int64 `json:"menuItemId"`
}

// FavoriteResponse is a starred menu item.
type FavoriteResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL *string `json:"image_url"`
	Category *string `json:"category"`
}

// FromMenuItem converts a menu item with loaded ingredients.
func FromMenuItem(m *entity.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		Available:   m.Available,
		Ingredients: m.IngredientNames(),
	}
}

// FromMenuItems converts a listing, keeping its order.
func FromMenuItems(items []*entity.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMenuItem(m))
	}
	return out
}

// FromFavorites converts starred menu items.
func FromFavorites(items []*entity.MenuItem) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FavoriteResponse{ID: m.ID, Name: m.Name, Price: m.Price, ImageURL: m.ImageURL, Category: m.Category})
	}
	return out
}
