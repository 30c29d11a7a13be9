package entity

import "github.com/uptrace/bun"

// MenuItem is a dish offered on the menu.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID          int64        `bun:",pk,autoincrement"`
	Name        string       `bun:"name,notnull,unique"`
	Price       float64      `bun:"price,notnull"`
	Category    *string      `bun:"category"`
	ImageURL    *string      `bun:"image_url"`
	Available   bool         `bun:"available,notnull"`
	Ingredients []Ingredient `bun:"m2m:menu_item_ingredients,join:MenuItem=Ingredient"`
}

// Ingredient is a named ingredient shared across menu items.
type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:i"`

	ID   int64  `bun:",pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// MenuItemIngredient links menu items to ingredients.
type MenuItemIngredient struct {
	bun.BaseModel `bun:"table:menu_item_ingredients,alias:mii"`

	MenuItemID   int64       `bun:",pk"`
	MenuItem     *MenuItem   `bun:"rel:belongs-to,join:menu_item_id=id"`
	IngredientID int64       `bun:",pk"`
	Ingredient   *Ingredient `bun:"rel:belongs-to,join:ingredient_id=id"`
}

// IngredientNames flattens the loaded ingredient relation.
func (m *MenuItem) IngredientNames() []string {
	names := make([]string, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}
