package model

// Menu item types accepted by the `menu_items.item_type` enum.
const (
	ItemTypeMainCourse = "main course"
	ItemTypeAppetizer  = "appetizer"
	ItemTypeStarter    = "starter"
	ItemTypeDessert    = "dessert"
)

// MenuItem represents a dish offered by a restaurant.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – owning restaurant.
//  Name         – dish name.
//  Image        – URL of the dish image.
//  Description  – dish description.
//  Price        – price in KES.
//  ItemType     – main course, appetizer, starter or dessert.
//  Status       – active or inactive.
//  Count        – times the item has been pre-ordered.
//  Ingredients  – ingredient list.
type MenuItem struct {
	ID           uint64   // menu_items.id
	RestaurantID uint64   // menu_items.restaurant_id
	Name         string   // menu_items.name
	Image        string   // menu_items.image
	Description  string   // menu_items.description
	Price        float64  // menu_items.price
	ItemType     string   // menu_items.item_type
	Status       string   // menu_items.status ("active"/"inactive")
	Count        uint32   // menu_items.count
	Ingredients  []string // menu_items.ingredients (JSON column)
}
