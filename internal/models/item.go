package models

// Categories is the allow-list for Item.Category.
var Categories = []string{"electronics", "books", "clothing", "food", "toys", "sports", "home"}

// ValidCategory reports whether c is one of the allowed item categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Item is a catalog record with a server-assigned auto-incrementing ID.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// CreateItemRequest is the payload for creating a new item.
type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"gte=0,lte=999999.99"`
	Category    string  `json:"category" validate:"required,category"`
}

// UpdateItemRequest is the payload for updating an existing item.
type UpdateItemRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"gte=0,lte=999999.99"`
	Category    string  `json:"category" validate:"required,category"`
}
