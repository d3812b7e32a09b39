package domain

import "math"

// Food описывает блюдо так, как его отдаёт бэкенд.
type Food struct {
	ID                 int64   `json:"id,omitempty"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	Category           string  `json:"category"`
	ImageURL           string  `json:"imageUrl"`
	IsAvailable        bool    `json:"isAvailable"`
	IsFeatured         bool    `json:"isFeatured"`
	Calories           *int    `json:"calories"`
	PreparationTime    *int    `json:"preparationTime"`
	Ingredients        string  `json:"ingredients"`
	Allergens          string  `json:"allergens"`
	HasDiscount        bool    `json:"hasDiscount,omitempty"`
	OriginalPrice      float64 `json:"originalPrice,omitempty"`
	DiscountedPrice    float64 `json:"discountedPrice,omitempty"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
}

// UnitPriceMinor возвращает фактическую цену за единицу в центах.
// При активной скидке используется цена со скидкой.
func (f Food) UnitPriceMinor() int64 {
	price := f.Price
	if f.HasDiscount && f.DiscountedPrice > 0 {
		price = f.DiscountedPrice
	}
	return ToMinor(price)
}

// ToMinor переводит сумму в долларах в центы с округлением.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
