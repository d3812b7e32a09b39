package domain

// Shop: карточка заведения из GET /api/customer/shops.
type Shop struct {
	ID          int64    `json:"id"`
	ShopName    string   `json:"shopName"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	TotalOrders *int64   `json:"totalOrders"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
}

// RatingOrZero возвращает рейтинг, отсутствующий рейтинг считается нулём.
func (s Shop) RatingOrZero() float64 {
	if s.Rating == nil {
		return 0
	}
	return *s.Rating
}

// TotalOrdersOrZero возвращает число заказов, отсутствующее значение считается нулём.
func (s Shop) TotalOrdersOrZero() int64 {
	if s.TotalOrders == nil {
		return 0
	}
	return *s.TotalOrders
}
