package render

import (
	"fmt"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

const placeholderFoodImage = "/images/placeholder-food.jpg"

// ShopCard: карточка магазина в сетке.
type ShopCard struct {
	ID          int64
	Name        string
	Address     string
	City        string
	Description string
	Stars       []Star
	Rating      string
	Orders      int64
}

// ShopGridView: страница списка магазинов.
type ShopGridView struct {
	Shops      []ShopCard
	CountLabel string
	Cities     []string
	Search     string
	City       string
	Sort       string
	Cart       CartBadgeView
	Messages   []AlertView
}

// ShopDetailView: подробности магазина.
type ShopDetailView struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	City        string
	Stars       []Star
	Rating      string
	Orders      int64
	Description string
}

// FoodRow: строка таблицы блюд.
type FoodRow struct {
	ID            int64
	Name          string
	ImageURL      string
	Category      string
	Price         string
	HasDiscount   bool
	OriginalPrice string
	Discounted    string
	DiscountLabel string
	Available     bool
	Featured      bool
}

// FoodTableView: таблица блюд заведения.
type FoodTableView struct {
	Foods    []FoodRow
	Messages []AlertView
}

// CartBadgeView: бейдж корзины в шапке.
type CartBadgeView struct {
	Count   int
	Visible bool
	Total   string
}

// AlertView: уведомление над контентом.
type AlertView struct {
	ID    string
	Level string
	Text  string
}

// NewShopCard строит карточку; описание обрезается до DescriptionLimit.
func NewShopCard(s domain.Shop) ShopCard {
	rating := s.RatingOrZero()
	return ShopCard{
		ID:          s.ID,
		Name:        s.ShopName,
		Address:     s.Address,
		City:        s.City,
		Description: Truncate(s.Description, DescriptionLimit),
		Stars:       Stars(rating),
		Rating:      fmt.Sprintf("%.1f", rating),
		Orders:      s.TotalOrdersOrZero(),
	}
}

// NewShopDetail строит модальное окно подробностей.
func NewShopDetail(s domain.Shop) ShopDetailView {
	rating := s.RatingOrZero()
	phone := s.PhoneNumber
	if phone == "" {
		phone = "Not provided"
	}
	city := s.City
	if city == "" {
		city = "Not specified"
	}
	return ShopDetailView{
		Name:        s.ShopName,
		Email:       s.Email,
		Phone:       phone,
		Address:     s.Address,
		City:        city,
		Stars:       Stars(rating),
		Rating:      fmt.Sprintf("%.1f", rating),
		Orders:      s.TotalOrdersOrZero(),
		Description: s.Description,
	}
}

// NewFoodRow строит строку таблицы блюд.
func NewFoodRow(f domain.Food) FoodRow {
	image := f.ImageURL
	if image == "" {
		image = placeholderFoodImage
	}
	category := f.Category
	if category == "" {
		category = "N/A"
	}
	row := FoodRow{
		ID:          f.ID,
		Name:        f.Name,
		ImageURL:    image,
		Category:    category,
		Price:       Price(f.Price),
		HasDiscount: f.HasDiscount,
		Available:   f.IsAvailable,
		Featured:    f.IsFeatured,
	}
	if f.HasDiscount {
		row.OriginalPrice = Price(f.OriginalPrice)
		row.Discounted = Price(f.DiscountedPrice)
		row.DiscountLabel = fmt.Sprintf("-%g%%", f.DiscountPercentage)
	}
	return row
}

// NewShopCards строит карточки для всей выборки.
func NewShopCards(shops []domain.Shop) []ShopCard {
	cards := make([]ShopCard, 0, len(shops))
	for _, s := range shops {
		cards = append(cards, NewShopCard(s))
	}
	return cards
}

// NewFoodRows строит строки для всей таблицы.
func NewFoodRows(foods []domain.Food) []FoodRow {
	rows := make([]FoodRow, 0, len(foods))
	for _, f := range foods {
		rows = append(rows, NewFoodRow(f))
	}
	return rows
}
