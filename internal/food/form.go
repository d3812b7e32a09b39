package food

import (
	"math"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// Form: поля формы создания/редактирования блюда в том виде, как их вводит пользователь.
type Form struct {
	Name            string
	Description     string
	Price           string
	Category        string
	ImageURL        string
	Available       bool
	Featured        bool
	Calories        string
	PreparationTime string
	Ingredients     string
	Allergens       string
}

// FormFromFood заполняет форму данными блюда (режим редактирования).
func FormFromFood(f domain.Food) Form {
	return Form{
		Name:            f.Name,
		Description:     f.Description,
		Price:           strconv.FormatFloat(f.Price, 'f', -1, 64),
		Category:        f.Category,
		ImageURL:        f.ImageURL,
		Available:       f.IsAvailable,
		Featured:        f.IsFeatured,
		Calories:        optionalIntString(f.Calories),
		PreparationTime: optionalIntString(f.PreparationTime),
		Ingredients:     f.Ingredients,
		Allergens:       f.Allergens,
	}
}

// ToFood собирает запись для бэкенда: цена числом, калории и время приготовления целым или null.
func (f Form) ToFood() (domain.Food, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return domain.Food{}, domain.ErrFoodNameRequired
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.Food{}, domain.ErrPriceInvalid
	}

	return domain.Food{
		Name:            name,
		Description:     f.Description,
		Price:           price,
		Category:        f.Category,
		ImageURL:        f.ImageURL,
		IsAvailable:     f.Available,
		IsFeatured:      f.Featured,
		Calories:        parseOptionalInt(f.Calories),
		PreparationTime: parseOptionalInt(f.PreparationTime),
		Ingredients:     f.Ingredients,
		Allergens:       f.Allergens,
	}, nil
}

// parseOptionalInt берёт ведущее целое число; пусто, мусор и ноль дают nil.
func parseOptionalInt(raw string) *int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

func optionalIntString(v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.Itoa(*v)
}
