package shop

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// SortKey: порядок отображения магазинов.
type SortKey string

const (
	SortNone   SortKey = ""
	SortName   SortKey = "name"
	SortRating SortKey = "rating"
	SortOrders SortKey = "orders"
)

// ParseSortKey разбирает значение из формы или флага CLI; "none" равнозначно пустому.
func ParseSortKey(raw string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case SortNone, SortName, SortRating, SortOrders:
		return key, nil
	case "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", domain.ErrSortKeyInvalid, raw)
	}
}

// Query: все активные измерения выборки.
type Query struct {
	Text string
	City string
	Sort SortKey
}

// Select строит отображаемый список: город ∧ текст по исходному списку, затем стабильная сортировка.
// Сортировка никогда не расширяет выборку. Входной срез не изменяется.
func Select(all []domain.Shop, q Query) []domain.Shop {
	text := strings.TrimSpace(q.Text)
	var needle string
	if text != "" {
		needle = cases.Fold().String(text)
	}

	out := make([]domain.Shop, 0, len(all))
	for _, s := range all {
		if q.City != "" && s.City != q.City {
			continue
		}
		if needle != "" && !matches(s, needle) {
			continue
		}
		out = append(out, s)
	}

	sortShops(out, q.Sort)
	return out
}

func matches(s domain.Shop, needle string) bool {
	fold := cases.Fold()
	if strings.Contains(fold.String(s.ShopName), needle) {
		return true
	}
	return s.Description != "" && strings.Contains(fold.String(s.Description), needle)
}

func sortShops(shops []domain.Shop, key SortKey) {
	switch key {
	case SortName:
		c := collate.New(language.English)
		sort.SliceStable(shops, func(i, j int) bool {
			return c.CompareString(shops[i].ShopName, shops[j].ShopName) < 0
		})
	case SortRating:
		sort.SliceStable(shops, func(i, j int) bool {
			return shops[i].RatingOrZero() > shops[j].RatingOrZero()
		})
	case SortOrders:
		sort.SliceStable(shops, func(i, j int) bool {
			return shops[i].TotalOrdersOrZero() > shops[j].TotalOrdersOrZero()
		})
	}
}

// Cities возвращает уникальные непустые города по возрастанию.
func Cities(all []domain.Shop) []string {
	seen := make(map[string]struct{}, len(all))
	cities := make([]string, 0, len(all))
	for _, s := range all {
		if s.City == "" {
			continue
		}
		if _, ok := seen[s.City]; ok {
			continue
		}
		seen[s.City] = struct{}{}
		cities = append(cities, s.City)
	}
	sort.Strings(cities)
	return cities
}

// CountLabel: подпись вида "3 shops" / "1 shop".
func CountLabel(n int) string {
	if n == 1 {
		return "1 shop"
	}
	return fmt.Sprintf("%d shops", n)
}
