// Package render превращает данные клиента в то, что видит пользователь: HTML дашборда и таблицы терминала.
package render

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DescriptionLimit: сколько символов описания показывает карточка магазина.
const DescriptionLimit = 100

// Star: одна позиция в рейтинге из пяти.
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// Currency форматирует сумму в центах как доллары США: 123450 → "$1,234.50".
func Currency(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return fmt.Sprintf("%s$%s.%02d", sign, p.Sprintf("%d", minor/100), minor%100)
}

// Price форматирует цену блюда в долларах.
func Price(amount float64) string {
	return Currency(int64(math.Round(amount * 100)))
}

// Date: "Mar 5, 2024, 02:30 PM".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006, 03:04 PM")
}

// DateOnly: "Mar 5, 2024".
func DateOnly(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Stars раскладывает рейтинг на пять звёзд: целые, половинка при дробной части ≥ 0.5, остальные пустые.
func Stars(rating float64) []Star {
	if rating < 0 || math.IsNaN(rating) {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	full := int(math.Floor(rating))
	half := rating-float64(full) >= 0.5

	stars := make([]Star, 0, 5)
	for i := 0; i < full; i++ {
		stars = append(stars, StarFull)
	}
	if half {
		stars = append(stars, StarHalf)
	}
	for len(stars) < 5 {
		stars = append(stars, StarEmpty)
	}
	return stars
}

// StarsText: звёзды для терминала.
func StarsText(rating float64) string {
	out := ""
	for _, s := range Stars(rating) {
		switch s {
		case StarFull:
			out += "★"
		case StarHalf:
			out += "⯪"
		default:
			out += "☆"
		}
	}
	return out
}

// Truncate обрезает текст до limit символов и добавляет "...", если текст длиннее.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
