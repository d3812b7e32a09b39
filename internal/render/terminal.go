package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#8a8f98")
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// ShopsTable: список магазинов для `unieats shops`.
func ShopsTable(shops []domain.Shop, countLabel string) string {
	t := newTable("ID", "Name", "City", "Rating", "Orders", "Description")
	for _, s := range shops {
		card := NewShopCard(s)
		t.Row(
			strconv.FormatInt(card.ID, 10),
			card.Name,
			card.City,
			fmt.Sprintf("%s %s", StarsText(s.RatingOrZero()), card.Rating),
			strconv.FormatInt(card.Orders, 10),
			card.Description,
		)
	}
	return t.String() + "\n" + mutedStyle.Render(countLabel)
}

// ShopDetailText: подробности магазина для `unieats shops show`.
func ShopDetailText(s domain.Shop) string {
	v := NewShopDetail(s)
	t := table.New().Border(lipgloss.HiddenBorder())
	t.Row("Email", v.Email)
	t.Row("Phone", v.Phone)
	t.Row("Address", v.Address)
	t.Row("City", v.City)
	t.Row("Rating", StarsText(s.RatingOrZero())+" ("+v.Rating+")")
	t.Row("Total Orders", strconv.FormatInt(v.Orders, 10))
	if v.Description != "" {
		t.Row("Description", v.Description)
	}
	return headerStyle.Render(v.Name) + "\n" + t.String()
}

// FoodsTable: таблица блюд для `unieats foods list`.
func FoodsTable(foods []domain.Food) string {
	t := newTable("ID", "Name", "Category", "Price", "Status", "Featured")
	for _, f := range foods {
		row := NewFoodRow(f)
		price := row.Price
		if row.HasDiscount {
			price = fmt.Sprintf("%s (was %s, %s)", row.Discounted, row.OriginalPrice, row.DiscountLabel)
		}
		status := "Unavailable"
		if row.Available {
			status = "Available"
		}
		featured := "Regular"
		if row.Featured {
			featured = "Featured"
		}
		t.Row(strconv.FormatInt(row.ID, 10), row.Name, row.Category, price, status, featured)
	}
	return t.String()
}

// CartLine: одна позиция корзины для вывода; Price пустой, если цена неизвестна.
type CartLine struct {
	FoodID   int64
	Name     string
	Quantity int
	Price    string
}

// CartTable: содержимое корзины и итог.
func CartTable(lines []CartLine, summary domain.CartSummary, total string) string {
	if !summary.Visible {
		return mutedStyle.Render("Your cart is empty")
	}
	t := newTable("Food", "Name", "Qty", "Unit price")
	for _, l := range lines {
		name := l.Name
		if name == "" {
			name = "-"
		}
		price := l.Price
		if price == "" {
			price = "-"
		}
		t.Row(strconv.FormatInt(l.FoodID, 10), name, strconv.Itoa(l.Quantity), price)
	}
	footer := fmt.Sprintf("%d item(s)", summary.Count)
	if total != "" {
		footer += " · total " + total
	}
	return t.String() + "\n" + headerStyle.Render(footer)
}

// Notification: строка уведомления для терминала.
func Notification(level, text string) string {
	color := colorInfo
	switch level {
	case "success":
		color = colorAccent
	case "error":
		color = colorError
	case "warning":
		color = colorWarning
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}
