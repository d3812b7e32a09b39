package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HTML рендерит страницы дашборда. Безопасен для конкурентного использования.
type HTML struct {
	tmpl *template.Template
}

// NewHTML разбирает встроенные шаблоны.
func NewHTML() (*HTML, error) {
	tmpl, err := template.New("unieats").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// ShopGrid рендерит список магазинов.
func (h *HTML) ShopGrid(w io.Writer, view ShopGridView) error {
	return h.execute(w, "shops", view)
}

// ShopDetail рендерит подробности магазина.
func (h *HTML) ShopDetail(w io.Writer, view ShopDetailView) error {
	return h.execute(w, "shop_detail", view)
}

// FoodTable рендерит таблицу блюд.
func (h *HTML) FoodTable(w io.Writer, view FoodTableView) error {
	return h.execute(w, "foods", view)
}

// CartBadge рендерит фрагмент бейджа корзины.
func (h *HTML) CartBadge(w io.Writer, view CartBadgeView) error {
	return h.execute(w, "cart_badge", view)
}

// execute рендерит в буфер, чтобы при ошибке шаблона клиент не получил половину страницы.
func (h *HTML) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
