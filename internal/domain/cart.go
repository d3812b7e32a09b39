package domain

import "time"

// CartStorageKey: ключ, под которым снапшот корзины хранится в Storage.
const CartStorageKey = "foodOrderCart"

// CartItem представляет одну позицию клиентской корзины.
type CartItem struct {
	// FoodID: идентификатор блюда на бэкенде.
	FoodID int64 `json:"foodId"`
	// Quantity: количество порций, всегда больше нуля.
	Quantity int `json:"quantity"`
	// AddedAt фиксирует момент первого добавления позиции.
	AddedAt time.Time `json:"addedAt"`
}

// CartSummary: то, что показывает бейдж корзины.
type CartSummary struct {
	Count   int
	Visible bool
}

// CartEventType описывает тип изменения корзины.
type CartEventType string

const (
	CartEventItemAdded   CartEventType = "cart.item_added"
	CartEventItemRemoved CartEventType = "cart.item_removed"
	CartEventQuantitySet CartEventType = "cart.quantity_set"
	CartEventCleared     CartEventType = "cart.cleared"
)

// CartEvent публикуется после каждой мутации корзины.
type CartEvent struct {
	Type       CartEventType `json:"type"`
	Namespace  string        `json:"namespace"`
	FoodID     int64         `json:"foodId,omitempty"`
	Quantity   int           `json:"quantity"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NormalizeCart приводит снапшот к инварианту: не больше одной позиции на FoodID.
// Дубликаты суммируются, позиции с неположительным количеством отбрасываются,
// порядок первого появления сохраняется.
func NormalizeCart(items []CartItem) []CartItem {
	result := make([]CartItem, 0, len(items))
	index := make(map[int64]int, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if pos, ok := index[item.FoodID]; ok {
			result[pos].Quantity += item.Quantity
			continue
		}
		index[item.FoodID] = len(result)
		result = append(result, item)
	}

	return result
}

// CountItems возвращает сумму количеств по всем позициям.
func CountItems(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
