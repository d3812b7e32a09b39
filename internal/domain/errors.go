package domain

import "errors"

var (
	// Ошибка неположительного количества при добавлении в корзину.
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// ErrFoodNotFound возвращается, если блюдо отсутствует в загруженном списке.
	ErrFoodNotFound = errors.New("food not found")
	// ErrShopNotFound возвращается, если заведение отсутствует в загруженном списке.
	ErrShopNotFound = errors.New("shop not found")
	// ErrStorageKeyNotFound: ключа нет в хранилище.
	ErrStorageKeyNotFound = errors.New("storage key not found")
	// ErrPriceUnavailable: цену позиции корзины не удалось получить.
	ErrPriceUnavailable = errors.New("food price unavailable")
	// ErrDeleteNotConfirmed: пользователь отказался подтверждать удаление.
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	// Ошибка некорректной цены в форме блюда.
	ErrPriceInvalid = errors.New("price must be a non-negative number")
	// Ошибка пустого названия блюда.
	ErrFoodNameRequired = errors.New("food name is required")
	// ErrUnauthenticated: бэкенд не признал сессию.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials: логин отклонён бэкендом.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// Ошибка неизвестного ключа сортировки магазинов.
	ErrSortKeyInvalid = errors.New("unknown sort key")
)

// IsNotFound проверяет, относится ли ошибка к отсутствующим сущностям.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFoodNotFound) ||
		errors.Is(err, ErrShopNotFound) ||
		errors.Is(err, ErrStorageKeyNotFound)
}
