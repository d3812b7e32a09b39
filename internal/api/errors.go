package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// ErrTransport: запрос не дошёл до бэкенда или ответ не был прочитан.
var ErrTransport = errors.New("backend request failed")

// StatusError: бэкенд ответил не-2xx статусом.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap позволяет проверять 401/403 через errors.Is(err, domain.ErrUnauthenticated).
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthenticated
	}
	return nil
}

func newStatusError(code int, message string) *StatusError {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", code)
	}
	return &StatusError{Code: code, Message: message}
}

// StatusCode извлекает HTTP-статус из ошибки клиента; 0, если это не StatusError.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
