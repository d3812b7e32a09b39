// Package validate проверяет поля форм входа и регистрации до отправки на бэкенд.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrEmailInvalid: адрес не похож на e-mail.
	ErrEmailInvalid = errors.New("please enter a valid email address")
	// ErrPasswordMismatch: пароль и подтверждение различаются.
	ErrPasswordMismatch = errors.New("Passwords do not match")
	// ErrFieldRequired: обязательное поле пустое.
	ErrFieldRequired = errors.New("field is required")
)

// Email проверяет формат адреса.
func Email(value string) error {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return ErrEmailInvalid
	}
	return nil
}

// PasswordConfirmation проверяет совпадение пароля и подтверждения.
func PasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Required проверяет, что поле name заполнено.
func Required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", name, ErrFieldRequired)
	}
	return nil
}

// Registration проверяет форму регистрации покупателя и возвращает все найденные ошибки.
func Registration(name, email, password, confirm string) error {
	return errors.Join(
		Required("name", name),
		Email(email),
		Required("password", password),
		PasswordConfirmation(password, confirm),
	)
}
