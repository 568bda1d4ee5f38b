// Пакет services — доменные сервисы LMS Client поверх HTTP-шлюза:
// аутентификация, каталог, выдачи, резервирования, платежи, пользователи.
package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername — клиентская проверка имени пользователя перед
// отправкой на сервер: 3-50 символов, латиница/цифры/подчёркивание.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("имя пользователя должно быть от 3 до 50 символов")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только латинские буквы, цифры и подчёркивание")
	}
	return nil
}

// ValidateFullName проверяет, что полное имя непустое.
func ValidateFullName(fullName string) error {
	if strings.TrimSpace(fullName) == "" {
		return fmt.Errorf("полное имя не может быть пустым")
	}
	return nil
}

// ValidatePassword — композиционные требования к паролю:
// минимум 8 символов, буква, цифра, спецсимвол.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен быть не короче 8 символов")
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasLetter:
		return fmt.Errorf("пароль должен содержать букву")
	case !hasDigit:
		return fmt.Errorf("пароль должен содержать цифру")
	case !hasSpecial:
		return fmt.Errorf("пароль должен содержать спецсимвол")
	}
	return nil
}

// NormalizeISBN убирает из ISBN всё, кроме цифр и X
// (контрольный символ ISBN-10 может быть X).
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(isbn) {
		if unicode.IsDigit(r) || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateISBN проверяет нормализованный ISBN: 10 или 13 символов.
func ValidateISBN(isbn string) error {
	n := NormalizeISBN(isbn)
	if len(n) != 10 && len(n) != 13 {
		return fmt.Errorf("ISBN должен содержать 10 или 13 цифр, получено %d", len(n))
	}
	return nil
}
