// Package password хеширует пароль оператора и проверяет введённый пароль по хешу.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword возвращается при попытке захешировать пустой пароль.
var ErrEmptyPassword = errors.New("password is empty")

// GetHash возвращает bcrypt-хеш пароля для записи в конфиг (admin.password_hash).
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if password == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash возвращает nil, если пароль соответствует хешу.
// Несовпадение оборачивает bcrypt.ErrMismatchedHashAndPassword.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
