// Package services содержит аутентификацию оператора панели управления.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/tv-manager/internal/lib/password"
)

// ErrInvalidCredentials возвращается при неверном имени или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials: учётная запись оператора из конфигурации.
type Credentials struct {
	Username     string
	PasswordHash string
}

// AuthService проверяет учётные данные оператора и выпускает JWT.
type AuthService struct {
	admin    Credentials
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(admin Credentials, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		admin:    admin,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет имя и пароль оператора и возвращает токен доступа и роль.
func (s *AuthService) Login(_ context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"
	if s.admin.Username == "" || s.admin.PasswordHash == "" {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) != 1 {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(s.admin.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(s.admin.Username, jwt.RoleOperator)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, jwt.RoleOperator, nil
}
