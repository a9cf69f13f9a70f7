// Package jwt выпускает и проверяет JWT токены оператора панели управления.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator: единственная роль: оператор, который ведёт клиентов.
const RoleOperator = "operator"

// CustomClaims описывает данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"`
	Role                 string `json:"role"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt и пр.
}

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(username, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены секретным ключом по HS256.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времени жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
