// Package jwt реализует генерацию и парсинг JWT токенов, связывающих токен
// с идентификатором пользователя.
//
// Maker определяет интерфейс для создания и проверки токенов.
// MakerImpl — конкретная реализация с использованием секретного ключа и срока жизни.
package jwt

import (
	"errors"
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken подписывает токен с идентификатором пользователя.
	GenerateToken(userID string) (string, error)
	// ParseToken проверяет подпись и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL). Нулевой TTL означает токены без срока действия.
type MakerImpl struct {
	secretKey []byte        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// ErrEmptySecret возвращается при попытке создать Maker без секрета.
var ErrEmptySecret = errors.New("jwt: signing secret is empty")

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Секрет задаётся один раз при старте процесса; пустой секрет считается ошибкой конфигурации.
func NewJWTMaker(secretKey string, ttl time.Duration) (*MakerImpl, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
	}, nil
}
