package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackmystartup/platform/internal/models"
)

// SessionClaims описывает данные сессии, хранящиеся в JWT.
// Кроме стандартных claims токен несет почту, признак ее подтверждения
// и метаданные регистрации, из которых синтезируется базовый пользователь.
type SessionClaims struct {
	Email                string             `json:"email"`                        // Почта пользователя
	EmailConfirmedAt     *time.Time         `json:"email_confirmed_at,omitempty"` // Время подтверждения почты
	Meta                 models.SessionMeta `json:"meta"`                         // Метаданные регистрации
	jwt.RegisteredClaims                    // Стандартные claims (Subject несет UID)
}

// Session восстанавливает проекцию сессии из claims токена.
func (c *SessionClaims) Session() *models.Session {
	return &models.Session{
		UserUID:          c.Subject,
		Email:            c.Email,
		EmailConfirmedAt: c.EmailConfirmedAt,
		Meta:             c.Meta,
	}
}

// GenerateToken создает JWT токен сессии, подписывая его секретным ключом.
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(session *models.Session) (string, error) {
	claims := SessionClaims{
		Email:            session.Email,
		EmailConfirmedAt: session.EmailConfirmedAt,
		Meta:             session.Meta,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserUID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает SessionClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
