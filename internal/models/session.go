package models

import "time"

// SessionEventType — тип события сессии, наблюдаемого оркестратором.
type SessionEventType string

const (
	// EventSignedIn — пользователь вошел в систему.
	EventSignedIn SessionEventType = "SIGNED_IN"
	// EventInitialSession — восстановление уже существующей сессии.
	EventInitialSession SessionEventType = "INITIAL_SESSION"
	// EventTokenRefreshed — обновление токена. Никогда не меняет состояние.
	EventTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
	// EventSignedOut — выход из системы.
	EventSignedOut SessionEventType = "SIGNED_OUT"
)

// SessionMeta — метаданные, зашитые в сессию при регистрации.
// Из них синтезируется базовый пользователь до загрузки полного профиля.
type SessionMeta struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	StartupName string `json:"startup_name,omitempty"`
}

// Session — проекция внешней сессии: идентификатор пользователя,
// почта, время подтверждения почты и метаданные.
type Session struct {
	UserUID          string      `json:"user_uid"`
	Email            string      `json:"email"`
	EmailConfirmedAt *time.Time  `json:"email_confirmed_at,omitempty"`
	Meta             SessionMeta `json:"meta"`
}

// SessionEvent — событие сессии с временем доставки.
type SessionEvent struct {
	Type    SessionEventType
	Session *Session
	At      time.Time
}
