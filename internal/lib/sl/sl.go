// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразное формирование структурированных полей лога.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to hydrate profile", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Role возвращает slog.Attr с ключом "role" — роли встречаются
// почти в каждой записи лога платформы.
func Role(role string) slog.Attr {
	return slog.Attr{
		Key:   "role",
		Value: slog.StringValue(role),
	}
}
