package models

import "time"

// RequestStatus — статус заявки. Рабочий процесс однонаправленный:
// из pending заявка переходит в approved или rejected и обратно не возвращается.
type RequestStatus string

const (
	// RequestPending — заявка ожидает решения администратора.
	RequestPending RequestStatus = "pending"
	// RequestApproved — заявка одобрена.
	RequestApproved RequestStatus = "approved"
	// RequestRejected — заявка отклонена.
	RequestRejected RequestStatus = "rejected"
)

// StartupAdditionRequest — заявка на добавление стартапа в портфель инвестора.
// Создается, когда стартап указывает код инвестора при запуске раунда.
type StartupAdditionRequest struct {
	ID           int           // Идентификатор
	StartupID    int           // Стартап, попадающий в портфель
	StartupName  string        // Снимок названия на момент заявки
	Sector       string        // Снимок отрасли
	AskAmount    float64       // Снимок запрашиваемой суммы
	AskEquity    float64       // Снимок предлагаемой доли
	InvestorCode string        // Код инвестора, которому откроется видимость
	Status       RequestStatus // Статус заявки
	CreatedAt    time.Time     // Время создания
}

// RequestKind различает верификационные и валидационные заявки,
// которые проходят один и тот же процесс одобрения.
type RequestKind string

const (
	// KindVerification — заявка на верификацию стартапа.
	KindVerification RequestKind = "verification"
	// KindValidation — заявка на валидацию данных стартапа.
	KindValidation RequestKind = "validation"
)

// ReviewRequest — верификационная или валидационная заявка стартапа.
type ReviewRequest struct {
	ID          int           // Идентификатор
	Kind        RequestKind   // Вид заявки
	StartupID   int           // Стартап
	StartupName string        // Название стартапа
	RequestDate time.Time     // Дата подачи
	Status      RequestStatus // Статус
	AdminNotes  string        // Заметки администратора (опционально)
}
