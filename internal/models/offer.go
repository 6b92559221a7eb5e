package models

import "time"

// OfferStatus — статус инвестиционного оффера.
// Переходы однонаправленные, pending повторно не достигается.
type OfferStatus string

const (
	// OfferPending — оффер подан и ожидает решения.
	OfferPending OfferStatus = "pending"
	// OfferPendingInvestorAdvisorApproval — ждет одобрения советника инвестора.
	OfferPendingInvestorAdvisorApproval OfferStatus = "pending_investor_advisor_approval"
	// OfferPendingStartupAdvisorApproval — ждет одобрения советника стартапа.
	OfferPendingStartupAdvisorApproval OfferStatus = "pending_startup_advisor_approval"
	// OfferApproved — оффер одобрен администратором.
	OfferApproved OfferStatus = "approved"
	// OfferAccepted — стартап принял оффер.
	OfferAccepted OfferStatus = "accepted"
	// OfferCompleted — сделка закрыта. Терминальный статус.
	OfferCompleted OfferStatus = "completed"
	// OfferRejected — оффер отклонен. Терминальный статус.
	OfferRejected OfferStatus = "rejected"
)

// InvestmentOffer — оффер инвестора стартапу.
// Создается инвестором, изменяется администратором, стартапом или советником.
type InvestmentOffer struct {
	ID               int         // Идентификатор
	InvestorEmail    string      // Почта инвестора
	StartupID        int         // Идентификатор стартапа
	StartupName      string      // Название стартапа на момент подачи
	OfferAmount      float64     // Сумма оффера
	EquityPercentage float64     // Запрашиваемая доля, %
	Status           OfferStatus // Текущий статус
	CreatedAt        time.Time   // Время подачи
	UpdatedAt        time.Time   // Время последнего изменения
}

// OfferInfo — полезная нагрузка уведомления о решении по офферу.
type OfferInfo struct {
	Email       string      `json:"email"`
	StartupName string      `json:"startup_name"`
	Amount      float64     `json:"amount"`
	Status      OfferStatus `json:"status"`
}
