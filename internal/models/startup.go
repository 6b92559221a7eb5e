package models

import "time"

// ComplianceStatus — трёхзначная классификация комплаенса стартапа.
type ComplianceStatus string

const (
	// ComplianceCompliant — все проверки пройдены.
	ComplianceCompliant ComplianceStatus = "Compliant"
	// CompliancePending — проверки назначены, но не завершены.
	CompliancePending ComplianceStatus = "Pending"
	// ComplianceNonCompliant — есть непройденные проверки.
	ComplianceNonCompliant ComplianceStatus = "Non-Compliant"
)

// Startup — основная модель стартапа. Принадлежит ровно одному
// пользователю с ролью Startup, читается другими ролями по кодам назначения.
type Startup struct {
	ID                 int              // Идентификатор
	Name               string           // Название (уникальное, ключ дедупликации)
	OwnerUID           string           // UID пользователя-владельца
	InvestmentType     string           // Тип раунда (Seed, Series A и т.д.)
	InvestmentValue    float64          // Сумма привлекаемых инвестиций
	EquityAllocation   float64          // Доля капитала под раунд, %
	CurrentValuation   float64          // Текущая оценка
	ComplianceStatus   ComplianceStatus // Статус комплаенса
	Sector             string           // Отрасль
	TotalFunding       float64          // Накопленное финансирование
	TotalRevenue       float64          // Накопленная выручка
	RegistrationDate   time.Time        // Дата регистрации компании
	CountryCode        string           // Страна регистрации (ISO-код)
	CompanyType        string           // Организационно-правовая форма
	CACode             string           // Код назначенного CA
	CSCode             string           // Код назначенного CS
	Founders           []Founder        // Основатели, порядок значим
	TotalShares        int64            // Всего акций (опционально)
	ESOPReservedShares int64            // Акции, зарезервированные под ESOP
	PricePerShare      float64          // Цена за акцию
}

// Founder — основатель стартапа.
type Founder struct {
	Name          string  `json:"name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Shares        int64   `json:"shares"`
	EquityPercent float64 `json:"equity_percent"`
}

// FundraisingDetails отмечает стартап как активно привлекающий капитал
// и несет условия раунда с питч-материалами.
type FundraisingDetails struct {
	ID            int       // Идентификатор
	StartupID     int       // Стартап
	Active        bool      // Раунд активен
	FundingType   string    // Тип раунда
	AskAmount     float64   // Запрашиваемая сумма
	AskEquity     float64   // Предлагаемая доля, %
	PitchDeckURL  string    // Ссылка на питч-дек
	PitchVideoURL string    // Ссылка на видео-питч
	InvestorCode  string    // Код инвестора, названный при запуске раунда
	CreatedAt     time.Time // Время создания записи
}
