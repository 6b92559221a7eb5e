package models

// ComplianceRule — именованное правило комплаенса.
// Флаги отмечают, чья проверка требуется: CA, CS или обоих.
type ComplianceRule struct {
	Name       string `json:"name" validate:"required"`
	CARequired bool   `json:"ca_required"`
	CSRequired bool   `json:"cs_required"`
}

// ComplianceRuleSet — набор правил для страны и организационно-правовой формы.
// FirstYear применяется в первый год после регистрации, Annual — ежегодно.
// Порядок правил в списках значим.
type ComplianceRuleSet struct {
	CountryCode string           `json:"country_code" validate:"required"`
	CompanyType string           `json:"company_type" validate:"required"`
	FirstYear   []ComplianceRule `json:"first_year"`
	Annual      []ComplianceRule `json:"annual"`
}
