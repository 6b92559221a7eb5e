// Package models содержит доменные структуры платформы:
// пользователей, стартапы, инвестиционные офферы, заявки и правила комплаенса.
package models

import "time"

// Role — роль пользователя в системе. Набор ролей фиксирован.
type Role string

const (
	// RoleInvestor — инвестор, формирует портфель и подает офферы.
	RoleInvestor Role = "Investor"
	// RoleStartup — аккаунт стартапа, владеет ровно одной записью Startup.
	RoleStartup Role = "Startup"
	// RoleCA — chartered accountant, проверяет назначенные стартапы.
	RoleCA Role = "CA"
	// RoleCS — company secretary, проверяет назначенные стартапы.
	RoleCS Role = "CS"
	// RoleAdmin — администратор платформы.
	RoleAdmin Role = "Admin"
	// RoleFacilitator — центр поддержки стартапов, работает без доли в капитале.
	RoleFacilitator Role = "Startup Facilitation Center"
	// RoleAdvisor — инвестиционный советник.
	RoleAdvisor Role = "Investment Advisor"
)

// AllRoles возвращает полный список ролей. Используется при валидации регистрации.
func AllRoles() []Role {
	return []Role{RoleInvestor, RoleStartup, RoleCA, RoleCS,
		RoleAdmin, RoleFacilitator, RoleAdvisor}
}

// ValidRole проверяет, что строка является одной из известных ролей.
func ValidRole(s string) bool {
	for _, r := range AllRoles() {
		if string(r) == s {
			return true
		}
	}
	return false
}

// User представляет зарегистрированного пользователя платформы.
// Опциональные коды связывают пользователя с назначенным профессионалом
// (инвестором, CA, CS или советником).
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта (уникальная)
	Name             string     // Отображаемое имя
	PasswordHash     string     // Хэш пароля
	Role             Role       // Роль пользователя
	StartupName      string     // Название стартапа (только для роли Startup)
	InvestorCode     string     // Код инвестора
	CACode           string     // Код назначенного CA
	CSCode           string     // Код назначенного CS
	AdvisorCode      string     // Код назначенного инвестиционного советника
	RegistrationDate time.Time  // Дата регистрации
	EmailConfirmedAt *time.Time // Время подтверждения почты, nil — не подтверждена
	GovernmentIDURL  string     // Ссылка на документ, удостоверяющий личность
	LicenseURL       string     // Ссылка на проф. лицензию (CA/CS/советник)
	ProfileComplete  bool       // Загружены ли верификационные документы
}

// AdvisorProfile — публичный профиль инвестиционного советника,
// используется для брендинга дашборда назначенных ему пользователей.
type AdvisorProfile struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}
