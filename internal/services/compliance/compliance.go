// Package services содержит бизнес-логику правил комплаенса:
// наборы правил по странам и формам компаний, управляемые администратором.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trackmystartup/platform/internal/models"
)

// RuleRepository определяет методы для работы с правилами в хранилище.
type RuleRepository interface {
	GetComplianceRuleSet(ctx context.Context, countryCode, companyType string) (*models.ComplianceRuleSet, error)
	UpsertComplianceRuleSet(ctx context.Context, rs models.ComplianceRuleSet) error
	ListComplianceRuleSets(ctx context.Context) ([]*models.ComplianceRuleSet, error)
}

// ComplianceService реализует чтение и администрирование правил.
type ComplianceService struct {
	repo RuleRepository
	log  *slog.Logger
}

// NewComplianceService создает новый экземпляр ComplianceService.
func NewComplianceService(repo RuleRepository, log *slog.Logger) *ComplianceService {
	return &ComplianceService{repo: repo, log: log}
}

// RulesFor возвращает правила, применимые к стартапу: в первый год после
// регистрации — списки firstYear и annual, далее — только annual.
func (s *ComplianceService) RulesFor(ctx context.Context, st *models.Startup) ([]models.ComplianceRule, error) {
	rs, err := s.repo.GetComplianceRuleSet(ctx, st.CountryCode, st.CompanyType)
	if err != nil {
		return nil, fmt.Errorf("rules for %s/%s: %w", st.CountryCode, st.CompanyType, err)
	}
	firstAnniversary := st.RegistrationDate.AddDate(1, 0, 0)
	if time.Now().Before(firstAnniversary) {
		rules := make([]models.ComplianceRule, 0, len(rs.FirstYear)+len(rs.Annual))
		rules = append(rules, rs.FirstYear...)
		rules = append(rules, rs.Annual...)
		return rules, nil
	}
	return rs.Annual, nil
}

// Upsert сохраняет набор правил. Только для администратора.
func (s *ComplianceService) Upsert(ctx context.Context, rs models.ComplianceRuleSet) error {
	if err := s.repo.UpsertComplianceRuleSet(ctx, rs); err != nil {
		return err
	}
	s.log.Info("compliance rule set saved",
		slog.String("country", rs.CountryCode), slog.String("company_type", rs.CompanyType))
	return nil
}

// List возвращает все наборы правил.
func (s *ComplianceService) List(ctx context.Context) ([]*models.ComplianceRuleSet, error) {
	return s.repo.ListComplianceRuleSets(ctx)
}
