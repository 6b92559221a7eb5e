package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trackmystartup/platform/internal/models"
)

// GetComplianceRuleSet возвращает набор правил для страны и формы компании.
// Списки правил хранятся как JSONB, порядок правил сохраняется.
func (s *Storage) GetComplianceRuleSet(ctx context.Context, countryCode, companyType string) (*models.ComplianceRuleSet, error) {
	const op = "storage.GetComplianceRuleSet"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT country_code, company_type, first_year_rules, annual_rules
			  FROM compliance_rules
			  WHERE country_code = $1 AND company_type = $2`
	var rs models.ComplianceRuleSet
	var firstYear, annual []byte
	err := s.DB.QueryRowContext(ctx, query, countryCode, companyType).Scan(
		&rs.CountryCode, &rs.CompanyType, &firstYear, &annual)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(firstYear, &rs.FirstYear); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(annual, &rs.Annual); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rs, nil
}

// UpsertComplianceRuleSet сохраняет набор правил, заменяя существующий.
func (s *Storage) UpsertComplianceRuleSet(ctx context.Context, rs models.ComplianceRuleSet) error {
	const op = "storage.UpsertComplianceRuleSet"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	firstYear, err := json.Marshal(rs.FirstYear)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	annual, err := json.Marshal(rs.Annual)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO compliance_rules (country_code, company_type, first_year_rules, annual_rules)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (country_code, company_type) DO UPDATE
			  SET first_year_rules = EXCLUDED.first_year_rules,
			      annual_rules = EXCLUDED.annual_rules`
	if _, err = s.DB.ExecContext(ctx, query, rs.CountryCode, rs.CompanyType, firstYear, annual); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListComplianceRuleSets возвращает все наборы правил.
func (s *Storage) ListComplianceRuleSets(ctx context.Context) ([]*models.ComplianceRuleSet, error) {
	const op = "storage.ListComplianceRuleSets"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT country_code, company_type, first_year_rules, annual_rules
			  FROM compliance_rules
			  ORDER BY country_code, company_type`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.ComplianceRuleSet
	for rows.Next() {
		var rs models.ComplianceRuleSet
		var firstYear, annual []byte
		if err := rows.Scan(&rs.CountryCode, &rs.CompanyType, &firstYear, &annual); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(firstYear, &rs.FirstYear); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(annual, &rs.Annual); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &rs)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
