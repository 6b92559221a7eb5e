package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trackmystartup/platform/internal/models"
)

type mockRuleRepo struct {
	mock.Mock
}

func (m *mockRuleRepo) GetComplianceRuleSet(ctx context.Context, countryCode, companyType string) (*models.ComplianceRuleSet, error) {
	args := m.Called(ctx, countryCode, companyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComplianceRuleSet), args.Error(1)
}

func (m *mockRuleRepo) UpsertComplianceRuleSet(ctx context.Context, rs models.ComplianceRuleSet) error {
	args := m.Called(ctx, rs)
	return args.Error(0)
}

func (m *mockRuleRepo) ListComplianceRuleSets(ctx context.Context) ([]*models.ComplianceRuleSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceRuleSet), args.Error(1)
}

func TestComplianceService_RulesFor(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ruleSet := &models.ComplianceRuleSet{
		CountryCode: "IN",
		CompanyType: "Private Limited",
		FirstYear: []models.ComplianceRule{
			{Name: "Appoint first auditor", CARequired: true},
		},
		Annual: []models.ComplianceRule{
			{Name: "Annual return", CARequired: true, CSRequired: true},
		},
	}

	t.Run("первый год после регистрации получает оба списка", func(t *testing.T) {
		repo := new(mockRuleRepo)
		repo.On("GetComplianceRuleSet", mock.Anything, "IN", "Private Limited").
			Return(ruleSet, nil).Once()

		svc := NewComplianceService(repo, log)
		rules, err := svc.RulesFor(context.Background(), &models.Startup{
			CountryCode:      "IN",
			CompanyType:      "Private Limited",
			RegistrationDate: time.Now().AddDate(0, -6, 0),
		})

		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "Appoint first auditor", rules[0].Name)
		assert.Equal(t, "Annual return", rules[1].Name)
	})

	t.Run("после первой годовщины остаются только ежегодные правила", func(t *testing.T) {
		repo := new(mockRuleRepo)
		repo.On("GetComplianceRuleSet", mock.Anything, "IN", "Private Limited").
			Return(ruleSet, nil).Once()

		svc := NewComplianceService(repo, log)
		rules, err := svc.RulesFor(context.Background(), &models.Startup{
			CountryCode:      "IN",
			CompanyType:      "Private Limited",
			RegistrationDate: time.Now().AddDate(-2, 0, 0),
		})

		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "Annual return", rules[0].Name)
	})

	t.Run("для страны без правил возвращается ошибка", func(t *testing.T) {
		repo := new(mockRuleRepo)
		repo.On("GetComplianceRuleSet", mock.Anything, "US", "C-Corp").
			Return(nil, errors.New("not found")).Once()

		svc := NewComplianceService(repo, log)
		_, err := svc.RulesFor(context.Background(), &models.Startup{
			CountryCode: "US",
			CompanyType: "C-Corp",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "rules for US/C-Corp")
	})
}

func TestComplianceService_Upsert(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := models.ComplianceRuleSet{CountryCode: "IN", CompanyType: "LLP"}

	repo := new(mockRuleRepo)
	repo.On("UpsertComplianceRuleSet", mock.Anything, rs).Return(nil).Once()

	svc := NewComplianceService(repo, log)
	require.NoError(t, svc.Upsert(context.Background(), rs))
	repo.AssertExpectations(t)
}
