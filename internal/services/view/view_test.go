package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trackmystartup/platform/internal/models"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		input    Input
		expected Route
	}{
		{
			name:     "неаутентифицированный пользователь",
			input:    Input{Authenticated: false},
			expected: Route{View: ViewUnauthenticated},
		},
		{
			name:     "роль ещё неизвестна",
			input:    Input{Authenticated: true, Role: ""},
			expected: Route{View: ViewLoading},
		},
		{
			name: "страница стартапа для владельца",
			input: Input{
				Authenticated:     true,
				Role:              models.RoleStartup,
				ViewMode:          ViewModeStartupHealth,
				SelectedStartupID: 7,
				StartupMatched:    true,
			},
			expected: Route{View: ViewStartupHealth, IsViewOnly: false},
		},
		{
			name: "страница стартапа для CA только на чтение",
			input: Input{
				Authenticated:     true,
				Role:              models.RoleCA,
				ViewMode:          ViewModeStartupHealth,
				SelectedStartupID: 7,
			},
			expected: Route{View: ViewStartupHealth, IsViewOnly: true},
		},
		{
			name: "страница стартапа для инвестора только на чтение",
			input: Input{
				Authenticated:     true,
				Role:              models.RoleInvestor,
				ViewMode:          ViewModeStartupHealth,
				SelectedStartupID: 3,
			},
			expected: Route{View: ViewStartupHealth, IsViewOnly: true},
		},
		{
			name: "режим startupHealth без выбранного стартапа игнорируется",
			input: Input{
				Authenticated:  true,
				Role:           models.RoleInvestor,
				ViewMode:       ViewModeStartupHealth,
				StartupMatched: false,
			},
			expected: Route{View: ViewInvestorDashboard},
		},
		{
			name: "стартап без собственной записи",
			input: Input{
				Authenticated:  true,
				Role:           models.RoleStartup,
				StartupMatched: false,
			},
			expected: Route{View: ViewNoStartupFound},
		},
		{
			name: "стартап со своей записью",
			input: Input{
				Authenticated:  true,
				Role:           models.RoleStartup,
				StartupMatched: true,
			},
			expected: Route{View: ViewStartupDashboard},
		},
		{
			name:     "дашборд администратора",
			input:    Input{Authenticated: true, Role: models.RoleAdmin},
			expected: Route{View: ViewAdminDashboard},
		},
		{
			name:     "дашборд CS",
			input:    Input{Authenticated: true, Role: models.RoleCS},
			expected: Route{View: ViewCSDashboard},
		},
		{
			name:     "дашборд центра поддержки",
			input:    Input{Authenticated: true, Role: models.RoleFacilitator},
			expected: Route{View: ViewFacilitatorDashboard},
		},
		{
			name:     "дашборд советника",
			input:    Input{Authenticated: true, Role: models.RoleAdvisor},
			expected: Route{View: ViewAdvisorDashboard},
		},
		{
			name:     "неизвестная роль деградирует до загрузки",
			input:    Input{Authenticated: true, Role: models.Role("Bookkeeper")},
			expected: Route{View: ViewLoading},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.input))
		})
	}
}

func TestResolveEveryRoleHasDashboard(t *testing.T) {
	for _, role := range models.AllRoles() {
		route := Resolve(Input{Authenticated: true, Role: role, StartupMatched: true})
		assert.NotEqual(t, ViewLoading, route.View, "роль %s осталась без дашборда", role)
		assert.NotEqual(t, ViewUnauthenticated, route.View)
	}
}
