// Package services реализует маршрутизатор видов: детерминированный выбор
// ровно одного дашборда по состоянию аутентификации, роли и выбранному
// стартапу. Чистая функция без побочных эффектов.
package services

import (
	"github.com/trackmystartup/platform/internal/models"
)

// View — один из видов приложения.
type View string

const (
	// ViewLoading — роль ещё неизвестна, профиль загружается.
	ViewLoading View = "loading"
	// ViewStartupHealth — страница стартапа.
	ViewStartupHealth View = "startup_health"
	// ViewNoStartupFound — у пользователя роли Startup не найден свой стартап.
	ViewNoStartupFound View = "no_startup_found"
	// ViewUnauthenticated — пользователь не вошел.
	ViewUnauthenticated View = "unauthenticated"

	// ViewInvestorDashboard и далее — дашборды ролей.
	ViewInvestorDashboard    View = "investor_dashboard"
	ViewStartupDashboard     View = "startup_dashboard"
	ViewAdminDashboard       View = "admin_dashboard"
	ViewCADashboard          View = "ca_dashboard"
	ViewCSDashboard          View = "cs_dashboard"
	ViewFacilitatorDashboard View = "facilitator_dashboard"
	ViewAdvisorDashboard     View = "advisor_dashboard"
)

// ViewModeStartupHealth запрашивает страницу стартапа вне зависимости от роли.
const ViewModeStartupHealth = "startupHealth"

// Input — вход маршрутизатора.
type Input struct {
	Authenticated     bool
	Role              models.Role // пустая строка — роль ещё неизвестна
	ViewMode          string
	SelectedStartupID int
	StartupMatched    bool // найден ли свой стартап (роль Startup)
}

// Route — результат маршрутизации.
type Route struct {
	View       View
	IsViewOnly bool
}

// dashboardByRole — таблица диспетчеризации по роли вместо цепочки условий.
var dashboardByRole = map[models.Role]View{
	models.RoleInvestor:    ViewInvestorDashboard,
	models.RoleStartup:     ViewStartupDashboard,
	models.RoleAdmin:       ViewAdminDashboard,
	models.RoleCA:          ViewCADashboard,
	models.RoleCS:          ViewCSDashboard,
	models.RoleFacilitator: ViewFacilitatorDashboard,
	models.RoleAdvisor:     ViewAdvisorDashboard,
}

// viewOnlyRoles — роли, для которых страница стартапа доступна только на чтение.
var viewOnlyRoles = map[models.Role]bool{
	models.RoleCA:          true,
	models.RoleCS:          true,
	models.RoleFacilitator: true,
	models.RoleInvestor:    true,
}

// Resolve выбирает ровно один вид. Ветви взаимно исключающие и
// покрывают весь перечень ролей; роль никогда не угадывается.
func Resolve(in Input) Route {
	if !in.Authenticated {
		return Route{View: ViewUnauthenticated}
	}
	if in.Role == "" {
		return Route{View: ViewLoading}
	}
	if in.ViewMode == ViewModeStartupHealth && in.SelectedStartupID != 0 {
		return Route{
			View:       ViewStartupHealth,
			IsViewOnly: viewOnlyRoles[in.Role],
		}
	}
	if in.Role == models.RoleStartup && !in.StartupMatched {
		// Явное состояние "стартап не найден": чужие данные не показываются.
		return Route{View: ViewNoStartupFound}
	}
	if v, ok := dashboardByRole[in.Role]; ok {
		return Route{View: v}
	}
	return Route{View: ViewLoading}
}
