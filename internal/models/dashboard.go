package models

// DashboardData — пять основных коллекций, загружаемых один раз на сессию.
// Любая коллекция может деградировать до пустого списка при частичном отказе.
type DashboardData struct {
	Startups           []*Startup                `json:"startups"`
	Offers             []*InvestmentOffer        `json:"offers"`
	AdditionRequests   []*StartupAdditionRequest `json:"addition_requests"`
	Users              []*User                   `json:"users"`
	ReviewRequests     []*ReviewRequest          `json:"review_requests"`
	SelectedStartupID  int                       `json:"selected_startup_id,omitempty"`
	SwitchToDetailView bool                      `json:"switch_to_detail_view,omitempty"`
	AdvisorProfile     *AdvisorProfile           `json:"advisor_profile,omitempty"`
}
