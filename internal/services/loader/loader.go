// Package services реализует загрузчик данных дашборда: пять основных
// коллекций загружаются конкурентно один раз на сессию, частичные отказы
// деградируют до пустых списков и не срывают загрузку целиком.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_loads_total",
		Help: "Количество загрузок дашборда по ролям.",
	}, []string{"role"})

	collectionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_collection_failures_total",
		Help: "Отказы отдельных коллекций при fan-out загрузке.",
	}, []string{"collection"})

	loadTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_load_timeouts_total",
		Help: "Загрузки, прерванные глобальным таймаутом.",
	})
)

// CollectionsRepository описывает выборки всех коллекций дашборда.
type CollectionsRepository interface {
	ListStartups(ctx context.Context) ([]*models.Startup, error)
	ListStartupsByAssignment(ctx context.Context, role models.Role, code string) ([]*models.Startup, error)
	ListOffers(ctx context.Context) ([]*models.InvestmentOffer, error)
	ListOffersByInvestor(ctx context.Context, investorEmail string) ([]*models.InvestmentOffer, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListAdditionRequests(ctx context.Context) ([]*models.StartupAdditionRequest, error)
	ListReviewRequests(ctx context.Context) ([]*models.ReviewRequest, error)
	FindAdvisorProfile(ctx context.Context, advisorCode string) (*models.AdvisorProfile, error)
}

// SnapshotCache хранит снимки дашборда между загрузками одной сессии.
type SnapshotCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SessionTracker отмечает завершение загрузки в состоянии сессии.
type SessionTracker interface {
	MarkDataLoaded(userUID string)
}

// Loader загружает коллекции дашборда. Единственный владелец коллекций:
// остальной код только читает снимки.
type Loader struct {
	repo        CollectionsRepository
	cache       SnapshotCache
	tracker     SessionTracker
	log         *slog.Logger
	timeout     time.Duration
	snapshotTTL time.Duration
}

// NewLoader создает загрузчик с заданным глобальным таймаутом fan-out.
func NewLoader(repo CollectionsRepository, cache SnapshotCache, tracker SessionTracker, log *slog.Logger, timeout, snapshotTTL time.Duration) *Loader {
	return &Loader{
		repo:        repo,
		cache:       cache,
		tracker:     tracker,
		log:         log,
		timeout:     timeout,
		snapshotTTL: snapshotTTL,
	}
}

func snapshotKey(userUID string) string {
	return "dashboard:" + userUID
}

// Load возвращает коллекции дашборда для пользователя. Повторный вызов
// без forceRefresh после успешной загрузки дешев и не ходит в хранилище.
func (l *Loader) Load(ctx context.Context, user *models.User, forceRefresh bool) (*models.DashboardData, error) {
	const op = "loader.Load"
	log := l.log.With(slog.String("op", op), slog.String("user_uid", user.UID), sl.Role(string(user.Role)))

	key := snapshotKey(user.UID)
	var prev models.DashboardData
	hadPrev := false
	if found, err := l.cache.Get(key, &prev); err == nil && found {
		hadPrev = true
		if !forceRefresh {
			log.Debug("dashboard snapshot served from cache")
			return &prev, nil
		}
	} else if err != nil {
		log.Warn("snapshot cache unavailable", sl.Err(err))
	}

	loadsTotal.WithLabelValues(string(user.Role)).Inc()

	fanCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	data := l.fanOut(fanCtx, user, log)
	if fanCtx.Err() != nil {
		// Глобальный таймаут: все коллекции пусты, но загрузка считается
		// завершённой, чтобы интерфейс не ждал вечно.
		loadTimeouts.Inc()
		log.Error("dashboard fan-out timed out, collections degraded to empty")
		data = emptyDashboard()
	}

	l.postProcess(ctx, user, data, hadPrev, &prev, log)

	if err := l.cache.Set(key, data, l.snapshotTTL); err != nil {
		log.Warn("failed to cache dashboard snapshot", sl.Err(err))
	}
	l.tracker.MarkDataLoaded(user.UID)
	return data, nil
}

// fanOut конкурентно выполняет все выборки. Отказ отдельной выборки
// деградирует соответствующую коллекцию до пустого списка.
func (l *Loader) fanOut(ctx context.Context, user *models.User, log *slog.Logger) *models.DashboardData {
	data := emptyDashboard()
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(collection string, fetch func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(ctx); err != nil {
				collectionFailures.WithLabelValues(collection).Inc()
				log.Warn("collection fetch failed, degraded to empty",
					slog.String("collection", collection), sl.Err(err))
			}
		}()
	}

	run("startups", func(ctx context.Context) error {
		startups, err := l.fetchStartups(ctx, user)
		if err != nil {
			return err
		}
		mu.Lock()
		data.Startups = startups
		mu.Unlock()
		return nil
	})
	run("offers", func(ctx context.Context) error {
		var offers []*models.InvestmentOffer
		var err error
		if user.Role == models.RoleInvestor {
			offers, err = l.repo.ListOffersByInvestor(ctx, user.Email)
		} else {
			offers, err = l.repo.ListOffers(ctx)
		}
		if err != nil {
			return err
		}
		mu.Lock()
		data.Offers = offers
		mu.Unlock()
		return nil
	})
	run("addition_requests", func(ctx context.Context) error {
		requests, err := l.repo.ListAdditionRequests(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.AdditionRequests = requests
		mu.Unlock()
		return nil
	})
	run("users", func(ctx context.Context) error {
		users, err := l.repo.ListUsers(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.Users = users
		mu.Unlock()
		return nil
	})
	run("review_requests", func(ctx context.Context) error {
		requests, err := l.repo.ListReviewRequests(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.ReviewRequests = requests
		mu.Unlock()
		return nil
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return data
}

// fetchStartups — выборка стартапов с учётом роли: администраторы и
// советники видят всё, CA/CS — только назначенные им стартапы.
func (l *Loader) fetchStartups(ctx context.Context, user *models.User) ([]*models.Startup, error) {
	switch user.Role {
	case models.RoleAdmin, models.RoleAdvisor:
		return l.repo.ListStartups(ctx)
	case models.RoleCA:
		return l.repo.ListStartupsByAssignment(ctx, models.RoleCA, user.CACode)
	case models.RoleCS:
		return l.repo.ListStartupsByAssignment(ctx, models.RoleCS, user.CSCode)
	default:
		return l.repo.ListStartups(ctx)
	}
}

func (l *Loader) postProcess(ctx context.Context, user *models.User, data *models.DashboardData, hadPrev bool, prev *models.DashboardData, log *slog.Logger) {
	switch user.Role {
	case models.RoleInvestor:
		data.Startups = mergeApprovedAdditions(data.Startups, data.AdditionRequests, user.InvestorCode)
	case models.RoleStartup:
		l.selectOwnStartup(user, data, hadPrev, prev, log)
	}

	if user.AdvisorCode != "" {
		profile, err := l.repo.FindAdvisorProfile(ctx, user.AdvisorCode)
		if err != nil {
			// Нефатально: брендинг советника останется дефолтным.
			log.Warn("advisor profile fetch failed", sl.Err(err))
		} else {
			data.AdvisorProfile = profile
		}
	}
}

// selectOwnStartup: первая загрузка выбирает собственный стартап по названию
// (или единственный присутствующий) и один раз переключает вид на его
// страницу; последующие загрузки сохраняют текущий выбор.
func (l *Loader) selectOwnStartup(user *models.User, data *models.DashboardData, hadPrev bool, prev *models.DashboardData, log *slog.Logger) {
	if hadPrev {
		data.SelectedStartupID = prev.SelectedStartupID
		data.SwitchToDetailView = false
		return
	}
	for _, st := range data.Startups {
		if strings.EqualFold(st.Name, user.StartupName) {
			data.SelectedStartupID = st.ID
			data.SwitchToDetailView = true
			return
		}
	}
	if len(data.Startups) == 1 {
		// Резервное правило: совпадения по названию нет, но стартап
		// ровно один — выбираем его.
		data.SelectedStartupID = data.Startups[0].ID
		data.SwitchToDetailView = true
		return
	}
	log.Warn("no startup matched for startup-role user", slog.String("startup_name", user.StartupName))
}

// mergeApprovedAdditions дополняет список стартапов одобренными заявками
// инвестора. Ключ дедупликации — название, поздние записи побеждают.
func mergeApprovedAdditions(base []*models.Startup, requests []*models.StartupAdditionRequest, investorCode string) []*models.Startup {
	byName := make(map[string]int, len(base))
	merged := make([]*models.Startup, 0, len(base))
	for _, st := range base {
		if idx, ok := byName[st.Name]; ok {
			merged[idx] = st
			continue
		}
		byName[st.Name] = len(merged)
		merged = append(merged, st)
	}
	for _, req := range requests {
		if req.Status != models.RequestApproved || req.InvestorCode != investorCode {
			continue
		}
		st := &models.Startup{
			ID:               req.StartupID,
			Name:             req.StartupName,
			Sector:           req.Sector,
			InvestmentValue:  req.AskAmount,
			EquityAllocation: req.AskEquity,
		}
		if idx, ok := byName[st.Name]; ok {
			merged[idx] = st
			continue
		}
		byName[st.Name] = len(merged)
		merged = append(merged, st)
	}
	return merged
}

// ForceInvalidate удаляет снимок сессии: следующий Load выполнит полный fan-out.
func (l *Loader) ForceInvalidate(userUID string) error {
	return l.cache.Invalidate(snapshotKey(userUID))
}

func emptyDashboard() *models.DashboardData {
	return &models.DashboardData{
		Startups:         []*models.Startup{},
		Offers:           []*models.InvestmentOffer{},
		AdditionRequests: []*models.StartupAdditionRequest{},
		Users:            []*models.User{},
		ReviewRequests:   []*models.ReviewRequest{},
	}
}
