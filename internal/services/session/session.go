// Package services реализует оркестратор сессий: отображение потока
// событий сессии в единственное согласованное состояние аутентификации
// пользователя. Оркестратор — единственный владелец этого состояния.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// ErrEmailNotConfirmed возвращается при попытке входа с неподтверждённой почтой.
// Вход отклоняется без перехода в BasicAuthenticated.
var ErrEmailNotConfirmed = errors.New("confirm your email before signing in")

// Phase — фаза состояния аутентификации.
type Phase string

const (
	// PhaseUnauthenticated — сессии нет.
	PhaseUnauthenticated Phase = "unauthenticated"
	// PhaseBasic — сессия есть, профиль ещё не загружен; пользователь
	// синтезирован из метаданных сессии.
	PhaseBasic Phase = "basic"
	// PhaseFull — профиль загружен и заполнен.
	PhaseFull Phase = "full"
	// PhaseProfileIncomplete — профиль загружен, но верификационные
	// документы отсутствуют; пользователь направляется на дозаполнение.
	PhaseProfileIncomplete Phase = "profile_incomplete"
)

// AuthState — снимок состояния аутентификации, отдаваемый наружу.
type AuthState struct {
	Phase      Phase        `json:"phase"`
	User       *models.User `json:"user,omitempty"`
	DataLoaded bool         `json:"data_loaded"`
}

// UserRepository описывает операции с профилями пользователей.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	RegisterUser(ctx context.Context, user models.User) (string, error)
}

// StartupRepository описывает операции со стартапами, нужные для
// идемпотентного создания записи стартапа при первом входе.
type StartupRepository interface {
	FindStartupByName(ctx context.Context, name string) (*models.Startup, error)
	CreateStartup(ctx context.Context, st models.Startup) (int, error)
}

// DedupStore хранит короткоживущие маркеры обработанных событий входа.
type DedupStore interface {
	// SetMark ставит маркер с TTL, false — маркер уже стоял.
	SetMark(key string, ttl time.Duration) (bool, error)
}

type sessionState struct {
	phase      Phase
	user       *models.User
	dataLoaded bool
	gen        uint64 // поколение; растет при выходе, устаревшие гидрации отбрасываются
}

// Orchestrator обрабатывает события сессии строго по одному
// и владеет состоянием аутентификации каждого пользователя.
type Orchestrator struct {
	users       UserRepository
	startups    StartupRepository
	marks       DedupStore
	log         *slog.Logger
	dedupWindow time.Duration

	mu     sync.Mutex
	states map[string]*sessionState
}

// DefaultDedupWindow — окно подавления повторных событий входа.
const DefaultDedupWindow = 5 * time.Second

// NewOrchestrator создает оркестратор сессий.
func NewOrchestrator(users UserRepository, startups StartupRepository, marks DedupStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		users:       users,
		startups:    startups,
		marks:       marks,
		log:         log,
		dedupWindow: DefaultDedupWindow,
		states:      make(map[string]*sessionState),
	}
}

// HandleEvent обрабатывает событие сессии и возвращает результирующее состояние.
// События обрабатываются последовательно: конкурирующие гидрации одного
// пользователя исключены.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev models.SessionEvent) (AuthState, error) {
	const op = "session.HandleEvent"

	o.mu.Lock()
	defer o.mu.Unlock()

	switch ev.Type {
	case models.EventTokenRefreshed:
		// Обновление токена никогда не перезагружает данные.
		if ev.Session != nil {
			return o.snapshotLocked(ev.Session.UserUID), nil
		}
		return AuthState{Phase: PhaseUnauthenticated}, nil

	case models.EventSignedOut:
		if ev.Session != nil {
			o.resetLocked(ev.Session.UserUID)
		}
		return AuthState{Phase: PhaseUnauthenticated}, nil

	case models.EventSignedIn, models.EventInitialSession:
		if ev.Session == nil {
			return AuthState{Phase: PhaseUnauthenticated}, nil
		}
		return o.signInLocked(ctx, ev)

	default:
		return o.snapshotLocked(""), fmt.Errorf("%s: unknown event type %q", op, ev.Type)
	}
}

func (o *Orchestrator) signInLocked(ctx context.Context, ev models.SessionEvent) (AuthState, error) {
	session := ev.Session
	log := o.log.With(slog.String("user_uid", session.UserUID), slog.String("event", string(ev.Type)))

	if session.EmailConfirmedAt == nil {
		// Вход без подтверждённой почты отклоняется целиком,
		// состояние остается Unauthenticated.
		o.resetLocked(session.UserUID)
		log.Warn("sign-in rejected: email not confirmed")
		return AuthState{Phase: PhaseUnauthenticated}, ErrEmailNotConfirmed
	}

	st, ok := o.states[session.UserUID]
	if ok && st.phase == PhaseFull && st.dataLoaded {
		fresh, err := o.marks.SetMark("authmark:"+session.UserUID, o.dedupWindow)
		if err != nil {
			// Отказ хранилища маркеров не должен ломать вход.
			log.Warn("dedup mark store unavailable", sl.Err(err))
			fresh = true
		}
		if !fresh {
			// Повторное событие в окне подавления: фокус окна и т.п.
			log.Debug("duplicate sign-in event suppressed")
			return o.snapshotLocked(session.UserUID), nil
		}
	} else {
		if _, err := o.marks.SetMark("authmark:"+session.UserUID, o.dedupWindow); err != nil {
			log.Warn("dedup mark store unavailable", sl.Err(err))
		}
	}

	if st == nil || !ok {
		st = &sessionState{}
		o.states[session.UserUID] = st
	}

	// Базовый пользователь из метаданных сессии: UI разблокируется сразу,
	// полный профиль догружается асинхронно.
	st.phase = PhaseBasic
	st.user = basicUserFromSession(session)
	gen := st.gen

	go o.hydrate(context.WithoutCancel(ctx), session, gen)

	log.Info("session accepted, profile hydration started")
	return o.snapshotLocked(session.UserUID), nil
}

// hydrate загружает полный профиль и применяет его, если состояние
// не было сброшено за время загрузки.
func (o *Orchestrator) hydrate(ctx context.Context, session *models.Session, gen uint64) {
	const op = "session.hydrate"
	log := o.log.With(slog.String("op", op), slog.String("user_uid", session.UserUID))

	profile, err := o.users.GetUser(ctx, session.UserUID)
	if errors.Is(err, repository.ErrNotFound) {
		profile, err = o.createProfile(ctx, session)
	}
	if err != nil {
		// Любая ошибка гидрации нефатальна: базовый пользователь
		// остается рабочим, повторная попытка — только вручную.
		log.Error("profile hydration failed, basic user kept", sl.Err(err))
		return
	}

	if profile.Role == models.RoleStartup && profile.StartupName != "" {
		if err := o.ensureStartup(ctx, profile); err != nil {
			log.Error("failed to ensure startup record", sl.Err(err))
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.states[session.UserUID]
	if !ok || st.gen != gen {
		// Выход пользователя опередил гидрацию: устаревший результат отброшен.
		log.Debug("stale hydration result dropped")
		return
	}
	st.user = profile
	if profile.ProfileComplete {
		st.phase = PhaseFull
	} else {
		st.phase = PhaseProfileIncomplete
	}
	log.Info("profile hydrated", slog.String("phase", string(st.phase)))
}

// createProfile автоматически создает недостающий профиль из метаданных
// сессии. Требуются имя и роль.
func (o *Orchestrator) createProfile(ctx context.Context, session *models.Session) (*models.User, error) {
	const op = "session.createProfile"
	if session.Meta.Name == "" || !models.ValidRole(session.Meta.Role) {
		return nil, fmt.Errorf("%s: session metadata insufficient for profile creation", op)
	}
	user := models.User{
		UID:              session.UserUID,
		Email:            session.Email,
		Name:             session.Meta.Name,
		Role:             models.Role(session.Meta.Role),
		StartupName:      session.Meta.StartupName,
		RegistrationDate: time.Now().UTC(),
		EmailConfirmedAt: session.EmailConfirmedAt,
	}
	uid, err := o.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid
	return &user, nil
}

// ensureStartup идемпотентно создает запись стартапа: сперва поиск по названию.
func (o *Orchestrator) ensureStartup(ctx context.Context, profile *models.User) error {
	const op = "session.ensureStartup"
	_, err := o.startups.FindStartupByName(ctx, profile.StartupName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = o.startups.CreateStartup(ctx, models.Startup{
		Name:             profile.StartupName,
		OwnerUID:         profile.UID,
		ComplianceStatus: models.CompliancePending,
		RegistrationDate: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// State возвращает текущее состояние аутентификации пользователя.
func (o *Orchestrator) State(userUID string) AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked(userUID)
}

// MarkDataLoaded отмечает, что данные дашборда загружены для сессии.
// Вызывается загрузчиком данных после завершения fan-out.
func (o *Orchestrator) MarkDataLoaded(userUID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if st, ok := o.states[userUID]; ok {
		st.dataLoaded = true
	}
}

// ForceRefresh сбрасывает флаг загруженных данных: следующая загрузка
// выполнит полный fan-out. Явная операция восстановления вместо
// глобальных хуков.
func (o *Orchestrator) ForceRefresh(userUID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if st, ok := o.states[userUID]; ok {
		st.dataLoaded = false
	}
}

// Reset полностью сбрасывает состояние аутентификации пользователя.
func (o *Orchestrator) Reset(userUID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked(userUID)
}

func (o *Orchestrator) resetLocked(userUID string) {
	if st, ok := o.states[userUID]; ok {
		// Поколение растет, чтобы незавершённые гидрации не применились.
		gen := st.gen + 1
		o.states[userUID] = &sessionState{gen: gen}
		o.states[userUID].phase = PhaseUnauthenticated
	}
}

func (o *Orchestrator) snapshotLocked(userUID string) AuthState {
	st, ok := o.states[userUID]
	if !ok || st.phase == "" || st.phase == PhaseUnauthenticated {
		return AuthState{Phase: PhaseUnauthenticated}
	}
	userCopy := *st.user
	return AuthState{
		Phase:      st.phase,
		User:       &userCopy,
		DataLoaded: st.dataLoaded,
	}
}

func basicUserFromSession(session *models.Session) *models.User {
	return &models.User{
		UID:         session.UserUID,
		Email:       session.Email,
		Name:        session.Meta.Name,
		Role:        models.Role(session.Meta.Role),
		StartupName: session.Meta.StartupName,
	}
}
