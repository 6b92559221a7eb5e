package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trackmystartup/platform/internal/models"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

type mockStartupRepo struct{ mock.Mock }

func (m *mockStartupRepo) FindStartupByName(ctx context.Context, name string) (*models.Startup, error) {
	args := m.Called(ctx, name)
	if st := args.Get(0); st != nil {
		return st.(*models.Startup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStartupRepo) CreateStartup(ctx context.Context, st models.Startup) (int, error) {
	args := m.Called(ctx, st)
	return args.Int(0), args.Error(1)
}

type mockMarks struct{ mock.Mock }

func (m *mockMarks) SetMark(key string, ttl time.Duration) (bool, error) {
	args := m.Called(key, ttl)
	return args.Bool(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmedSession(uid string) *models.Session {
	confirmed := time.Now().Add(-time.Hour)
	return &models.Session{
		UserUID:          uid,
		Email:            uid + "@example.com",
		EmailConfirmedAt: &confirmed,
		Meta: models.SessionMeta{
			Name: "Test User",
			Role: string(models.RoleInvestor),
		},
	}
}

func TestSignInRejectsUnconfirmedEmail(t *testing.T) {
	users := new(mockUserRepo)
	startups := new(mockStartupRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, startups, marks, discardLogger())

	session := confirmedSession("u1")
	session.EmailConfirmedAt = nil

	state, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: session,
		At:      time.Now(),
	})

	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
	assert.Equal(t, PhaseUnauthenticated, state.Phase)
	users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestSignInHydratesProfile(t *testing.T) {
	users := new(mockUserRepo)
	startups := new(mockStartupRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, startups, marks, discardLogger())

	marks.On("SetMark", "authmark:u2", mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u2").Return(&models.User{
		UID:             "u2",
		Name:            "Full Profile",
		Role:            models.RoleInvestor,
		ProfileComplete: true,
	}, nil)

	state, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: confirmedSession("u2"),
		At:      time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, PhaseBasic, state.Phase)
	assert.Equal(t, "Test User", state.User.Name)

	assert.Eventually(t, func() bool {
		return o.State("u2").Phase == PhaseFull
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Full Profile", o.State("u2").User.Name)
}

func TestSignInMarksIncompleteProfile(t *testing.T) {
	users := new(mockUserRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, new(mockStartupRepo), marks, discardLogger())

	marks.On("SetMark", mock.Anything, mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u3").Return(&models.User{
		UID:             "u3",
		Role:            models.RoleCA,
		ProfileComplete: false,
	}, nil)

	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: confirmedSession("u3"),
		At:      time.Now(),
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return o.State("u3").Phase == PhaseProfileIncomplete
	}, time.Second, 10*time.Millisecond)
}

func TestSignInCreatesMissingProfile(t *testing.T) {
	users := new(mockUserRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, new(mockStartupRepo), marks, discardLogger())

	marks.On("SetMark", mock.Anything, mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u4").Return(nil, repository.ErrNotFound)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Name == "Test User" && u.Role == models.RoleInvestor
	})).Return("u4", nil)

	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: confirmedSession("u4"),
		At:      time.Now(),
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return o.State("u4").Phase == PhaseProfileIncomplete
	}, time.Second, 10*time.Millisecond)
	users.AssertCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestDuplicateSignInSuppressed(t *testing.T) {
	users := new(mockUserRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, new(mockStartupRepo), marks, discardLogger())

	marks.On("SetMark", "authmark:u5", mock.Anything).Return(true, nil).Once()
	users.On("GetUser", mock.Anything, "u5").Return(&models.User{
		UID:             "u5",
		Role:            models.RoleInvestor,
		ProfileComplete: true,
	}, nil)

	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: confirmedSession("u5"),
		At:      time.Now(),
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		return o.State("u5").Phase == PhaseFull
	}, time.Second, 10*time.Millisecond)
	o.MarkDataLoaded("u5")

	// Повторное событие попадает в окно подавления: маркер уже стоит.
	marks.On("SetMark", "authmark:u5", mock.Anything).Return(false, nil)
	state, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: confirmedSession("u5"),
		At:      time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, PhaseFull, state.Phase)
	assert.True(t, state.DataLoaded)
	users.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestTokenRefreshNeverChangesState(t *testing.T) {
	users := new(mockUserRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, new(mockStartupRepo), marks, discardLogger())

	marks.On("SetMark", mock.Anything, mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u6").Return(&models.User{
		UID:             "u6",
		Role:            models.RoleInvestor,
		ProfileComplete: true,
	}, nil)

	session := confirmedSession("u6")
	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type: models.EventSignedIn, Session: session, At: time.Now(),
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		return o.State("u6").Phase == PhaseFull
	}, time.Second, 10*time.Millisecond)
	o.MarkDataLoaded("u6")

	before := o.State("u6")
	state, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type: models.EventTokenRefreshed, Session: session, At: time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, before, state)
	users.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestSignOutDropsStaleHydration(t *testing.T) {
	users := new(mockUserRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, new(mockStartupRepo), marks, discardLogger())

	marks.On("SetMark", mock.Anything, mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u7").
		Run(func(mock.Arguments) { time.Sleep(100 * time.Millisecond) }).
		Return(&models.User{UID: "u7", Role: models.RoleInvestor, ProfileComplete: true}, nil)

	session := confirmedSession("u7")
	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type: models.EventSignedIn, Session: session, At: time.Now(),
	})
	assert.NoError(t, err)

	// Выход опережает завершение гидрации.
	state, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type: models.EventSignedOut, Session: session, At: time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, PhaseUnauthenticated, state.Phase)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, PhaseUnauthenticated, o.State("u7").Phase,
		"устаревшая гидрация не должна воскресить сессию")
}

func TestSignInEnsuresStartupRecord(t *testing.T) {
	users := new(mockUserRepo)
	startups := new(mockStartupRepo)
	marks := new(mockMarks)
	o := NewOrchestrator(users, startups, marks, discardLogger())

	marks.On("SetMark", mock.Anything, mock.Anything).Return(true, nil)
	users.On("GetUser", mock.Anything, "u8").Return(&models.User{
		UID:             "u8",
		Role:            models.RoleStartup,
		StartupName:     "Acme",
		ProfileComplete: true,
	}, nil)
	startups.On("FindStartupByName", mock.Anything, "Acme").Return(nil, repository.ErrNotFound)
	startups.On("CreateStartup", mock.Anything, mock.MatchedBy(func(st models.Startup) bool {
		return st.Name == "Acme" && st.OwnerUID == "u8" &&
			st.ComplianceStatus == models.CompliancePending
	})).Return(1, nil)

	session := confirmedSession("u8")
	session.Meta.Role = string(models.RoleStartup)
	session.Meta.StartupName = "Acme"

	_, err := o.HandleEvent(context.Background(), models.SessionEvent{
		Type: models.EventSignedIn, Session: session, At: time.Now(),
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return o.State("u8").Phase == PhaseFull
	}, time.Second, 10*time.Millisecond)
	startups.AssertExpectations(t)
}
