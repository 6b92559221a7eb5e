package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trackmystartup/platform/internal/models"
)

type mockStartupRepo struct {
	mock.Mock
}

func (m *mockStartupRepo) GetStartup(ctx context.Context, id int) (*models.Startup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Startup), args.Error(1)
}

func (m *mockStartupRepo) UpdateStartup(ctx context.Context, st models.Startup) (int, error) {
	args := m.Called(ctx, st)
	return args.Int(0), args.Error(1)
}

func (m *mockStartupRepo) ReplaceFounders(ctx context.Context, startupID int, founders []models.Founder) error {
	args := m.Called(ctx, startupID, founders)
	return args.Error(0)
}

func (m *mockStartupRepo) UpsertFundraisingDetails(ctx context.Context, fd models.FundraisingDetails) (int, error) {
	args := m.Called(ctx, fd)
	return args.Int(0), args.Error(1)
}

type mockAdditions struct {
	mock.Mock
}

func (m *mockAdditions) SubmitAddition(ctx context.Context, st *models.Startup, fd models.FundraisingDetails) (int, error) {
	args := m.Called(ctx, st, fd)
	return args.Int(0), args.Error(1)
}

func newTestService(repo *mockStartupRepo, additions *mockAdditions) *StartupService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStartupService(repo, additions, log)
}

func TestStartupService_Update(t *testing.T) {
	repo := new(mockStartupRepo)
	updated := &models.Startup{ID: 1, Name: "Acme", Sector: "Fintech", CurrentValuation: 5000000}

	repo.On("UpdateStartup", mock.Anything, mock.MatchedBy(func(st models.Startup) bool {
		return st.ID == 1 && st.CurrentValuation == 5000000
	})).Return(1, nil).Once()
	repo.On("GetStartup", mock.Anything, 1).Return(updated, nil).Once()

	svc := newTestService(repo, new(mockAdditions))
	got, err := svc.Update(context.Background(), models.Startup{ID: 1, CurrentValuation: 5000000})

	require.NoError(t, err)
	assert.Equal(t, updated, got)
	repo.AssertExpectations(t)
}

func TestStartupService_ReplaceFounders(t *testing.T) {
	founders := []models.Founder{
		{Name: "Alice", Email: "alice@acme.io", Shares: 6000},
		{Name: "Bob", Email: "bob@acme.io", Shares: 3000},
	}

	tests := []struct {
		name       string
		startup    *models.Startup
		founders   []models.Founder
		wantErr    error
		wantStored bool
	}{
		{
			name:       "распределение в пределах выпуска сохраняется",
			startup:    &models.Startup{ID: 1, TotalShares: 10000, ESOPReservedShares: 1000},
			founders:   founders,
			wantStored: true,
		},
		{
			name:     "акции основателей с резервом ESOP превышают выпуск",
			startup:  &models.Startup{ID: 1, TotalShares: 9000, ESOPReservedShares: 1000},
			founders: founders,
			wantErr:  ErrShareOverflow,
		},
		{
			name:       "без объявленного выпуска проверка не применяется",
			startup:    &models.Startup{ID: 1, TotalShares: 0},
			founders:   founders,
			wantStored: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockStartupRepo)
			repo.On("GetStartup", mock.Anything, 1).Return(tt.startup, nil)
			if tt.wantStored {
				repo.On("ReplaceFounders", mock.Anything, 1, tt.founders).Return(nil).Once()
			}

			svc := newTestService(repo, new(mockAdditions))
			_, err := svc.ReplaceFounders(context.Background(), 1, tt.founders)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "ReplaceFounders", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestStartupService_LaunchFundraising(t *testing.T) {
	startup := &models.Startup{ID: 1, Name: "Acme", Sector: "Fintech"}

	t.Run("активный раунд с кодом инвестора подает заявку", func(t *testing.T) {
		repo := new(mockStartupRepo)
		additions := new(mockAdditions)
		fd := models.FundraisingDetails{Active: true, FundingType: "Seed", AskAmount: 500000, InvestorCode: "INV-001"}

		repo.On("GetStartup", mock.Anything, 1).Return(startup, nil).Once()
		repo.On("UpsertFundraisingDetails", mock.Anything, mock.MatchedBy(func(got models.FundraisingDetails) bool {
			return got.StartupID == 1 && got.FundingType == "Seed"
		})).Return(7, nil).Once()
		additions.On("SubmitAddition", mock.Anything, startup, mock.Anything).Return(3, nil).Once()

		svc := newTestService(repo, additions)
		id, err := svc.LaunchFundraising(context.Background(), 1, fd)

		require.NoError(t, err)
		assert.Equal(t, 7, id)
		additions.AssertExpectations(t)
	})

	t.Run("без кода инвестора заявка не подается", func(t *testing.T) {
		repo := new(mockStartupRepo)
		additions := new(mockAdditions)
		fd := models.FundraisingDetails{Active: true, FundingType: "Seed"}

		repo.On("GetStartup", mock.Anything, 1).Return(startup, nil).Once()
		repo.On("UpsertFundraisingDetails", mock.Anything, mock.Anything).Return(7, nil).Once()

		svc := newTestService(repo, additions)
		_, err := svc.LaunchFundraising(context.Background(), 1, fd)

		require.NoError(t, err)
		additions.AssertNotCalled(t, "SubmitAddition", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ошибка подачи заявки не отменяет сохранение раунда", func(t *testing.T) {
		repo := new(mockStartupRepo)
		additions := new(mockAdditions)
		fd := models.FundraisingDetails{Active: true, InvestorCode: "INV-001"}

		repo.On("GetStartup", mock.Anything, 1).Return(startup, nil).Once()
		repo.On("UpsertFundraisingDetails", mock.Anything, mock.Anything).Return(7, nil).Once()
		additions.On("SubmitAddition", mock.Anything, startup, mock.Anything).
			Return(0, errors.New("broker down")).Once()

		svc := newTestService(repo, additions)
		id, err := svc.LaunchFundraising(context.Background(), 1, fd)

		require.NoError(t, err)
		assert.Equal(t, 7, id)
	})

	t.Run("неизвестный стартап", func(t *testing.T) {
		repo := new(mockStartupRepo)
		repo.On("GetStartup", mock.Anything, 99).Return(nil, errors.New("not found")).Once()

		svc := newTestService(repo, new(mockAdditions))
		_, err := svc.LaunchFundraising(context.Background(), 99, models.FundraisingDetails{})

		assert.Error(t, err)
	})
}
