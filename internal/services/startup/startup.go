// Package services содержит бизнес-логику стартапов: чтение и правку
// профиля, замену списка основателей и запуск раунда привлечения капитала.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// ErrShareOverflow возвращается, когда акции основателей и резерв ESOP
// превышают общее число выпущенных акций.
var ErrShareOverflow = errors.New("founder shares and ESOP reserve exceed total shares")

// StartupRepository определяет методы для работы со стартапами в хранилище.
type StartupRepository interface {
	GetStartup(ctx context.Context, id int) (*models.Startup, error)
	UpdateStartup(ctx context.Context, st models.Startup) (int, error)
	ReplaceFounders(ctx context.Context, startupID int, founders []models.Founder) error
	UpsertFundraisingDetails(ctx context.Context, fd models.FundraisingDetails) (int, error)
}

// AdditionSubmitter подает заявку на добавление стартапа в портфель инвестора.
type AdditionSubmitter interface {
	SubmitAddition(ctx context.Context, st *models.Startup, fd models.FundraisingDetails) (int, error)
}

// StartupService реализует операции над стартапами.
type StartupService struct {
	repo      StartupRepository
	additions AdditionSubmitter
	log       *slog.Logger
}

// NewStartupService создает новый экземпляр StartupService.
func NewStartupService(repo StartupRepository, additions AdditionSubmitter, log *slog.Logger) *StartupService {
	return &StartupService{
		repo:      repo,
		additions: additions,
		log:       log,
	}
}

// Get возвращает стартап с основателями.
func (s *StartupService) Get(ctx context.Context, id int) (*models.Startup, error) {
	return s.repo.GetStartup(ctx, id)
}

// Update правит профиль стартапа и возвращает авторитетную обновлённую запись.
func (s *StartupService) Update(ctx context.Context, st models.Startup) (*models.Startup, error) {
	if _, err := s.repo.UpdateStartup(ctx, st); err != nil {
		return nil, err
	}
	return s.repo.GetStartup(ctx, st.ID)
}

// ReplaceFounders заменяет список основателей целиком, проверив распределение
// акций. Порядок основателей сохраняется.
func (s *StartupService) ReplaceFounders(ctx context.Context, startupID int, founders []models.Founder) (*models.Startup, error) {
	st, err := s.repo.GetStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if st.TotalShares > 0 {
		var founderShares int64
		for _, f := range founders {
			founderShares += f.Shares
		}
		if founderShares+st.ESOPReservedShares > st.TotalShares {
			return nil, fmt.Errorf("%w: %d founder + %d esop > %d total",
				ErrShareOverflow, founderShares, st.ESOPReservedShares, st.TotalShares)
		}
	}
	if err := s.repo.ReplaceFounders(ctx, startupID, founders); err != nil {
		return nil, err
	}
	return s.repo.GetStartup(ctx, startupID)
}

// LaunchFundraising сохраняет условия раунда. Если стартап назвал код
// инвестора, дополнительно подается заявка на видимость в его портфеле.
func (s *StartupService) LaunchFundraising(ctx context.Context, startupID int, fd models.FundraisingDetails) (int, error) {
	st, err := s.repo.GetStartup(ctx, startupID)
	if err != nil {
		return 0, err
	}
	fd.StartupID = st.ID
	id, err := s.repo.UpsertFundraisingDetails(ctx, fd)
	if err != nil {
		return 0, err
	}
	s.log.Info("fundraising round saved", slog.Int("startup_id", st.ID),
		slog.String("funding_type", fd.FundingType))

	if fd.Active && fd.InvestorCode != "" {
		if _, err := s.additions.SubmitAddition(ctx, st, fd); err != nil {
			// Заявку можно подать повторно, раунд уже сохранен.
			s.log.Warn("failed to submit addition request", sl.Err(err))
		}
	}
	return id, nil
}
