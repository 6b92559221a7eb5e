// Package services содержит бизнес-логику инвестиционных офферов:
// подачу, однонаправленную машину статусов и правки условий.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// ErrInvalidTransition возвращается при недопустимом переходе статуса.
var ErrInvalidTransition = errors.New("invalid offer status transition")

// ErrNotPending возвращается при правке или отмене оффера вне статуса pending.
var ErrNotPending = errors.New("offer is no longer pending")

// OfferRepository определяет методы для работы с офферами в хранилище.
type OfferRepository interface {
	CreateOffer(ctx context.Context, o models.InvestmentOffer) (int, error)
	GetOffer(ctx context.Context, id int) (*models.InvestmentOffer, error)
	// UpdateOfferStatus возвращает авторитетную обновлённую запись.
	UpdateOfferStatus(ctx context.Context, id int, status models.OfferStatus) (*models.InvestmentOffer, error)
	UpdateOfferTerms(ctx context.Context, id int, amount, equity float64) (*models.InvestmentOffer, error)
	DeleteOffer(ctx context.Context, id int) (int, error)
}

// StartupFinder находит стартап-адресата оффера.
type StartupFinder interface {
	FindStartupByName(ctx context.Context, name string) (*models.Startup, error)
	GetStartup(ctx context.Context, id int) (*models.Startup, error)
}

// UserFinder отдает участников оффера для проверки кодов советников.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Notifier публикует уведомления о решениях по офферам.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// offerTransitions — разрешённые переходы статусов. Переходы
// однонаправленные: pending повторно не достигается, rejected и
// completed терминальны. Отклонить оффер можно в любом статусе
// до принятия; после accepted остаётся только completed.
var offerTransitions = map[models.OfferStatus][]models.OfferStatus{
	models.OfferPending: {
		models.OfferApproved,
		models.OfferRejected,
		models.OfferPendingInvestorAdvisorApproval,
		models.OfferPendingStartupAdvisorApproval,
	},
	models.OfferPendingInvestorAdvisorApproval: {
		models.OfferPendingStartupAdvisorApproval,
		models.OfferApproved,
		models.OfferRejected,
	},
	models.OfferPendingStartupAdvisorApproval: {
		models.OfferApproved,
		models.OfferRejected,
	},
	models.OfferApproved: {
		models.OfferAccepted,
		models.OfferRejected,
	},
	models.OfferAccepted: {
		models.OfferCompleted,
	},
}

// CanTransition сообщает, разрешён ли переход между статусами.
func CanTransition(from, to models.OfferStatus) bool {
	for _, allowed := range offerTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OfferService реализует бизнес-логику офферов.
type OfferService struct {
	repo     OfferRepository
	startups StartupFinder
	users    UserFinder
	notifier Notifier
	log      *slog.Logger
}

// NewOfferService создает новый экземпляр OfferService.
func NewOfferService(repo OfferRepository, startups StartupFinder, users UserFinder, notifier Notifier, log *slog.Logger) *OfferService {
	return &OfferService{
		repo:     repo,
		startups: startups,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Submit подает оффер инвестора стартапу. Начальный статус — всегда pending.
func (s *OfferService) Submit(ctx context.Context, investorEmail, startupName string, amount, equity float64) (*models.InvestmentOffer, error) {
	st, err := s.startups.FindStartupByName(ctx, startupName)
	if err != nil {
		return nil, fmt.Errorf("startup %q: %w", startupName, err)
	}
	offer := models.InvestmentOffer{
		InvestorEmail:    investorEmail,
		StartupID:        st.ID,
		StartupName:      st.Name,
		OfferAmount:      amount,
		EquityPercentage: equity,
		Status:           models.OfferPending,
	}
	id, err := s.repo.CreateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}
	s.log.Info("investment offer submitted", slog.Int("id", id),
		slog.String("startup", st.Name))
	return s.repo.GetOffer(ctx, id)
}

// advisorGate возвращает статус согласования советником, который оффер
// обязан пройти перед approved: сначала советник инвестора, затем
// советник владельца стартапа. Если коды советников не заданы,
// возвращается approved.
func (s *OfferService) advisorGate(ctx context.Context, offer *models.InvestmentOffer) (models.OfferStatus, error) {
	if offer.Status == models.OfferPending {
		investor, err := s.users.GetUserByEmail(ctx, offer.InvestorEmail)
		if err != nil {
			return "", fmt.Errorf("offer investor: %w", err)
		}
		if investor.AdvisorCode != "" {
			return models.OfferPendingInvestorAdvisorApproval, nil
		}
	}
	st, err := s.startups.GetStartup(ctx, offer.StartupID)
	if err != nil {
		return "", fmt.Errorf("offer startup: %w", err)
	}
	if st.OwnerUID != "" {
		owner, err := s.users.GetUser(ctx, st.OwnerUID)
		if err != nil {
			return "", fmt.Errorf("startup owner: %w", err)
		}
		if owner.AdvisorCode != "" {
			return models.OfferPendingStartupAdvisorApproval, nil
		}
	}
	return models.OfferApproved, nil
}

// Transition переводит оффер в новый статус, проверяя машину статусов,
// и возвращает авторитетную обновлённую запись. Одобрение проходит
// через advisorGate: при заданных кодах советников оффер сначала
// попадает на их согласование.
func (s *OfferService) Transition(ctx context.Context, id int, next models.OfferStatus) (*models.InvestmentOffer, error) {
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if next == models.OfferApproved &&
		(offer.Status == models.OfferPending || offer.Status == models.OfferPendingInvestorAdvisorApproval) {
		next, err = s.advisorGate(ctx, offer)
		if err != nil {
			return nil, err
		}
	}
	if !CanTransition(offer.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, offer.Status, next)
	}
	updated, err := s.repo.UpdateOfferStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.log.Info("offer status changed", slog.Int("id", id),
		slog.String("from", string(offer.Status)), slog.String("to", string(next)))

	if next == models.OfferApproved || next == models.OfferRejected || next == models.OfferAccepted {
		if err := s.notifier.Publish("offer", models.OfferInfo{
			Email:       updated.InvestorEmail,
			StartupName: updated.StartupName,
			Amount:      updated.OfferAmount,
			Status:      updated.Status,
		}); err != nil {
			s.log.Warn("failed to queue offer notification", sl.Err(err))
		}
	}
	return updated, nil
}

// UpdateTerms правит сумму и долю оффера. Допустимо только в статусе pending.
func (s *OfferService) UpdateTerms(ctx context.Context, id int, amount, equity float64) (*models.InvestmentOffer, error) {
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferPending {
		return nil, fmt.Errorf("%w: status is %s", ErrNotPending, offer.Status)
	}
	return s.repo.UpdateOfferTerms(ctx, id, amount, equity)
}

// Cancel безвозвратно удаляет оффер. Допустимо только в статусе pending.
func (s *OfferService) Cancel(ctx context.Context, id int) error {
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return err
	}
	if offer.Status != models.OfferPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, offer.Status)
	}
	count, err := s.repo.DeleteOffer(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("offer cancelled", slog.Int("id", id), slog.Int("removed", count))
	return nil
}
