// Package services содержит бизнес-логику заявок: добавление стартапов
// в портфели инвесторов и однонаправленные верификационные/валидационные
// процессы.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// ErrAlreadyDecided возвращается при повторной обработке решённой заявки.
var ErrAlreadyDecided = errors.New("request already decided")

// RequestRepository определяет методы для работы с заявками в хранилище.
type RequestRepository interface {
	CreateAdditionRequest(ctx context.Context, r models.StartupAdditionRequest) (int, error)
	ListAdditionRequests(ctx context.Context) ([]*models.StartupAdditionRequest, error)
	UpdateAdditionRequestStatus(ctx context.Context, id int, status models.RequestStatus) (*models.StartupAdditionRequest, error)
	CreateReviewRequest(ctx context.Context, r models.ReviewRequest) (int, error)
	ListReviewRequests(ctx context.Context) ([]*models.ReviewRequest, error)
	UpdateReviewRequestStatus(ctx context.Context, id int, status models.RequestStatus, adminNotes string) (*models.ReviewRequest, error)
}

// Notifier публикует уведомления о решениях по заявкам.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// ReviewInfo — полезная нагрузка уведомления о решении по заявке.
type ReviewInfo struct {
	StartupName string               `json:"startup_name"`
	Kind        models.RequestKind   `json:"kind"`
	Status      models.RequestStatus `json:"status"`
	AdminNotes  string               `json:"admin_notes,omitempty"`
}

// RequestService реализует обработку заявок.
type RequestService struct {
	repo     RequestRepository
	notifier Notifier
	log      *slog.Logger
}

// NewRequestService создает новый экземпляр RequestService.
func NewRequestService(repo RequestRepository, notifier Notifier, log *slog.Logger) *RequestService {
	return &RequestService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// SubmitAddition создает заявку на видимость стартапа в портфеле инвестора.
// Вызывается, когда стартап указывает код инвестора при запуске раунда.
func (s *RequestService) SubmitAddition(ctx context.Context, st *models.Startup, fd models.FundraisingDetails) (int, error) {
	req := models.StartupAdditionRequest{
		StartupID:    st.ID,
		StartupName:  st.Name,
		Sector:       st.Sector,
		AskAmount:    fd.AskAmount,
		AskEquity:    fd.AskEquity,
		InvestorCode: fd.InvestorCode,
		Status:       models.RequestPending,
	}
	id, err := s.repo.CreateAdditionRequest(ctx, req)
	if err != nil {
		return 0, err
	}
	s.log.Info("startup addition request submitted", slog.Int("id", id),
		slog.String("investor_code", fd.InvestorCode))
	return id, nil
}

// DecideAddition одобряет или отклоняет заявку на добавление стартапа.
// Решённые заявки повторно не обрабатываются.
func (s *RequestService) DecideAddition(ctx context.Context, id int, approve bool) (*models.StartupAdditionRequest, error) {
	current, err := s.findAddition(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current.Status)
	}
	status := models.RequestRejected
	if approve {
		status = models.RequestApproved
	}
	return s.repo.UpdateAdditionRequestStatus(ctx, id, status)
}

func (s *RequestService) findAddition(ctx context.Context, id int) (*models.StartupAdditionRequest, error) {
	requests, err := s.repo.ListAdditionRequests(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("addition request %d not found", id)
}

// SubmitReview создает верификационную или валидационную заявку стартапа.
func (s *RequestService) SubmitReview(ctx context.Context, kind models.RequestKind, st *models.Startup) (int, error) {
	req := models.ReviewRequest{
		Kind:        kind,
		StartupID:   st.ID,
		StartupName: st.Name,
		RequestDate: time.Now().UTC(),
		Status:      models.RequestPending,
	}
	id, err := s.repo.CreateReviewRequest(ctx, req)
	if err != nil {
		return 0, err
	}
	s.log.Info("review request submitted", slog.Int("id", id), slog.String("kind", string(kind)))
	return id, nil
}

// DecideReview одобряет или отклоняет верификационную/валидационную заявку
// с заметками администратора и ставит уведомление в очередь.
func (s *RequestService) DecideReview(ctx context.Context, id int, approve bool, adminNotes string) (*models.ReviewRequest, error) {
	requests, err := s.repo.ListReviewRequests(ctx)
	if err != nil {
		return nil, err
	}
	var current *models.ReviewRequest
	for _, r := range requests {
		if r.ID == id {
			current = r
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("review request %d not found", id)
	}
	if current.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current.Status)
	}

	status := models.RequestRejected
	if approve {
		status = models.RequestApproved
	}
	updated, err := s.repo.UpdateReviewRequestStatus(ctx, id, status, adminNotes)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Publish("review", ReviewInfo{
		StartupName: updated.StartupName,
		Kind:        updated.Kind,
		Status:      updated.Status,
		AdminNotes:  updated.AdminNotes,
	}); err != nil {
		s.log.Warn("failed to queue review notification", sl.Err(err))
	}
	return updated, nil
}
