package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trackmystartup/platform/internal/models"
)

type mockRequestRepo struct{ mock.Mock }

func (m *mockRequestRepo) CreateAdditionRequest(ctx context.Context, r models.StartupAdditionRequest) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *mockRequestRepo) ListAdditionRequests(ctx context.Context) ([]*models.StartupAdditionRequest, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.StartupAdditionRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) UpdateAdditionRequestStatus(ctx context.Context, id int, status models.RequestStatus) (*models.StartupAdditionRequest, error) {
	args := m.Called(ctx, id, status)
	if v := args.Get(0); v != nil {
		return v.(*models.StartupAdditionRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) CreateReviewRequest(ctx context.Context, r models.ReviewRequest) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *mockRequestRepo) ListReviewRequests(ctx context.Context) ([]*models.ReviewRequest, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.ReviewRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) UpdateReviewRequestStatus(ctx context.Context, id int, status models.RequestStatus, adminNotes string) (*models.ReviewRequest, error) {
	args := m.Called(ctx, id, status, adminNotes)
	if v := args.Get(0); v != nil {
		return v.(*models.ReviewRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitAdditionSnapshotsStartup(t *testing.T) {
	repo := new(mockRequestRepo)
	service := NewRequestService(repo, new(mockNotifier), discardLogger())

	st := &models.Startup{ID: 3, Name: "Acme", Sector: "fintech"}
	fd := models.FundraisingDetails{AskAmount: 100000, AskEquity: 7, InvestorCode: "INV-AAA111"}

	repo.On("CreateAdditionRequest", mock.Anything, mock.MatchedBy(func(r models.StartupAdditionRequest) bool {
		return r.StartupID == 3 && r.StartupName == "Acme" &&
			r.AskAmount == 100000 && r.InvestorCode == "INV-AAA111" &&
			r.Status == models.RequestPending
	})).Return(21, nil)

	id, err := service.SubmitAddition(context.Background(), st, fd)
	assert.NoError(t, err)
	assert.Equal(t, 21, id)
	repo.AssertExpectations(t)
}

func TestDecideAdditionRejectsRepeatedDecision(t *testing.T) {
	repo := new(mockRequestRepo)
	service := NewRequestService(repo, new(mockNotifier), discardLogger())

	repo.On("ListAdditionRequests", mock.Anything).Return([]*models.StartupAdditionRequest{
		{ID: 5, Status: models.RequestApproved},
	}, nil)

	_, err := service.DecideAddition(context.Background(), 5, false)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	repo.AssertNotCalled(t, "UpdateAdditionRequestStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecideAdditionApproves(t *testing.T) {
	repo := new(mockRequestRepo)
	service := NewRequestService(repo, new(mockNotifier), discardLogger())

	repo.On("ListAdditionRequests", mock.Anything).Return([]*models.StartupAdditionRequest{
		{ID: 6, Status: models.RequestPending},
	}, nil)
	repo.On("UpdateAdditionRequestStatus", mock.Anything, 6, models.RequestApproved).
		Return(&models.StartupAdditionRequest{ID: 6, Status: models.RequestApproved}, nil)

	updated, err := service.DecideAddition(context.Background(), 6, true)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestApproved, updated.Status)
}

func TestDecideReviewNotifies(t *testing.T) {
	repo := new(mockRequestRepo)
	notifier := new(mockNotifier)
	service := NewRequestService(repo, notifier, discardLogger())

	repo.On("ListReviewRequests", mock.Anything).Return([]*models.ReviewRequest{
		{ID: 9, Kind: models.KindVerification, StartupName: "Acme", Status: models.RequestPending},
	}, nil)
	repo.On("UpdateReviewRequestStatus", mock.Anything, 9, models.RequestRejected, "documents missing").
		Return(&models.ReviewRequest{
			ID: 9, Kind: models.KindVerification, StartupName: "Acme",
			Status: models.RequestRejected, AdminNotes: "documents missing",
		}, nil)
	notifier.On("Publish", "review", mock.MatchedBy(func(msg any) bool {
		info, ok := msg.(ReviewInfo)
		return ok && info.StartupName == "Acme" && info.Status == models.RequestRejected
	})).Return(nil)

	updated, err := service.DecideReview(context.Background(), 9, false, "documents missing")
	assert.NoError(t, err)
	assert.Equal(t, "documents missing", updated.AdminNotes)
	notifier.AssertExpectations(t)
}
