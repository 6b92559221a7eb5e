package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackmystartup/platform/internal/models"
)

// CreateAdditionRequest вставляет заявку на добавление стартапа
// в портфель инвестора и возвращает её ID.
func (s *Storage) CreateAdditionRequest(ctx context.Context, r models.StartupAdditionRequest) (int, error) {
	const op = "storage.CreateAdditionRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO startup_addition_requests (startup_id, startup_name, sector,
			      ask_amount, ask_equity, investor_code, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		r.StartupID, r.StartupName, r.Sector, r.AskAmount, r.AskEquity,
		r.InvestorCode, r.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListAdditionRequests возвращает все заявки на добавление стартапов.
func (s *Storage) ListAdditionRequests(ctx context.Context) ([]*models.StartupAdditionRequest, error) {
	const op = "storage.ListAdditionRequests"
	query := `SELECT id, startup_id, startup_name, sector, ask_amount, ask_equity,
			      investor_code, status, created_at
			  FROM startup_addition_requests
			  ORDER BY id`
	return s.listAdditionRequests(ctx, op, query)
}

// ListAdditionRequestsByInvestorCode возвращает заявки по коду инвестора.
func (s *Storage) ListAdditionRequestsByInvestorCode(ctx context.Context, investorCode string) ([]*models.StartupAdditionRequest, error) {
	const op = "storage.ListAdditionRequestsByInvestorCode"
	query := `SELECT id, startup_id, startup_name, sector, ask_amount, ask_equity,
			      investor_code, status, created_at
			  FROM startup_addition_requests
			  WHERE investor_code = $1
			  ORDER BY id`
	return s.listAdditionRequests(ctx, op, query, investorCode)
}

func (s *Storage) listAdditionRequests(ctx context.Context, op, query string, args ...any) ([]*models.StartupAdditionRequest, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.StartupAdditionRequest
	for rows.Next() {
		var r models.StartupAdditionRequest
		if err := rows.Scan(&r.ID, &r.StartupID, &r.StartupName, &r.Sector,
			&r.AskAmount, &r.AskEquity, &r.InvestorCode, &r.Status,
			&r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAdditionRequestStatus переводит заявку в новый статус.
func (s *Storage) UpdateAdditionRequestStatus(ctx context.Context, id int, status models.RequestStatus) (*models.StartupAdditionRequest, error) {
	const op = "storage.UpdateAdditionRequestStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE startup_addition_requests
			  SET status = $1
			  WHERE id = $2
			  RETURNING id, startup_id, startup_name, sector, ask_amount, ask_equity,
			      investor_code, status, created_at`
	var r models.StartupAdditionRequest
	err := s.DB.QueryRowContext(ctx, query, status, id).Scan(
		&r.ID, &r.StartupID, &r.StartupName, &r.Sector, &r.AskAmount,
		&r.AskEquity, &r.InvestorCode, &r.Status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &r, nil
}

// CreateReviewRequest вставляет верификационную или валидационную заявку.
func (s *Storage) CreateReviewRequest(ctx context.Context, r models.ReviewRequest) (int, error) {
	const op = "storage.CreateReviewRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO review_requests (kind, startup_id, startup_name, request_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		r.Kind, r.StartupID, r.StartupName, r.RequestDate, r.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListReviewRequests возвращает верификационные и валидационные заявки.
func (s *Storage) ListReviewRequests(ctx context.Context) ([]*models.ReviewRequest, error) {
	const op = "storage.ListReviewRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, kind, startup_id, startup_name, request_date, status,
			      COALESCE(admin_notes, '')
			  FROM review_requests
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.ReviewRequest
	for rows.Next() {
		var r models.ReviewRequest
		if err := rows.Scan(&r.ID, &r.Kind, &r.StartupID, &r.StartupName,
			&r.RequestDate, &r.Status, &r.AdminNotes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateReviewRequestStatus переводит заявку в новый статус с заметками администратора.
func (s *Storage) UpdateReviewRequestStatus(ctx context.Context, id int, status models.RequestStatus, adminNotes string) (*models.ReviewRequest, error) {
	const op = "storage.UpdateReviewRequestStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE review_requests
			  SET status = $1, admin_notes = $2
			  WHERE id = $3
			  RETURNING id, kind, startup_id, startup_name, request_date, status,
			      COALESCE(admin_notes, '')`
	var r models.ReviewRequest
	err := s.DB.QueryRowContext(ctx, query, status, nullable(adminNotes), id).Scan(
		&r.ID, &r.Kind, &r.StartupID, &r.StartupName, &r.RequestDate,
		&r.Status, &r.AdminNotes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &r, nil
}
