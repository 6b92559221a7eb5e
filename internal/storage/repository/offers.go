package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackmystartup/platform/internal/models"
)

const offerColumns = `id, investor_email, startup_id, startup_name,
			      offer_amount, equity_percentage, status, created_at, updated_at`

func scanOffer(row interface{ Scan(dest ...any) error }) (*models.InvestmentOffer, error) {
	o := &models.InvestmentOffer{}
	if err := row.Scan(&o.ID, &o.InvestorEmail, &o.StartupID, &o.StartupName,
		&o.OfferAmount, &o.EquityPercentage, &o.Status, &o.CreatedAt,
		&o.UpdatedAt); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOffer вставляет новый инвестиционный оффер и возвращает его ID.
func (s *Storage) CreateOffer(ctx context.Context, o models.InvestmentOffer) (int, error) {
	const op = "storage.CreateOffer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO investment_offers (investor_email, startup_id, startup_name,
			      offer_amount, equity_percentage, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		o.InvestorEmail, o.StartupID, o.StartupName,
		o.OfferAmount, o.EquityPercentage, o.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetOffer возвращает оффер по ID.
func (s *Storage) GetOffer(ctx context.Context, id int) (*models.InvestmentOffer, error) {
	const op = "storage.GetOffer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + offerColumns + ` FROM investment_offers WHERE id = $1`
	o, err := scanOffer(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// UpdateOfferStatus переводит оффер в новый статус и возвращает обновлённую запись.
func (s *Storage) UpdateOfferStatus(ctx context.Context, id int, status models.OfferStatus) (*models.InvestmentOffer, error) {
	const op = "storage.UpdateOfferStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE investment_offers
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2
			  RETURNING ` + offerColumns
	o, err := scanOffer(s.DB.QueryRowContext(ctx, query, status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// UpdateOfferTerms обновляет сумму и долю оффера и возвращает обновлённую запись.
func (s *Storage) UpdateOfferTerms(ctx context.Context, id int, amount, equity float64) (*models.InvestmentOffer, error) {
	const op = "storage.UpdateOfferTerms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE investment_offers
			  SET offer_amount = $1, equity_percentage = $2, updated_at = NOW()
			  WHERE id = $3
			  RETURNING ` + offerColumns
	o, err := scanOffer(s.DB.QueryRowContext(ctx, query, amount, equity, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// DeleteOffer удаляет оффер и возвращает количество удалённых строк.
func (s *Storage) DeleteOffer(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteOffer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM investment_offers WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListOffers возвращает все офферы платформы.
func (s *Storage) ListOffers(ctx context.Context) ([]*models.InvestmentOffer, error) {
	const op = "storage.ListOffers"
	return s.listOffers(ctx, op, `SELECT `+offerColumns+` FROM investment_offers ORDER BY id`)
}

// ListOffersByInvestor возвращает офферы, поданные инвестором.
func (s *Storage) ListOffersByInvestor(ctx context.Context, investorEmail string) ([]*models.InvestmentOffer, error) {
	const op = "storage.ListOffersByInvestor"
	query := `SELECT ` + offerColumns + ` FROM investment_offers WHERE investor_email = $1 ORDER BY id`
	return s.listOffers(ctx, op, query, investorEmail)
}

// ListOffersByStartup возвращает офферы, поданные стартапу.
func (s *Storage) ListOffersByStartup(ctx context.Context, startupID int) ([]*models.InvestmentOffer, error) {
	const op = "storage.ListOffersByStartup"
	query := `SELECT ` + offerColumns + ` FROM investment_offers WHERE startup_id = $1 ORDER BY id`
	return s.listOffers(ctx, op, query, startupID)
}

func (s *Storage) listOffers(ctx context.Context, op, query string, args ...any) ([]*models.InvestmentOffer, error) {
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
	var result []*models.InvestmentOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
