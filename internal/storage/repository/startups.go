package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackmystartup/platform/internal/models"
)

const startupColumns = `id, name, owner_uid, investment_type, investment_value,
			      equity_allocation, current_valuation, compliance_status, sector,
			      total_funding, total_revenue, registration_date, country_code,
			      company_type, ca_code, cs_code, total_shares, esop_reserved_shares,
			      price_per_share`

func scanStartup(row interface{ Scan(dest ...any) error }) (*models.Startup, error) {
	st := &models.Startup{}
	var ownerUID, caCode, csCode sql.NullString
	if err := row.Scan(&st.ID, &st.Name, &ownerUID, &st.InvestmentType,
		&st.InvestmentValue, &st.EquityAllocation, &st.CurrentValuation,
		&st.ComplianceStatus, &st.Sector, &st.TotalFunding, &st.TotalRevenue,
		&st.RegistrationDate, &st.CountryCode, &st.CompanyType,
		&caCode, &csCode, &st.TotalShares, &st.ESOPReservedShares,
		&st.PricePerShare); err != nil {
		return nil, err
	}
	st.OwnerUID = ownerUID.String
	st.CACode = caCode.String
	st.CSCode = csCode.String
	return st, nil
}

// CreateStartup вставляет новую запись стартапа и возвращает её ID.
func (s *Storage) CreateStartup(ctx context.Context, st models.Startup) (int, error) {
	const op = "storage.CreateStartup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO startups (name, owner_uid, investment_type, investment_value,
			      equity_allocation, current_valuation, compliance_status, sector,
			      total_funding, total_revenue, registration_date, country_code,
			      company_type, ca_code, cs_code, total_shares, esop_reserved_shares,
			      price_per_share)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		st.Name, nullable(st.OwnerUID), st.InvestmentType, st.InvestmentValue,
		st.EquityAllocation, st.CurrentValuation, st.ComplianceStatus, st.Sector,
		st.TotalFunding, st.TotalRevenue, st.RegistrationDate, st.CountryCode,
		st.CompanyType, nullable(st.CACode), nullable(st.CSCode),
		st.TotalShares, st.ESOPReservedShares, st.PricePerShare).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetStartup возвращает стартап по ID вместе с основателями.
func (s *Storage) GetStartup(ctx context.Context, id int) (*models.Startup, error) {
	const op = "storage.GetStartup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + startupColumns + ` FROM startups WHERE id = $1`
	st, err := scanStartup(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	st.Founders, err = s.ListFounders(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// FindStartupByName возвращает стартап по названию, ErrNotFound при отсутствии.
func (s *Storage) FindStartupByName(ctx context.Context, name string) (*models.Startup, error) {
	const op = "storage.FindStartupByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + startupColumns + ` FROM startups WHERE name = $1`
	st, err := scanStartup(s.DB.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// ListStartups возвращает общий список стартапов (без основателей).
func (s *Storage) ListStartups(ctx context.Context) ([]*models.Startup, error) {
	const op = "storage.ListStartups"
	return s.listStartups(ctx, op, `SELECT `+startupColumns+` FROM startups ORDER BY id`)
}

// ListStartupsByAssignment возвращает стартапы, назначенные CA или CS
// по его коду. Основатели не заполняются.
func (s *Storage) ListStartupsByAssignment(ctx context.Context, role models.Role, code string) ([]*models.Startup, error) {
	const op = "storage.ListStartupsByAssignment"
	column := "ca_code"
	if role == models.RoleCS {
		column = "cs_code"
	}
	query := `SELECT ` + startupColumns + ` FROM startups WHERE ` + column + ` = $1 ORDER BY id`
	return s.listStartups(ctx, op, query, code)
}

func (s *Storage) listStartups(ctx context.Context, op, query string, args ...any) ([]*models.Startup, error) {
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
	var result []*models.Startup
	for rows.Next() {
		st, err := scanStartup(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateStartup обновляет данные стартапа и возвращает количество изменённых строк.
func (s *Storage) UpdateStartup(ctx context.Context, st models.Startup) (int, error) {
	const op = "storage.UpdateStartup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE startups
			  SET investment_type = $1, investment_value = $2, equity_allocation = $3,
			      current_valuation = $4, compliance_status = $5, sector = $6,
			      total_funding = $7, total_revenue = $8, country_code = $9,
			      company_type = $10, ca_code = $11, cs_code = $12,
			      total_shares = $13, esop_reserved_shares = $14, price_per_share = $15
			  WHERE id = $16`
	result, err := s.DB.ExecContext(ctx, query,
		st.InvestmentType, st.InvestmentValue, st.EquityAllocation,
		st.CurrentValuation, st.ComplianceStatus, st.Sector,
		st.TotalFunding, st.TotalRevenue, st.CountryCode,
		st.CompanyType, nullable(st.CACode), nullable(st.CSCode),
		st.TotalShares, st.ESOPReservedShares, st.PricePerShare, st.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListFounders возвращает основателей стартапа в сохранённом порядке.
func (s *Storage) ListFounders(ctx context.Context, startupID int) ([]models.Founder, error) {
	const op = "storage.ListFounders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, email, shares, equity_percent
			  FROM founders
			  WHERE startup_id = $1
			  ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query, startupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []models.Founder
	for rows.Next() {
		var f models.Founder
		if err := rows.Scan(&f.Name, &f.Email, &f.Shares, &f.EquityPercent); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplaceFounders заменяет список основателей стартапа в одной транзакции.
func (s *Storage) ReplaceFounders(ctx context.Context, startupID int, founders []models.Founder) error {
	const op = "storage.ReplaceFounders"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM founders WHERE startup_id = $1`, startupID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i, f := range founders {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO founders (startup_id, position, name, email, shares, equity_percent)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			startupID, i, f.Name, f.Email, f.Shares, f.EquityPercent); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertFundraisingDetails сохраняет условия активного раунда стартапа.
func (s *Storage) UpsertFundraisingDetails(ctx context.Context, fd models.FundraisingDetails) (int, error) {
	const op = "storage.UpsertFundraisingDetails"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO fundraising_details (startup_id, active, funding_type,
			      ask_amount, ask_equity, pitch_deck_url, pitch_video_url, investor_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (startup_id) DO UPDATE
			  SET active = EXCLUDED.active, funding_type = EXCLUDED.funding_type,
			      ask_amount = EXCLUDED.ask_amount, ask_equity = EXCLUDED.ask_equity,
			      pitch_deck_url = EXCLUDED.pitch_deck_url,
			      pitch_video_url = EXCLUDED.pitch_video_url,
			      investor_code = EXCLUDED.investor_code
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		fd.StartupID, fd.Active, fd.FundingType, fd.AskAmount, fd.AskEquity,
		nullable(fd.PitchDeckURL), nullable(fd.PitchVideoURL),
		nullable(fd.InvestorCode)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
