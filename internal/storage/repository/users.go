package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackmystartup/platform/internal/models"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в хранилище.
var ErrNotFound = errors.New("not found")

const userColumns = `uid, email, name, password_hash, role, startup_name,
			      investor_code, ca_code, cs_code, advisor_code, registration_date,
			      email_confirmed_at, government_id_url, license_url, profile_complete`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var startupName, investorCode, caCode, csCode, advisorCode sql.NullString
	var governmentIDURL, licenseURL sql.NullString
	var emailConfirmedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&startupName, &investorCode, &caCode, &csCode, &advisorCode,
		&u.RegistrationDate, &emailConfirmedAt, &governmentIDURL, &licenseURL,
		&u.ProfileComplete); err != nil {
		return nil, err
	}
	u.StartupName = startupName.String
	u.InvestorCode = investorCode.String
	u.CACode = caCode.String
	u.CSCode = csCode.String
	u.AdvisorCode = advisorCode.String
	u.GovernmentIDURL = governmentIDURL.String
	u.LicenseURL = licenseURL.String
	if emailConfirmedAt.Valid {
		u.EmailConfirmedAt = &emailConfirmedAt.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, name, password_hash, role, startup_name,
			      investor_code, ca_code, cs_code, advisor_code, registration_date,
			      government_id_url, license_url, profile_complete)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role, nullable(user.StartupName),
		nullable(user.InvestorCode), nullable(user.CACode), nullable(user.CSCode),
		nullable(user.AdvisorCode), user.RegistrationDate,
		nullable(user.GovernmentIDURL), nullable(user.LicenseURL),
		user.ProfileComplete).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ConfirmEmail помечает почту пользователя как подтверждённую.
func (s *Storage) ConfirmEmail(ctx context.Context, userUID string) error {
	const op = "storage.ConfirmEmail"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email_confirmed_at = NOW()
			  WHERE uid = $1 AND email_confirmed_at IS NULL`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateVerificationDocuments сохраняет ссылки на документы пользователя
// и помечает профиль заполненным.
func (s *Storage) UpdateVerificationDocuments(ctx context.Context, userUID, governmentIDURL, licenseURL string) error {
	const op = "storage.UpdateVerificationDocuments"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET government_id_url = $1, license_url = $2, profile_complete = TRUE
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, governmentIDURL, nullable(licenseURL), userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает всех пользователей платформы.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY registration_date`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindAdvisorProfile возвращает публичный профиль советника по его коду.
func (s *Storage) FindAdvisorProfile(ctx context.Context, advisorCode string) (*models.AdvisorProfile, error) {
	const op = "storage.FindAdvisorProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, COALESCE(logo_url, '')
			  FROM users
			  WHERE role = 'Investment Advisor' AND advisor_code = $1`
	p := &models.AdvisorProfile{}
	err := s.DB.QueryRowContext(ctx, query, advisorCode).Scan(&p.Name, &p.LogoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// nullable конвертирует пустую строку в NULL для опциональных колонок.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
