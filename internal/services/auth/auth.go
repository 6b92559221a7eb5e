// Package services содержит логику бизнес-уровня для регистрации,
// входа и подтверждения почты пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackmystartup/platform/internal/lib/jwt"
	"github.com/trackmystartup/platform/internal/lib/password"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре почта/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ConfirmEmail помечает почту пользователя как подтверждённую.
	ConfirmEmail(ctx context.Context, userUID string) error
	// UpdateVerificationDocuments сохраняет ссылки на верификационные документы.
	UpdateVerificationDocuments(ctx context.Context, userUID, governmentIDURL, licenseURL string) error
	// UpdatePassword заменяет хэш пароля пользователя.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// Notifier публикует сообщения очереди уведомлений.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// ConfirmationInfo — полезная нагрузка письма с подтверждением почты.
type ConfirmationInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// RecoveryInfo — полезная нагрузка письма восстановления пароля.
type RecoveryInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// RegisterRequest — данные регистрации нового пользователя.
type RegisterRequest struct {
	Email       string
	Name        string
	Password    string
	Role        models.Role
	StartupName string
	AdvisorCode string
}

// AuthService отвечает за регистрацию, вход и выпуск токенов сессии.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	notifier Notifier
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, notifier Notifier, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		notifier: notifier,
		log:      log,
	}
}

// Register создает нового пользователя, генерирует код его роли
// и ставит в очередь письмо с подтверждением почты.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:            req.Email,
		Name:             req.Name,
		PasswordHash:     hashed,
		Role:             req.Role,
		StartupName:      req.StartupName,
		AdvisorCode:      req.AdvisorCode,
		RegistrationDate: time.Now().UTC(),
	}
	switch req.Role {
	case models.RoleInvestor:
		user.InvestorCode = generateRoleCode("INV")
	case models.RoleCA:
		user.CACode = generateRoleCode("CA")
	case models.RoleCS:
		user.CSCode = generateRoleCode("CS")
	case models.RoleAdvisor:
		user.AdvisorCode = generateRoleCode("IA")
	}

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", err
	}

	confirmToken, err := s.jwtMaker.GenerateToken(&models.Session{
		UserUID: uid,
		Email:   req.Email,
	})
	if err != nil {
		return "", err
	}
	if err := s.notifier.Publish("confirm", ConfirmationInfo{
		Email: req.Email,
		Name:  req.Name,
		Token: confirmToken,
	}); err != nil {
		// Письмо можно переотправить, регистрацию это не отменяет.
		s.log.Warn("failed to queue confirmation email", sl.Err(err))
	}
	return uid, nil
}

// ConfirmEmail проверяет токен из письма и помечает почту подтверждённой.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return fmt.Errorf("invalid or expired confirmation link: %w", err)
	}
	return s.users.ConfirmEmail(ctx, claims.Subject)
}

// Login проверяет пароль пользователя и выпускает токен сессии.
// Подтверждение почты здесь не проверяется: этим владеет оркестратор сессий.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	session := &models.Session{
		UserUID:          user.UID,
		Email:            user.Email,
		EmailConfirmedAt: user.EmailConfirmedAt,
		Meta: models.SessionMeta{
			Name:        user.Name,
			Role:        string(user.Role),
			StartupName: user.StartupName,
		},
	}
	token, err := s.jwtMaker.GenerateToken(session)
	if err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// RequestPasswordReset ставит в очередь письмо со ссылкой восстановления пароля.
// Для неизвестной почты метод молча завершается успехом: наличие аккаунта
// не раскрывается.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	recoveryToken, err := s.jwtMaker.GenerateToken(&models.Session{
		UserUID: user.UID,
		Email:   user.Email,
	})
	if err != nil {
		return err
	}
	if err := s.notifier.Publish("recovery", RecoveryInfo{
		Email: user.Email,
		Name:  user.Name,
		Token: recoveryToken,
	}); err != nil {
		s.log.Warn("failed to queue recovery email", sl.Err(err))
		return err
	}
	return nil
}

// ResetPassword проверяет токен восстановления и заменяет пароль пользователя.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return fmt.Errorf("invalid or expired recovery link: %w", err)
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, claims.Subject, hashed)
}

// CompleteProfile сохраняет ссылки на верификационные документы пользователя.
// После этого профиль считается заполненным и дозаполнение не требуется.
func (s *AuthService) CompleteProfile(ctx context.Context, userUID, governmentIDURL, licenseURL string) error {
	if err := s.users.UpdateVerificationDocuments(ctx, userUID, governmentIDURL, licenseURL); err != nil {
		return err
	}
	s.log.Info("verification documents saved", slog.String("uid", userUID))
	return nil
}

// ValidateToken проверяет токен сессии и восстанавливает проекцию Session.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Session, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return claims.Session(), nil
}

// generateRoleCode формирует короткий опознаваемый код роли, например INV-1A2B3C.
func generateRoleCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + suffix
}
