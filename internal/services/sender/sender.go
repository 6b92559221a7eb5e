// Package services реализует отправку почтовых уведомлений платформы:
// подтверждение почты и решения по офферам и заявкам.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/lib/smtp"
	"github.com/trackmystartup/platform/internal/models"
	authservice "github.com/trackmystartup/platform/internal/services/auth"
	requestservice "github.com/trackmystartup/platform/internal/services/request"
)

// SenderService составляет и отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	baseURL   string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
// baseURL — внешний адрес платформы для ссылок в письмах.
func NewSenderService(transport smtp.TransportInterface, baseURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		baseURL:   baseURL,
		log:       log,
	}
}

// SendEmailConfirmation отправляет письмо со ссылкой подтверждения почты.
func (s *SenderService) SendEmailConfirmation(body []byte) error {
	var message authservice.ConfirmationInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Confirm your TrackMyStartup email"
	bodyText := fmt.Sprintf("Hello, %s!\n\nPlease confirm your email address by following the link:\n%s/api/v1/auth/confirm?token=%s\n\nIf you did not register, ignore this message.",
		message.Name, s.baseURL, message.Token)

	return s.sendEmail(to, subject, bodyText)
}

// SendPasswordRecovery отправляет письмо со ссылкой восстановления пароля.
func (s *SenderService) SendPasswordRecovery(body []byte) error {
	var message authservice.RecoveryInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Reset your TrackMyStartup password"
	bodyText := fmt.Sprintf("Hello, %s!\n\nTo set a new password, follow the link:\n%s/reset-password?token=%s\n\nIf you did not request a reset, ignore this message.",
		message.Name, s.baseURL, message.Token)

	return s.sendEmail(to, subject, bodyText)
}

// SendOfferDecision отправляет инвестору письмо о решении по его офферу.
func (s *SenderService) SendOfferDecision(body []byte) error {
	var message models.OfferInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := fmt.Sprintf("Your offer to %s is %s", message.StartupName, message.Status)
	bodyText := fmt.Sprintf("Hello!\n\nYour investment offer of %.2f to %s is now %s.\n\nSign in to TrackMyStartup for details.",
		message.Amount, message.StartupName, message.Status)

	return s.sendEmail(to, subject, bodyText)
}

// SendReviewDecision отправляет стартапу письмо о решении по заявке.
func (s *SenderService) SendReviewDecision(body []byte) error {
	var message requestservice.ReviewInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	// Письмо адресуется контактной почте стартапа, которую несет очередь.
	subject := fmt.Sprintf("%s request for %s: %s", message.Kind, message.StartupName, message.Status)
	bodyText := fmt.Sprintf("Hello!\n\nThe %s request for %s has been %s.",
		message.Kind, message.StartupName, message.Status)
	if message.AdminNotes != "" {
		bodyText += "\n\nAdmin notes: " + message.AdminNotes
	}

	return s.sendEmail([]string{s.transport.GetSMTPUser()}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
