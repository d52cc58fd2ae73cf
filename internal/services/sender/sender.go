// Package services содержит сервис рассылки писем о выдаче и отзыве доступа к серверу.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/smtp"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// ErrUnknownEvent тип события не поддерживается рассылкой.
var ErrUnknownEvent = errors.New("unknown subuser event type")

// SenderService отправляет письма по событиям субаккаунтов.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleSubuserEvent разбирает сообщение из очереди и отправляет письмо.
// Сообщения, которые нельзя доставить никогда (битый JSON, неизвестный тип, нет адреса),
// пишутся в лог и подтверждаются; ошибка возвращается только при сбое SMTP.
func (s *SenderService) HandleSubuserEvent(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleSubuserEvent"
	log := s.log.With(sl.Op(op))

	var event models.SubuserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal message body, dropped", sl.Err(err))
		return nil
	}
	log = log.With(slog.String("event_id", event.EventID), slog.String("type", event.Type))

	if event.Email == "" {
		log.Warn("event without recipient, dropped", slog.Int("user_id", event.UserID))
		return nil
	}

	subject, text, err := composeSubuserMessage(event)
	if err != nil {
		log.Warn("event dropped", sl.Err(err))
		return nil
	}

	if err := s.sendEmail(ctx, []string{event.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func composeSubuserMessage(event models.SubuserEvent) (string, string, error) {
	server := event.ServerName
	if server == "" {
		server = fmt.Sprintf("#%d", event.ServerID)
	}

	switch event.Type {
	case models.EventSubuserAdded:
		subject := fmt.Sprintf("Вам выдан доступ к серверу %s", server)
		text := fmt.Sprintf("Здравствуйте, %s!\n\nВладелец сервера %s добавил вас в список субаккаунтов.\n"+
			"Сервер уже доступен в вашей панели управления с выданными правами.",
			event.Username, server)
		return subject, text, nil
	case models.EventSubuserRemoved:
		subject := fmt.Sprintf("Доступ к серверу %s отозван", server)
		text := fmt.Sprintf("Здравствуйте, %s!\n\nВаш доступ к серверу %s был отозван владельцем.\n"+
			"Ключ доступа к демону для этого сервера больше недействителен.",
			event.Username, server)
		return subject, text, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
}

// headerValue убирает переводы строк, чтобы значение не ломало заголовки письма
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + headerValue(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		// после успешного Quit соединение уже закрыто
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("Failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
