// Package sender доставляет оператору напоминания из очереди уведомлений:
// каждое письмо содержит готовый текст и ссылку WhatsApp для отправки клиенту.
package sender

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// ErrNoRecipient возвращается, если не задан адрес оператора.
var ErrNoRecipient = errors.New("operator email is not configured")

// Transport открывает SMTP-сессию.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// Service отправляет письма с напоминаниями.
type Service struct {
	transport Transport
	to        string
	now       func() time.Time
	log       *slog.Logger
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создает сервис, который пишет на адрес оператора to.
func NewService(transport Transport, to string, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		transport: transport,
		to:        to,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleReminder разбирает напоминание из очереди и отправляет его оператору.
// Нечитаемое сообщение помечается rabbitmq.ErrDiscard.
func (s *Service) HandleReminder(body []byte) error {
	const op = "sender.HandleReminder"
	var r models.Reminder
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%s: error unmarshalling message: %v: %w", op, err, rabbitmq.ErrDiscard)
	}
	if r.ClientID == "" {
		return fmt.Errorf("%s: reminder without client id: %w", op, rabbitmq.ErrDiscard)
	}
	if s.to == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}

	if err := s.sendEmail([]string{s.to}, subject(r), emailBody(r, s.now())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("reminder delivered", slog.String("client_id", r.ClientID), slog.String("status", string(r.Status)))
	return nil
}

func subject(r models.Reminder) string {
	if r.Status == models.StatusExpired {
		return "Assinatura vencida: " + r.Name
	}
	return "Vencimento próximo: " + r.Name
}

func emailBody(r models.Reminder, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cliente: %s\n", r.Name)
	fmt.Fprintf(&b, "WhatsApp: %s\n", r.WhatsApp)
	fmt.Fprintf(&b, "Vencimento: %s (%d dias)\n", dates.FormatISOLocalized(r.ExpirationDate), r.DaysLeft)
	if r.RegistrationDate != "" {
		fmt.Fprintf(&b, "Cliente desde: %s (há %d dias)\n",
			dates.FormatISOLocalized(r.RegistrationDate), dates.DaysSince(r.RegistrationDate, now))
	}
	fmt.Fprintf(&b, "Último contato: %s\n", lastContact(r.LastMessageDate, now))
	fmt.Fprintf(&b, "Status: %s\n\n", r.Status)
	b.WriteString("Mensagem:\n")
	b.WriteString(r.Message)
	b.WriteString("\n\nEnviar pelo WhatsApp: ")
	b.WriteString(r.Link)
	b.WriteString("\n")
	return b.String()
}

func lastContact(at *time.Time, now time.Time) string {
	if at == nil {
		return dates.Placeholder
	}
	return dates.FormatDateTimeLocalized(*at, now)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
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
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
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
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	return client.Quit()
}
