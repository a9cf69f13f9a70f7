// Package reminder периодически находит клиентов, которым пора напомнить о
// продлении, и публикует готовые сообщения в обменник уведомлений.
package reminder

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/magabrotheeeer/tv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/metrics"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Source отдаёт напоминания на текущий момент.
type Source interface {
	Load(ctx context.Context) error
	DueReminders(upcomingDays int) []models.Reminder
}

// Journal хранит последнее опубликованное напоминание каждого клиента между запусками.
type Journal interface {
	LoadReminderJournal(ctx context.Context) (map[string]string, error)
	SaveReminderJournal(ctx context.Context, journal map[string]string) error
}

// Service публикует напоминания. Отметку об отправке сообщения он не ставит:
// её ставит оператор, когда действительно пишет клиенту.
//
// Одно и то же напоминание (клиент, дата окончания, очередь) публикуется один раз:
// повтор возможен только после продления или смены статуса.
type Service struct {
	source       Source
	ch           rabbitmq.Channel
	exchange     string
	upcomingDays int
	reload       bool
	journal      Journal
	sent         map[string]string
	log          *slog.Logger
}

// Option настраивает Service.
type Option func(*Service)

// WithReload перечитывает состояние из хранилища перед каждым проходом.
// Нужен, когда планировщик работает отдельным процессом от HTTP-сервиса.
func WithReload() Option {
	return func(s *Service) {
		s.reload = true
	}
}

// WithJournal сохраняет отметки об опубликованных напоминаниях в j,
// чтобы перезапуск планировщика не приводил к повторной рассылке.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// NewService создает новый экземпляр Service.
func NewService(source Source, ch rabbitmq.Channel, exchange string, upcomingDays int, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		source:       source,
		ch:           ch,
		exchange:     exchange,
		upcomingDays: upcomingDays,
		sent:         map[string]string{},
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run выполняет проход сразу и затем каждые interval, пока не отменён ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce публикует новые напоминания и возвращает число опубликованных.
// Уже опубликованные напоминания пропускаются. Ошибки публикации логируются,
// проход продолжается, а неотправленное напоминание повторяется на следующем проходе.
func (s *Service) RunOnce(ctx context.Context) int {
	s.log.Info("starting reminder scan")
	if s.reload {
		if err := s.source.Load(ctx); err != nil {
			s.log.Error("failed to reload state", sl.Err(err))
			return 0
		}
	}
	if s.journal != nil {
		sent, err := s.journal.LoadReminderJournal(ctx)
		if err != nil {
			s.log.Error("failed to load reminder journal", sl.Err(err))
			return 0
		}
		s.sent = sent
	}

	reminders := s.source.DueReminders(s.upcomingDays)
	// в журнале остаются только клиенты, которым напоминание положено сейчас
	next := make(map[string]string, len(reminders))
	published, skipped := 0, 0
	for i, r := range reminders {
		if ctx.Err() != nil {
			// необработанные напоминания сохраняют прежние отметки
			for _, rest := range reminders[i:] {
				if mark, ok := s.sent[rest.ClientID]; ok {
					next[rest.ClientID] = mark
				}
			}
			break
		}
		key := RoutingKey(r.Status)
		mark := journalMark(r, key)
		if s.sent[r.ClientID] == mark {
			next[r.ClientID] = mark
			skipped++
			continue
		}
		if err := rabbitmq.PublishMessage(s.ch, s.exchange, key, r); err != nil {
			s.log.Error("failed to publish reminder", slog.String("client_id", r.ClientID), sl.Err(err))
			continue
		}
		metrics.RemindersPublished.WithLabelValues(key).Inc()
		next[r.ClientID] = mark
		published++
	}

	changed := !maps.Equal(s.sent, next)
	s.sent = next
	if s.journal != nil && changed {
		if err := s.journal.SaveReminderJournal(context.WithoutCancel(ctx), next); err != nil {
			s.log.Error("failed to save reminder journal", sl.Err(err))
		}
	}
	s.log.Info("reminders published",
		slog.Int("count", published), slog.Int("already_sent", skipped), slog.Int("due", len(reminders)))
	return published
}

func journalMark(r models.Reminder, routingKey string) string {
	return r.ExpirationDate + "|" + routingKey
}

// RoutingKey выбирает очередь по статусу клиента.
func RoutingKey(status models.Status) string {
	if status == models.StatusExpired || status == models.StatusMessageSent {
		return rabbitmq.RoutingExpired
	}
	return rabbitmq.RoutingUpcoming
}
