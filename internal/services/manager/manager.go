// Package manager содержит прикладной слой менеджера подписок: владеет списком
// клиентов и настройками в памяти и сохраняет их в хранилище после каждого изменения.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/metrics"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/outreach"
)

var (
	// ErrClientNotFound возвращается, если клиента с таким ID нет.
	ErrClientNotFound = errors.New("client not found")
	// ErrConfirmationRequired возвращается для разрушающих операций без подтверждения.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Store описывает хранилище двух JSON-коллекций: списка клиентов и настроек.
type Store interface {
	// LoadClients возвращает сохранённых клиентов или пустой список.
	LoadClients(ctx context.Context) ([]models.Client, error)
	// SaveClients перезаписывает весь список клиентов.
	SaveClients(ctx context.Context, clients []models.Client) error
	// LoadSettings возвращает сохранённые настройки или настройки по умолчанию.
	LoadSettings(ctx context.Context) (models.Settings, error)
	// SaveSettings перезаписывает настройки.
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// Manager: единственный владелец состояния. Каждое изменение сначала применяется
// в памяти, затем весь список сохраняется; при ошибке сохранения изменение откатывается.
type Manager struct {
	mu       sync.RWMutex
	store    Store
	log      *slog.Logger
	now      func() time.Time
	clients  []models.Client
	settings models.Settings
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New создаёт менеджер. Все даты вычисляются в часовом поясе loc.
func New(store Store, log *slog.Logger, loc *time.Location, opts ...Option) *Manager {
	if loc == nil {
		loc = time.Local
	}
	m := &Manager{
		store:    store,
		log:      log,
		now:      func() time.Time { return time.Now().In(loc) },
		settings: models.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load читает состояние из хранилища. Записи приводятся к каноническому виду.
func (m *Manager) Load(ctx context.Context) error {
	const op = "manager.Load"
	clients, err := m.store.LoadClients(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	settings, err := m.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range clients {
		clients[i] = ledger.Normalize(clients[i])
	}

	m.mu.Lock()
	m.clients = clients
	m.settings = settings.WithDefaults()
	m.mu.Unlock()

	m.log.Info("state loaded", slog.Int("clients", len(clients)))
	return nil
}

// List возвращает клиентов для списка с учётом поиска и фильтра "показать всех".
func (m *Manager) List(query string, showAll bool) []models.ClientView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.Filter(m.snapshot(), query, showAll, m.now())
}

// Get возвращает клиента по ID.
func (m *Manager) Get(id string) (models.ClientView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return models.ClientView{}, fmt.Errorf("manager.Get: %w", ErrClientNotFound)
	}
	return ledger.View(m.clients[idx].Clone(), m.now()), nil
}

// Add регистрирует нового клиента.
func (m *Manager) Add(ctx context.Context, in models.ClientInput) (models.ClientView, error) {
	const op = "manager.Add"
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c, err := ledger.NewClient(in, now)
	if err != nil {
		metrics.Observe("add", err)
		return models.ClientView{}, fmt.Errorf("%s: %w", op, err)
	}

	next := append(m.snapshot(), c)
	if err := m.commitClients(ctx, next); err != nil {
		metrics.Observe("add", err)
		return models.ClientView{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.Observe("add", nil)
	metrics.RenewalRevenue.Add(c.Value.InexactFloat64())

	m.log.Info("client added", slog.String("id", c.ID), slog.String("expiration", c.ExpirationDate))
	return ledger.View(c, now), nil
}

// Update меняет контактные данные и стоимость плана клиента.
func (m *Manager) Update(ctx context.Context, id string, upd models.ClientUpdate) (models.ClientView, error) {
	return m.mutate(ctx, "update", id, func(c models.Client, _ time.Time) (models.Client, error) {
		return ledger.ApplyUpdate(c, upd)
	})
}

// Renew продлевает подписку клиента на in.DurationMonths месяцев.
func (m *Manager) Renew(ctx context.Context, id string, in models.RenewInput) (models.ClientView, error) {
	v, err := m.mutate(ctx, "renew", id, func(c models.Client, now time.Time) (models.Client, error) {
		return ledger.Renew(c, in, now)
	})
	if err == nil {
		metrics.RenewalRevenue.Add(in.Value.InexactFloat64())
		m.log.Info("client renewed", slog.String("id", id), slog.String("expiration", v.ExpirationDate))
	}
	return v, err
}

// ToggleActive архивирует клиента или возвращает его из архива.
func (m *Manager) ToggleActive(ctx context.Context, id string) (models.ClientView, error) {
	return m.mutate(ctx, "toggle", id, func(c models.Client, _ time.Time) (models.Client, error) {
		return ledger.ToggleActive(c), nil
	})
}

// MarkMessageSent готовит сообщение по шаблону, соответствующему статусу клиента,
// и запоминает момент отправки. Возвращает текст и ссылку для WhatsApp.
func (m *Manager) MarkMessageSent(ctx context.Context, id string) (models.Outreach, error) {
	var msg models.Outreach
	_, err := m.mutate(ctx, "message", id, func(c models.Client, now time.Time) (models.Client, error) {
		msg = outreach.Compose(c, m.settings, now)
		return ledger.MarkMessageSent(c, now), nil
	})
	if err != nil {
		return models.Outreach{}, err
	}
	return msg, nil
}

// Delete удаляет клиента. Без подтверждения ничего не меняется.
func (m *Manager) Delete(ctx context.Context, id string, confirm bool) error {
	const op = "manager.Delete"
	if !confirm {
		return fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrClientNotFound)
	}
	next := make([]models.Client, 0, len(m.clients)-1)
	next = append(next, m.clients[:idx]...)
	next = append(next, m.clients[idx+1:]...)
	if err := m.commitClients(ctx, next); err != nil {
		metrics.Observe("delete", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.Observe("delete", nil)
	m.log.Info("client deleted", slog.String("id", id))
	return nil
}

// Now возвращает текущий момент в часовом поясе менеджера.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Settings возвращает текущие шаблоны сообщений.
func (m *Manager) Settings() models.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// UpdateSettings сохраняет шаблоны. Пустой шаблон заменяется стандартным.
func (m *Manager) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	const op = "manager.UpdateSettings"
	s = s.WithDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.flushSettings(ctx, s); err != nil {
		metrics.Observe("settings", err)
		return m.settings, fmt.Errorf("%s: %w", op, err)
	}
	m.settings = s
	metrics.Observe("settings", nil)
	return s, nil
}

// Dashboard считает показатели на текущий момент.
func (m *Manager) Dashboard() ledger.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.Summarize(m.clients, m.now())
}

// History возвращает историю оплат, сгруппированную по дням, неделям или месяцам.
func (m *Manager) History(g ledger.Granularity) ledger.HistoryView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.BuildHistory(m.clients, g, m.now())
}

// DueReminders собирает напоминания: активным клиентам, у которых до окончания
// осталось не больше upcomingDays дней, и просроченным клиентам без отправленного сообщения.
func (m *Manager) DueReminders(upcomingDays int) []models.Reminder {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	var out []models.Reminder
	for _, c := range m.clients {
		days, ok := ledger.DaysLeft(c, now)
		status := ledger.Classify(c, now)
		switch {
		case status == models.StatusExpired:
		case status == models.StatusActive && ok && days <= upcomingDays:
		default:
			continue
		}
		r := models.Reminder{
			Outreach:         outreach.Compose(c, m.settings, now),
			WhatsApp:         c.WhatsApp,
			ExpirationDate:   c.ExpirationDate,
			DaysLeft:         days,
			RegistrationDate: c.RegistrationDate,
		}
		if c.LastMessageDate != nil {
			ts := *c.LastMessageDate
			r.LastMessageDate = &ts
		}
		out = append(out, r)
	}
	return out
}

type mutation func(c models.Client, now time.Time) (models.Client, error)

// mutate применяет изменение к одному клиенту и сохраняет список.
func (m *Manager) mutate(ctx context.Context, name, id string, fn mutation) (models.ClientView, error) {
	op := "manager." + name
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		metrics.Observe(name, ErrClientNotFound)
		return models.ClientView{}, fmt.Errorf("%s: %w", op, ErrClientNotFound)
	}

	now := m.now()
	updated, err := fn(m.clients[idx].Clone(), now)
	if err != nil {
		metrics.Observe(name, err)
		return models.ClientView{}, fmt.Errorf("%s: %w", op, err)
	}

	next := m.snapshot()
	next[idx] = updated
	if err := m.commitClients(ctx, next); err != nil {
		metrics.Observe(name, err)
		return models.ClientView{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.Observe(name, nil)
	return ledger.View(updated, now), nil
}

// commitClients сохраняет новый список и только после успешной записи делает его текущим.
// Вызывается под m.mu.
func (m *Manager) commitClients(ctx context.Context, next []models.Client) error {
	start := time.Now()
	err := m.store.SaveClients(ctx, next)
	metrics.FlushDuration.WithLabelValues("clients").Observe(time.Since(start).Seconds())
	if err != nil {
		m.log.Error("failed to save clients, change rolled back", sl.Err(err))
		return err
	}
	m.clients = next
	return nil
}

func (m *Manager) flushSettings(ctx context.Context, s models.Settings) error {
	start := time.Now()
	err := m.store.SaveSettings(ctx, s)
	metrics.FlushDuration.WithLabelValues("settings").Observe(time.Since(start).Seconds())
	if err != nil {
		m.log.Error("failed to save settings, change rolled back", sl.Err(err))
	}
	return err
}

// snapshot возвращает копию среза клиентов; записи не разделяют историю с текущим состоянием.
func (m *Manager) snapshot() []models.Client {
	out := make([]models.Client, len(m.clients))
	for i, c := range m.clients {
		out[i] = c.Clone()
	}
	return out
}

func (m *Manager) indexOf(id string) int {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return i
		}
	}
	return -1
}
