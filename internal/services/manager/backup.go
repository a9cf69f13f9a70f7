package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tv-manager/internal/csvcodec"
	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/metrics"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// ErrInvalidBackup возвращается, если резервная копия не содержит списка клиентов.
var ErrInvalidBackup = errors.New("backup has no clients list")

// PreviewImport разбирает CSV без изменения состояния, чтобы показать
// пользователю, сколько клиентов будет импортировано.
func (m *Manager) PreviewImport(data []byte) (csvcodec.Result, error) {
	res, err := csvcodec.Import(data, m.now())
	if err != nil {
		return csvcodec.Result{}, fmt.Errorf("manager.PreviewImport: %w", err)
	}
	return res, nil
}

// CommitImport разбирает CSV и добавляет клиентов в список. Клиент с уже
// существующим ID заменяет прежнюю запись, остальные добавляются в конец.
func (m *Manager) CommitImport(ctx context.Context, data []byte, confirm bool) (csvcodec.Result, error) {
	const op = "manager.CommitImport"
	res, err := csvcodec.Import(data, m.now())
	if err != nil {
		return csvcodec.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if !confirm {
		return res, fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.snapshot()
	pos := make(map[string]int, len(next))
	for i, c := range next {
		pos[c.ID] = i
	}
	for _, c := range res.Clients {
		if i, ok := pos[c.ID]; ok {
			next[i] = c
			continue
		}
		pos[c.ID] = len(next)
		next = append(next, c)
	}

	if err := m.commitClients(ctx, next); err != nil {
		metrics.Observe("import", err)
		return csvcodec.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.Observe("import", nil)
	metrics.ImportedRows.WithLabelValues(metrics.ResultOK).Add(float64(len(res.Clients)))
	metrics.ImportedRows.WithLabelValues("skipped").Add(float64(res.Skipped))

	m.log.Info("csv imported", slog.Int("clients", len(res.Clients)), slog.Int("skipped", res.Skipped))
	return res, nil
}

// ExportCSV выгружает всех клиентов в CSV.
func (m *Manager) ExportCSV() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return csvcodec.Export(m.clients)
}

// ExportBackup возвращает полную копию состояния.
func (m *Manager) ExportBackup() models.Backup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Backup{Clients: m.snapshot(), Settings: m.settings}
}

// RestoreBackup заменяет клиентов и настройки содержимым резервной копии.
// Если настройки удалось сохранить, а клиентов нет, настройки возвращаются к прежним.
func (m *Manager) RestoreBackup(ctx context.Context, b models.Backup, confirm bool) error {
	const op = "manager.RestoreBackup"
	if b.Clients == nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidBackup)
	}
	if !confirm {
		return fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
	}

	clients := make([]models.Client, len(b.Clients))
	for i, c := range b.Clients {
		clients[i] = ledger.Normalize(c.Clone())
	}
	settings := b.Settings.WithDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.settings
	if err := m.flushSettings(ctx, settings); err != nil {
		metrics.Observe("restore", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.commitClients(ctx, clients); err != nil {
		if rbErr := m.flushSettings(ctx, prev); rbErr != nil {
			m.log.Error("failed to roll back settings after restore", sl.Err(rbErr))
		}
		metrics.Observe("restore", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	m.settings = settings
	metrics.Observe("restore", nil)

	m.log.Info("backup restored", slog.Int("clients", len(clients)))
	return nil
}
