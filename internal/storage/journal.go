package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ReminderJournalKey: ключ журнала опубликованных напоминаний.
const ReminderJournalKey = "tv_manager_reminders_v1"

// LoadReminderJournal возвращает последнее опубликованное напоминание для каждого клиента.
// Если журнала нет, возвращается пустая карта.
func (s *Store) LoadReminderJournal(ctx context.Context) (map[string]string, error) {
	const op = "storage.LoadReminderJournal"
	journal := map[string]string{}
	data, err := s.backend.Get(ctx, ReminderJournalKey)
	if errors.Is(err, ErrNotFound) {
		return journal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(data, &journal); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if journal == nil {
		journal = map[string]string{}
	}
	return journal, nil
}

// SaveReminderJournal перезаписывает журнал.
func (s *Store) SaveReminderJournal(ctx context.Context, journal map[string]string) error {
	const op = "storage.SaveReminderJournal"
	if journal == nil {
		journal = map[string]string{}
	}
	data, err := json.Marshal(journal)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.backend.Put(ctx, ReminderJournalKey, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
