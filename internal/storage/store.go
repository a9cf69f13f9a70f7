// Package storage сохраняет состояние менеджера в виде двух JSON-документов
// под фиксированными ключами поверх простого key-value бэкенда.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Ключи, под которыми хранятся документы.
const (
	ClientsKey  = "tv_manager_final_v1"
	SettingsKey = "tv_manager_settings_final_v1"
)

// ErrNotFound возвращается бэкендом, если ключа нет.
var ErrNotFound = errors.New("key not found")

// Backend: key-value хранилище байтовых значений.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Store сериализует клиентов и настройки в JSON и хранит их в бэкенде.
type Store struct {
	backend Backend
}

// New оборачивает бэкенд.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// LoadClients возвращает сохранённых клиентов. Если документа нет, возвращается пустой список.
func (s *Store) LoadClients(ctx context.Context) ([]models.Client, error) {
	const op = "storage.LoadClients"
	data, err := s.backend.Get(ctx, ClientsKey)
	if errors.Is(err, ErrNotFound) {
		return []models.Client{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clients := []models.Client{}
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, nil
}

// SaveClients перезаписывает документ со списком клиентов.
func (s *Store) SaveClients(ctx context.Context, clients []models.Client) error {
	const op = "storage.SaveClients"
	if clients == nil {
		clients = []models.Client{}
	}
	data, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.backend.Put(ctx, ClientsKey, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadSettings возвращает сохранённые настройки, отсутствующие шаблоны заменяются стандартными.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	const op = "storage.LoadSettings"
	data, err := s.backend.Get(ctx, SettingsKey)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings.WithDefaults(), nil
}

// SaveSettings перезаписывает документ с настройками.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	const op = "storage.SaveSettings"
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.backend.Put(ctx, SettingsKey, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает бэкенд.
func (s *Store) Close() error {
	return s.backend.Close()
}
