package models

import "time"

// Шаблоны по умолчанию, с которыми приложение стартует без сохранённых настроек.
const (
	DefaultTemplateUpcoming = "Olá {{nome}}! Tudo bem?\n\nIdentificamos que sua assinatura TV Online está para vencer no dia {{vencimento}}.\n\nValor: {{valor}}\nUsuário: {{usuario}}"
	DefaultTemplateExpired  = "Olá {{nome}}! Notamos que sua assinatura venceu no dia {{vencimento}}.\n\nGostaria de renovar?"
)

// Settings хранит шаблоны сообщений для WhatsApp.
// Поддерживаются подстановки {{nome}}, {{usuario}}, {{vencimento}} и {{valor}}.
type Settings struct {
	MessageTemplateUpcoming string `json:"messageTemplateUpcoming"`
	MessageTemplateExpired  string `json:"messageTemplateExpired"`
}

// DefaultSettings возвращает настройки со стандартными шаблонами.
func DefaultSettings() Settings {
	return Settings{
		MessageTemplateUpcoming: DefaultTemplateUpcoming,
		MessageTemplateExpired:  DefaultTemplateExpired,
	}
}

// WithDefaults подставляет стандартный шаблон вместо пустого.
func (s Settings) WithDefaults() Settings {
	if s.MessageTemplateUpcoming == "" {
		s.MessageTemplateUpcoming = DefaultTemplateUpcoming
	}
	if s.MessageTemplateExpired == "" {
		s.MessageTemplateExpired = DefaultTemplateExpired
	}
	return s
}

// Backup: полная резервная копия в формате JSON.
type Backup struct {
	Clients  []Client `json:"clients"`
	Settings Settings `json:"settings"`
}

// Outreach: готовое к отправке сообщение клиенту.
type Outreach struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Link     string `json:"link"`
}

// Reminder: напоминание, которое планировщик публикует в очередь уведомлений.
type Reminder struct {
	Outreach
	WhatsApp         string     `json:"whatsapp"`
	ExpirationDate   string     `json:"expirationDate"`
	DaysLeft         int        `json:"daysLeft"`
	RegistrationDate string     `json:"registrationDate,omitempty"`
	LastMessageDate  *time.Time `json:"lastMessageDate,omitempty"`
}
