// Package models содержит доменные структуры менеджера подписок: клиента,
// историю продлений, настройки шаблонов сообщений и резервную копию,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
)

func init() {
	// Суммы сериализуются числами, как в резервных копиях веб-версии.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status: производный статус клиента. Никогда не хранится, всегда вычисляется заново.
type Status string

const (
	// StatusActive: оплаченный цикл ещё не закончился.
	StatusActive Status = "ACTIVE"
	// StatusExpired: цикл закончился, сообщение после окончания не отправлялось.
	StatusExpired Status = "EXPIRED"
	// StatusMessageSent: цикл закончился, клиенту уже написали.
	StatusMessageSent Status = "MESSAGE_SENT"
	// StatusInactive: клиент архивирован вручную.
	StatusInactive Status = "INACTIVE"
)

// RenewalRecord: одна оплата или продление. После создания не изменяется.
type RenewalRecord struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"createdAt"`
	Value          decimal.Decimal `json:"value"`
	DurationMonths int             `json:"durationMonths"`
	StartDate      string          `json:"startDate,omitempty"`
	EndDate        string          `json:"endDate,omitempty"`
}

// UnmarshalJSON принимает createdAt и в RFC3339, и в виде локального timestamp
// без зоны (2006-01-02T12:00:00) или календарной даты, как в копиях веб-версии.
func (r *RenewalRecord) UnmarshalJSON(data []byte) error {
	type alias RenewalRecord
	aux := struct {
		*alias
		CreatedAt string `json:"createdAt"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.CreatedAt = time.Time{}
	if aux.CreatedAt == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, aux.CreatedAt); err == nil {
		r.CreatedAt = t
		return nil
	}
	t, err := dates.ParseTimestamp(aux.CreatedAt, time.Local)
	if err != nil {
		return fmt.Errorf("renewal %s: createdAt: %w", r.ID, err)
	}
	r.CreatedAt = t
	return nil
}

// Client: запись о подписке одного клиента.
// Даты без времени хранятся строками в формате YYYY-MM-DD.
type Client struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	User             string          `json:"user"`
	WhatsApp         string          `json:"whatsapp"`
	Value            decimal.Decimal `json:"value"`
	DurationMonths   int             `json:"durationMonths"`
	StartDate        string          `json:"startDate"`
	ExpirationDate   string          `json:"expirationDate"`
	RegistrationDate string          `json:"registrationDate,omitempty"`
	TotalPaidValue   decimal.Decimal `json:"totalPaidValue"`
	LastMessageDate  *time.Time      `json:"lastMessageDate,omitempty"`
	IsActive         bool            `json:"isActive"`
	RenewalHistory   []RenewalRecord `json:"renewalHistory"`
}

// UnmarshalJSON считает клиента активным, если поле isActive отсутствует.
func (c *Client) UnmarshalJSON(data []byte) error {
	type alias Client
	a := alias{IsActive: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Client(a)
	return nil
}

// HistoryTotal возвращает сумму всех оплат из истории продлений.
func (c *Client) HistoryTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.RenewalHistory {
		total = total.Add(r.Value)
	}
	return total
}

// Clone возвращает копию клиента, не разделяющую с оригиналом историю и указатели.
func (c Client) Clone() Client {
	out := c
	if c.RenewalHistory != nil {
		out.RenewalHistory = make([]RenewalRecord, len(c.RenewalHistory))
		copy(out.RenewalHistory, c.RenewalHistory)
	}
	if c.LastMessageDate != nil {
		ts := *c.LastMessageDate
		out.LastMessageDate = &ts
	}
	return out
}

// ClientView: клиент вместе с вычисленными на текущую дату полями.
type ClientView struct {
	Client
	Status   Status `json:"status"`
	DaysLeft int    `json:"daysLeft"`
}

// ClientInput используется для приёма данных нового клиента из JSON-запроса.
// Если даты не переданы, используется текущий день. TrialDays задаёт тестовый
// период: первый цикл длится указанное число дней вместо DurationMonths месяцев.
type ClientInput struct {
	Name             string          `json:"name" validate:"required"`
	User             string          `json:"user"`
	WhatsApp         string          `json:"whatsapp" validate:"required"`
	Value            decimal.Decimal `json:"value"`
	DurationMonths   int             `json:"durationMonths" validate:"required,gt=0"`
	StartDate        string          `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	RegistrationDate string          `json:"registrationDate" validate:"omitempty,datetime=2006-01-02"`
	TrialDays        int             `json:"trialDays" validate:"gte=0"`
}

// ClientUpdate: редактируемые поля клиента. Даты и история через него не меняются.
type ClientUpdate struct {
	Name     string          `json:"name" validate:"required"`
	User     string          `json:"user"`
	WhatsApp string          `json:"whatsapp" validate:"required"`
	Value    decimal.Decimal `json:"value"`
}

// RenewInput: параметры продления: длительность цикла и фактически оплаченная сумма.
type RenewInput struct {
	DurationMonths int             `json:"durationMonths" validate:"required,gt=0"`
	Value          decimal.Decimal `json:"value"`
}
