package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// ErrInvalidDuration возвращается, если длительность цикла не положительна.
var ErrInvalidDuration = errors.New("duration must be a positive number of months")

// ErrNegativeValue возвращается для отрицательной суммы оплаты.
var ErrNegativeValue = errors.New("value must not be negative")

// NewClient создаёт клиента со статусом ACTIVE и первой записью в истории оплат.
//
// Дата окончания считается от даты начала доступа, а запись об оплате
// датируется днём фактического получения платежа (registrationDate).
// При TrialDays > 0 первый цикл короче и считается в днях.
func NewClient(in models.ClientInput, now time.Time) (models.Client, error) {
	const op = "ledger.NewClient"
	if in.DurationMonths <= 0 {
		return models.Client{}, fmt.Errorf("%s: %w", op, ErrInvalidDuration)
	}
	if in.Value.IsNegative() {
		return models.Client{}, fmt.Errorf("%s: %w", op, ErrNegativeValue)
	}

	loc := now.Location()
	today := dates.ToISODate(now)
	start := in.StartDate
	if start == "" {
		start = today
	}
	registration := in.RegistrationDate
	if registration == "" {
		registration = today
	}

	if in.TrialDays < 0 {
		return models.Client{}, fmt.Errorf("%s: %w", op, ErrInvalidDuration)
	}
	var (
		expiration string
		err        error
	)
	if in.TrialDays > 0 {
		expiration, err = dates.CalculateExpirationDays(start, in.TrialDays, loc)
	} else {
		expiration, err = dates.CalculateExpiration(start, in.DurationMonths, loc)
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	paidAt, err := dates.ParseLocalDate(registration, loc)
	if err != nil {
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	c := models.Client{
		ID:               uuid.NewString(),
		Name:             in.Name,
		User:             in.User,
		WhatsApp:         in.WhatsApp,
		Value:            in.Value,
		DurationMonths:   in.DurationMonths,
		StartDate:        start,
		ExpirationDate:   expiration,
		RegistrationDate: registration,
		IsActive:         true,
		RenewalHistory: []models.RenewalRecord{{
			ID:             uuid.NewString(),
			CreatedAt:      paidAt,
			Value:          in.Value,
			DurationMonths: in.DurationMonths,
			StartDate:      start,
			EndDate:        expiration,
		}},
	}
	c.TotalPaidValue = c.HistoryTotal()
	return c, nil
}

// Renew продлевает подписку клиента.
//
// Если цикл уже закончился, новый цикл отсчитывается от сегодняшнего дня, иначе
// от текущей даты окончания, так что досрочное продление сохраняет привязку к циклу.
// Продление всегда активирует клиента и добавляет запись в историю.
func Renew(c models.Client, in models.RenewInput, now time.Time) (models.Client, error) {
	const op = "ledger.Renew"
	if in.DurationMonths <= 0 {
		return c, fmt.Errorf("%s: %w", op, ErrInvalidDuration)
	}
	if in.Value.IsNegative() {
		return c, fmt.Errorf("%s: %w", op, ErrNegativeValue)
	}

	baseline := c.ExpirationDate
	if IsOverdue(c, now) {
		baseline = dates.ToISODate(now)
	}
	expiration, err := dates.CalculateExpiration(baseline, in.DurationMonths, now.Location())
	if err != nil {
		return c, fmt.Errorf("%s: %w", op, err)
	}

	out := c.Clone()
	out.ExpirationDate = expiration
	out.DurationMonths = in.DurationMonths
	out.IsActive = true
	out.RenewalHistory = append(out.RenewalHistory, models.RenewalRecord{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		Value:          in.Value,
		DurationMonths: in.DurationMonths,
		StartDate:      baseline,
		EndDate:        expiration,
	})
	out.TotalPaidValue = out.HistoryTotal()
	return out, nil
}

// ApplyUpdate меняет только контактные данные и стоимость плана.
func ApplyUpdate(c models.Client, upd models.ClientUpdate) (models.Client, error) {
	if upd.Value.IsNegative() {
		return c, fmt.Errorf("ledger.ApplyUpdate: %w", ErrNegativeValue)
	}
	out := c.Clone()
	out.Name = upd.Name
	out.User = upd.User
	out.WhatsApp = upd.WhatsApp
	out.Value = upd.Value
	return out, nil
}

// ToggleActive архивирует активного клиента или возвращает архивированного.
// Реактивация не зависит от даты окончания.
func ToggleActive(c models.Client) models.Client {
	out := c.Clone()
	out.IsActive = !c.IsActive
	return out
}

// MarkMessageSent запоминает момент отправки сообщения клиенту.
func MarkMessageSent(c models.Client, now time.Time) models.Client {
	out := c.Clone()
	out.LastMessageDate = &now
	return out
}

// Normalize приводит запись к каноническому виду: сумма оплат пересчитывается
// по истории, пустая длительность заменяется одним месяцем.
func Normalize(c models.Client) models.Client {
	if c.DurationMonths <= 0 {
		c.DurationMonths = 1
	}
	c.TotalPaidValue = c.HistoryTotal()
	return c
}
