// Package ledger реализует бизнес-правила учёта подписок: вычисление статуса
// клиента, продление, агрегацию истории оплат и показатели для дашборда.
//
// Все функции пакета чистые: текущий момент передаётся аргументом,
// хранение и отображение результатов остаются вызывающему коду.
package ledger

import (
	"time"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// DaysLeft возвращает число дней до окончания цикла клиента относительно today.
// Второе значение false, если дату окончания разобрать не удалось.
func DaysLeft(c models.Client, today time.Time) (int, bool) {
	exp, err := dates.ParseLocalDate(c.ExpirationDate, today.Location())
	if err != nil {
		return 0, false
	}
	return dates.DaysBetween(today, exp), true
}

// IsOverdue сообщает, закончился ли оплаченный цикл клиента. Клиент с
// нераспознанной датой окончания считается просроченным.
func IsOverdue(c models.Client, today time.Time) bool {
	diff, ok := DaysLeft(c, today)
	return !ok || diff < 0
}

// Classify вычисляет статус клиента на дату today.
//
// Архивированный клиент всегда INACTIVE. Если цикл ещё не закончился (в том числе
// заканчивается сегодня), статус ACTIVE. Просроченный клиент получает MESSAGE_SENT, если
// последнее сообщение отправлено в день окончания или позже, иначе EXPIRED.
func Classify(c models.Client, today time.Time) models.Status {
	if !c.IsActive {
		return models.StatusInactive
	}
	if !IsOverdue(c, today) {
		return models.StatusActive
	}
	if c.LastMessageDate != nil {
		msgDay := dates.ToISODate(c.LastMessageDate.In(today.Location()))
		// Строки ISO сравниваются лексикографически так же, как даты.
		if c.ExpirationDate != "" && msgDay >= c.ExpirationDate {
			return models.StatusMessageSent
		}
	}
	return models.StatusExpired
}

// View дополняет клиента вычисленными статусом и остатком дней.
func View(c models.Client, today time.Time) models.ClientView {
	diff, _ := DaysLeft(c, today)
	return models.ClientView{
		Client:   c,
		Status:   Classify(c, today),
		DaysLeft: diff,
	}
}
