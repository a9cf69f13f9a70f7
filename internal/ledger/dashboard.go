package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// dueSoonDays: сколько дней до окончания клиент показывается в списке по умолчанию.
const dueSoonDays = 3

// Summary: показатели дашборда.
type Summary struct {
	Active            int             `json:"active"`
	Expired           int             `json:"expired"`
	MessageSent       int             `json:"messageSent"`
	Inactive          int             `json:"inactive"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	Last30DaysRevenue decimal.Decimal `json:"last30DaysRevenue"`
	CurrentMonthTotal decimal.Decimal `json:"currentMonthTotal"`
	TotalMonths       int             `json:"totalMonths"`
	Forecast          decimal.Decimal `json:"forecast"`
}

// Summarize считает показатели дашборда на момент now.
func Summarize(clients []models.Client, now time.Time) Summary {
	var s Summary
	for _, c := range clients {
		switch Classify(c, now) {
		case models.StatusActive:
			s.Active++
		case models.StatusExpired:
			s.Expired++
		case models.StatusMessageSent:
			s.MessageSent++
		case models.StatusInactive:
			s.Inactive++
		}
	}

	txs := Flatten(clients)
	s.TotalRevenue = TotalRevenue(txs)
	s.Last30DaysRevenue = RevenueSince(txs, now.AddDate(0, 0, -30))
	s.CurrentMonthTotal = CurrentMonthTotal(txs, now)
	s.TotalMonths = TotalMonths(txs)
	s.Forecast = Forecast(clients, now)
	return s
}

// HistoryView: сгруппированная история оплат для экрана финансов.
type HistoryView struct {
	Granularity       Granularity     `json:"granularity"`
	CurrentMonthTotal decimal.Decimal `json:"currentMonthTotal"`
	MaxGroupTotal     decimal.Decimal `json:"maxGroupTotal"`
	Groups            []Group         `json:"groups"`
}

// BuildHistory строит представление истории оплат для выбранной группировки.
func BuildHistory(clients []models.Client, g Granularity, now time.Time) HistoryView {
	txs := Flatten(clients)
	groups := GroupTransactions(txs, g, now)
	return HistoryView{
		Granularity:       g,
		CurrentMonthTotal: CurrentMonthTotal(txs, now),
		MaxGroupTotal:     MaxGroupTotal(groups),
		Groups:            groups,
	}
}

// Filter отбирает клиентов для списка.
//
// При непустом запросе возвращаются совпадения по имени или логину без учёта регистра.
// Без запроса и без showAll показываются только активные клиенты, у которых до
// окончания осталось не больше трёх дней (включая просроченных).
// Результат отсортирован по числу дней до окончания.
func Filter(clients []models.Client, query string, showAll bool, today time.Time) []models.ClientView {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.ClientView
	for _, c := range clients {
		v := View(c, today)
		switch {
		case q != "":
			if !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.User), q) {
				continue
			}
		case !showAll:
			if !c.IsActive || v.DaysLeft > dueSoonDays {
				continue
			}
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft < out[j].DaysLeft
	})
	return out
}
