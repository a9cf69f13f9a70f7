package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Granularity: период группировки истории оплат.
type Granularity string

const (
	// ByDay группирует по календарному дню.
	ByDay Granularity = "day"
	// ByWeek группирует по неделе, начинающейся в воскресенье.
	ByWeek Granularity = "week"
	// ByMonth группирует по календарному месяцу.
	ByMonth Granularity = "month"
)

// ParseGranularity разбирает значение фильтра. Пустая строка означает группировку по дням.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return ByDay, nil
	case ByDay, ByWeek, ByMonth:
		return g, nil
	default:
		return "", fmt.Errorf("ledger.ParseGranularity: unknown granularity %q", s)
	}
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Transaction: запись истории продлений с именем клиента-владельца.
type Transaction struct {
	models.RenewalRecord
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
}

// Group: оплаты за один период.
type Group struct {
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	Sublabel     string          `json:"sublabel"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Transactions []Transaction   `json:"transactions"`
}

// Flatten собирает истории всех клиентов в один список транзакций
// в порядке клиентов и порядке добавления записей.
func Flatten(clients []models.Client) []Transaction {
	var out []Transaction
	for _, c := range clients {
		for _, r := range c.RenewalHistory {
			out = append(out, Transaction{RenewalRecord: r, ClientID: c.ID, ClientName: c.Name})
		}
	}
	return out
}

// GroupTransactions группирует транзакции по периоду granularity.
// Группы отсортированы от последнего периода к первому, транзакции внутри
// группы от новых к старым. Даты считаются в зоне now.
func GroupTransactions(txs []Transaction, g Granularity, now time.Time) []Group {
	loc := now.Location()
	index := make(map[string]*Group)
	var keys []string

	for _, tx := range txs {
		created := tx.CreatedAt.In(loc)
		key, label, sublabel := groupKey(created, g, now)
		grp, ok := index[key]
		if !ok {
			grp = &Group{Key: key, Label: label, Sublabel: sublabel, Total: decimal.Zero}
			index[key] = grp
			keys = append(keys, key)
		}
		grp.Total = grp.Total.Add(tx.Value)
		grp.Count++
		grp.Transactions = append(grp.Transactions, tx)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		grp := index[k]
		sort.SliceStable(grp.Transactions, func(i, j int) bool {
			return grp.Transactions[i].CreatedAt.After(grp.Transactions[j].CreatedAt)
		})
		out = append(out, *grp)
	}
	return out
}

func groupKey(created time.Time, g Granularity, now time.Time) (key, label, sublabel string) {
	switch g {
	case ByWeek:
		start := dates.StartOfWeek(created)
		end := start.AddDate(0, 0, 6)
		key = dates.ToISODate(start)
		label = "Semana de " + start.Format("02/01")
		sublabel = "Até " + end.Format("02/01")
	case ByMonth:
		key = created.Format("2006-01")
		label = fmt.Sprintf("%s %d", monthNames[created.Month()-1], created.Year())
		if dates.SameMonth(now, created) {
			sublabel = "Mês Atual"
		}
	default:
		key = dates.ToISODate(created)
		label = dates.FormatLocalized(created)
		if dates.DaysBetween(now, created) == 0 {
			sublabel = "Hoje"
		}
	}
	return key, label, sublabel
}

// MaxGroupTotal возвращает наибольшую сумму группы, но не меньше единицы.
// Используется как масштаб для визуальных полос.
func MaxGroupTotal(groups []Group) decimal.Decimal {
	top := decimal.NewFromInt(1)
	for _, g := range groups {
		if g.Total.GreaterThan(top) {
			top = g.Total
		}
	}
	return top
}

// CurrentMonthTotal суммирует транзакции текущего месяца независимо от выбранной группировки.
func CurrentMonthTotal(txs []Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if dates.SameMonth(now, tx.CreatedAt) {
			total = total.Add(tx.Value)
		}
	}
	return total
}

// TotalRevenue суммирует все транзакции.
func TotalRevenue(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Value)
	}
	return total
}

// RevenueSince суммирует транзакции, созданные не раньше since.
func RevenueSince(txs []Transaction, since time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !tx.CreatedAt.Before(since) {
			total = total.Add(tx.Value)
		}
	}
	return total
}

// TotalMonths суммирует длительности всех оплаченных циклов.
func TotalMonths(txs []Transaction) int {
	var n int
	for _, tx := range txs {
		n += tx.DurationMonths
	}
	return n
}

// Forecast: ожидаемая выручка: сумма стоимости планов неархивированных клиентов,
// у которых дата окончания попадает в окно ±30 дней от today.
func Forecast(clients []models.Client, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, c := range clients {
		if Classify(c, today) == models.StatusInactive {
			continue
		}
		diff, ok := DaysLeft(c, today)
		if ok && diff >= -forecastWindowDays && diff <= forecastWindowDays {
			total = total.Add(c.Value)
		}
	}
	return total
}

const forecastWindowDays = 30
