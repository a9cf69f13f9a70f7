// Package dates содержит чистую календарную арифметику для сроков подписок:
// разбор дат, прибавление календарных месяцев, разницу в днях и форматирование.
//
// Все даты хранятся в формате ISO (2006-01-02), а для отображения используется
// формат 02/01/2006. Смешивать эти форматы внутри бизнес-логики нельзя.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout: формат хранения календарной даты.
	ISOLayout = "2006-01-02"
	// LocalizedLayout: формат отображения даты пользователю.
	LocalizedLayout = "02/01/2006"
	// Placeholder возвращается вместо пустой даты при отображении.
	Placeholder = "-"

	localNoon = 12
)

// ErrEmptyDate возвращается при попытке разобрать пустую строку.
var ErrEmptyDate = errors.New("empty date")

// ParseLocalDate разбирает дату YYYY-MM-DD и возвращает момент в полдень
// указанной зоны. Полдень, а не полночь, выбран для того, чтобы после
// нормализации дата не сдвигалась на предыдущий день в зонах с отрицательным смещением.
func ParseLocalDate(s string, loc *time.Location) (time.Time, error) {
	const op = "dates.ParseLocalDate"
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrEmptyDate)
	}
	if loc == nil {
		loc = time.Local
	}
	// Допускаем полный timestamp: берём только календарную часть.
	if len(s) > len(ISOLayout) && s[len(ISOLayout)] == 'T' {
		s = s[:len(ISOLayout)]
	}
	d, err := time.ParseInLocation(ISOLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), localNoon, 0, 0, 0, loc), nil
}

// ParseTimestamp разбирает момент времени: RFC3339, локальный timestamp без зоны
// (2006-01-02T15:04:05) или календарную дату.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	const op = "dates.ParseTimestamp"
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrEmptyDate)
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return ParseLocalDate(s, loc)
}

// AddCalendarMonths прибавляет n календарных месяцев. День месяца сохраняется,
// а если в целевом месяце такого дня нет, берётся последний день месяца
// (31 января + 1 месяц = 28 или 29 февраля).
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay возвращает полночь того же календарного дня.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween возвращает количество календарных дней от today до target.
// Положительное значение означает, что target в будущем, отрицательное означает прошлое.
// Обе даты нормализуются к полуночи; переходы на летнее время не влияют на результат.
func DaysBetween(today, target time.Time) int {
	ty, tm, td := today.Date()
	gy, gm, gd := target.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(gy, gm, gd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// FormatLocalized форматирует дату как DD/MM/YYYY.
func FormatLocalized(t time.Time) string {
	return t.Format(LocalizedLayout)
}

// ToISODate форматирует дату как YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(ISOLayout)
}

// FormatISOLocalized переводит ISO-дату в формат отображения.
// Для пустой строки возвращает "-", для некорректной исходную строку.
func FormatISOLocalized(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	d, err := ParseLocalDate(s, time.UTC)
	if err != nil {
		return s
	}
	return FormatLocalized(d)
}

// CalculateExpiration вычисляет дату окончания цикла: start + months календарных месяцев.
func CalculateExpiration(start string, months int, loc *time.Location) (string, error) {
	const op = "dates.CalculateExpiration"
	d, err := ParseLocalDate(start, loc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return ToISODate(AddCalendarMonths(d, months)), nil
}

// CalculateExpirationDays вычисляет дату окончания для тестовых периодов в днях.
func CalculateExpirationDays(start string, days int, loc *time.Location) (string, error) {
	const op = "dates.CalculateExpirationDays"
	d, err := ParseLocalDate(start, loc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return ToISODate(d.AddDate(0, 0, days)), nil
}

// FormatDateTimeLocalized форматирует момент времени относительно now:
// "Hoje às 15:04", "Ontem às 15:04" или "02/01/2006 às 15:04".
func FormatDateTimeLocalized(t, now time.Time) string {
	t = t.In(now.Location())
	var prefix string
	switch DaysBetween(now, t) {
	case 0:
		prefix = "Hoje às "
	case -1:
		prefix = "Ontem às "
	default:
		prefix = FormatLocalized(t) + " às "
	}
	return prefix + t.Format("15:04")
}

// DaysSince возвращает число дней, прошедших с даты s до now. Для некорректной даты возвращает 0.
func DaysSince(s string, now time.Time) int {
	d, err := ParseTimestamp(s, now.Location())
	if err != nil {
		return 0
	}
	return DaysBetween(d, now)
}

// StartOfWeek возвращает полночь воскресенья той недели, в которую попадает t.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// SameMonth сообщает, относятся ли a и b к одному календарному месяцу.
func SameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
