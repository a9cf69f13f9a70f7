package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestCalculateExpiration_TableTests(t *testing.T) {
	loc := saoPaulo(t)

	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{name: "leap year clamp", start: "2024-01-31", months: 1, want: "2024-02-29"},
		{name: "non leap year clamp", start: "2023-01-31", months: 1, want: "2023-02-28"},
		{name: "regular month", start: "2024-03-15", months: 1, want: "2024-04-15"},
		{name: "year rollover", start: "2024-11-30", months: 3, want: "2025-02-28"},
		{name: "twelve months", start: "2024-02-29", months: 12, want: "2025-02-28"},
		{name: "thirty first to thirtieth", start: "2024-03-31", months: 1, want: "2024-04-30"},
		{name: "zero months", start: "2024-05-10", months: 0, want: "2024-05-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateExpiration(tt.start, tt.months, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateExpiration_InvalidDate(t *testing.T) {
	_, err := CalculateExpiration("", 1, time.UTC)
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, err = CalculateExpiration("31/01/2024", 1, time.UTC)
	assert.Error(t, err)
}

func TestCalculateExpirationDays(t *testing.T) {
	got, err := CalculateExpirationDays("2024-02-25", 7, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", got)
}

func TestParseLocalDate_KeepsCalendarDay(t *testing.T) {
	loc := saoPaulo(t)

	d, err := ParseLocalDate("2024-06-01", loc)
	require.NoError(t, err)
	assert.Equal(t, 12, d.Hour())
	assert.Equal(t, "2024-06-01", ToISODate(StartOfDay(d)))
	assert.Equal(t, "2024-06-01", ToISODate(d.UTC()))

	d, err = ParseLocalDate("2024-06-01T23:59:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", ToISODate(d))
}

func TestDaysBetween(t *testing.T) {
	loc := saoPaulo(t)
	a := time.Date(2024, 1, 10, 8, 30, 0, 0, loc)
	b := time.Date(2024, 1, 15, 23, 0, 0, 0, loc)

	assert.Equal(t, 5, DaysBetween(a, b))
	assert.Equal(t, -5, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 0, DaysBetween(a, time.Date(2024, 1, 10, 23, 59, 0, 0, loc)))
}

func TestDaysBetween_Antisymmetric(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, ny)
	for i := 0; i < 400; i += 7 {
		other := base.AddDate(0, 0, i)
		assert.Equal(t, -DaysBetween(base, other), DaysBetween(other, base), "offset %d", i)
		assert.Equal(t, i, DaysBetween(base, other), "offset %d across DST", i)
	}
}

func TestFormatting(t *testing.T) {
	d := time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "09/02/2024", FormatLocalized(d))
	assert.Equal(t, "2024-02-09", ToISODate(d))

	assert.Equal(t, "09/02/2024", FormatISOLocalized("2024-02-09"))
	assert.Equal(t, "-", FormatISOLocalized(""))
	assert.Equal(t, "not-a-date", FormatISOLocalized("not-a-date"))
}

func TestFormatDateTimeLocalized(t *testing.T) {
	now := time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, "Hoje às 09:15", FormatDateTimeLocalized(time.Date(2024, 5, 20, 9, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "Ontem às 22:40", FormatDateTimeLocalized(time.Date(2024, 5, 19, 22, 40, 0, 0, time.UTC), now))
	assert.Equal(t, "01/05/2024 às 07:05", FormatDateTimeLocalized(time.Date(2024, 5, 1, 7, 5, 0, 0, time.UTC), now))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysSince("2024-05-10", now))
	assert.Equal(t, 1, DaysSince("2024-05-19T23:00:00Z", now))
	assert.Equal(t, 0, DaysSince("garbage", now))
}

func TestStartOfWeek_Sunday(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{name: "sunday itself", day: time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC), want: "2024-06-02"},
		{name: "wednesday", day: time.Date(2024, 6, 5, 1, 0, 0, 0, time.UTC), want: "2024-06-02"},
		{name: "saturday", day: time.Date(2024, 6, 8, 23, 0, 0, 0, time.UTC), want: "2024-06-02"},
		{name: "across month", day: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), want: "2024-05-26"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToISODate(StartOfWeek(tt.day)))
		})
	}
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameMonth(a, time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, SameMonth(a, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, SameMonth(a, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestParseTimestamp(t *testing.T) {
	loc := saoPaulo(t)

	ts, err := ParseTimestamp("2024-03-01T12:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 12, ts.Hour())
	assert.Equal(t, loc, ts.Location())

	ts, err = ParseTimestamp("2024-03-01T02:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", ToISODate(ts))

	_, err = ParseTimestamp("", loc)
	assert.ErrorIs(t, err, ErrEmptyDate)
}
