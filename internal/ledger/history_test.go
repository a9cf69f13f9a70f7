package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

func record(id string, at time.Time, value int64, months int) models.RenewalRecord {
	return models.RenewalRecord{ID: id, CreatedAt: at, Value: decimal.NewFromInt(value), DurationMonths: months}
}

func TestGroupTransactions_SameMonthBucket(t *testing.T) {
	clients := []models.Client{
		{ID: "a", Name: "Ana", RenewalHistory: []models.RenewalRecord{
			record("r1", time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), 10, 1),
			record("r2", time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC), 20, 1),
		}},
		{ID: "b", Name: "Bruno", RenewalHistory: []models.RenewalRecord{
			record("r3", time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC), 30, 3),
		}},
	}

	groups := GroupTransactions(Flatten(clients), ByMonth, today)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "2024-06", g.Key)
	assert.Equal(t, "junho 2024", g.Label)
	assert.Equal(t, "Mês Atual", g.Sublabel)
	assert.True(t, g.Total.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 3, g.Count)

	require.Len(t, g.Transactions, 3)
	assert.Equal(t, "r2", g.Transactions[0].ID)
	assert.Equal(t, "r3", g.Transactions[1].ID)
	assert.Equal(t, "Bruno", g.Transactions[1].ClientName)
	assert.Equal(t, "r1", g.Transactions[2].ID)
}

func TestGroupTransactions_ByDay(t *testing.T) {
	txs := Flatten([]models.Client{{Name: "Ana", RenewalHistory: []models.RenewalRecord{
		record("r1", time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC), 10, 1),
		record("r2", time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC), 15, 1),
		record("r3", time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC), 5, 1),
	}}})

	groups := GroupTransactions(txs, ByDay, today)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-06-15", groups[0].Key)
	assert.Equal(t, "15/06/2024", groups[0].Label)
	assert.Equal(t, "Hoje", groups[0].Sublabel)
	assert.True(t, groups[0].Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "r3", groups[0].Transactions[0].ID)

	assert.Equal(t, "2024-06-14", groups[1].Key)
	assert.Empty(t, groups[1].Sublabel)
}

func TestGroupTransactions_ByWeekStartsSunday(t *testing.T) {
	txs := Flatten([]models.Client{{Name: "Ana", RenewalHistory: []models.RenewalRecord{
		// суббота 8 июня и воскресенье 9 июня попадают в разные недели
		record("sat", time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC), 10, 1),
		record("sun", time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC), 20, 1),
		record("wed", time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC), 30, 1),
	}}})

	groups := GroupTransactions(txs, ByWeek, today)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-06-09", groups[0].Key)
	assert.Equal(t, "Semana de 09/06", groups[0].Label)
	assert.Equal(t, "Até 15/06", groups[0].Sublabel)
	assert.Equal(t, 2, groups[0].Count)
	assert.True(t, groups[0].Total.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, "2024-06-02", groups[1].Key)
	assert.Equal(t, 1, groups[1].Count)
}

func TestGroupTransactions_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, loc)
	// 01:30 UTC 1 июня по местному времени ещё 31 мая
	txs := []Transaction{{RenewalRecord: record("r1", time.Date(2024, 6, 1, 1, 30, 0, 0, time.UTC), 10, 1)}}

	groups := GroupTransactions(txs, ByMonth, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "2024-05", groups[0].Key)
}

func TestGroupTransactions_Empty(t *testing.T) {
	groups := GroupTransactions(nil, ByMonth, today)
	assert.Empty(t, groups)
	assert.True(t, MaxGroupTotal(groups).Equal(decimal.NewFromInt(1)))
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, ByDay, g)

	g, err = ParseGranularity("Week")
	require.NoError(t, err)
	assert.Equal(t, ByWeek, g)

	_, err = ParseGranularity("year")
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	txs := Flatten([]models.Client{{Name: "Ana", RenewalHistory: []models.RenewalRecord{
		record("old", time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC), 100, 6),
		record("may", time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC), 30, 1),
		record("jun", time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC), 40, 2),
	}}})

	assert.True(t, TotalRevenue(txs).Equal(decimal.NewFromInt(170)))
	assert.True(t, CurrentMonthTotal(txs, today).Equal(decimal.NewFromInt(40)))
	assert.True(t, RevenueSince(txs, today.AddDate(0, 0, -30)).Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 9, TotalMonths(txs))
}

func TestForecast(t *testing.T) {
	clients := []models.Client{
		{IsActive: true, ExpirationDate: isoOffset(30), Value: decimal.NewFromInt(10)},
		{IsActive: true, ExpirationDate: isoOffset(-30), Value: decimal.NewFromInt(20)},
		{IsActive: true, ExpirationDate: isoOffset(31), Value: decimal.NewFromInt(1000)},
		{IsActive: true, ExpirationDate: isoOffset(-31), Value: decimal.NewFromInt(1000)},
		{IsActive: false, ExpirationDate: isoOffset(0), Value: decimal.NewFromInt(1000)},
		{IsActive: true, ExpirationDate: "", Value: decimal.NewFromInt(1000)},
	}

	assert.True(t, Forecast(clients, today).Equal(decimal.NewFromInt(30)))
}
