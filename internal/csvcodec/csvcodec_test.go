package csvcodec

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

var importTime = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func sampleClients() []models.Client {
	return []models.Client{
		{
			ID: "1718000000000", Name: "Silva, João", User: `o "Zé"`, WhatsApp: "11988887777",
			Value: decimal.RequireFromString("30.5"), DurationMonths: 1,
			StartDate: "2024-06-01", ExpirationDate: "2024-07-01",
			TotalPaidValue: decimal.RequireFromString("61"), IsActive: true,
		},
		{
			ID: "abc", Name: "Maria", User: "", WhatsApp: "21977776666",
			Value: decimal.NewFromInt(25), DurationMonths: 3,
			StartDate: "2024-03-10", ExpirationDate: "2024-06-10",
			TotalPaidValue: decimal.NewFromInt(25), IsActive: false,
		},
	}
}

func TestExport_Format(t *testing.T) {
	out, err := Export(sampleClients())
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, "\ufeff"), "export must start with BOM")

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(text, "\ufeff"), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Nome,Usuario,WhatsApp,Valor,Meses,Inicio,Vencimento,TotalPago,Ativo", lines[0])
	assert.Equal(t, `1718000000000,"Silva, João","o ""Zé""",11988887777,30.5,1,2024-06-01,2024-07-01,61,SIM`, lines[1])
	assert.Equal(t, `abc,Maria,,21977776666,25,3,2024-03-10,2024-06-10,25,NAO`, lines[2])
}

func TestExport_Empty(t *testing.T) {
	out, err := Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffID,Nome,Usuario,WhatsApp,Valor,Meses,Inicio,Vencimento,TotalPago,Ativo\n", string(out))
}

func TestRoundTrip(t *testing.T) {
	original := sampleClients()
	out, err := Export(original)
	require.NoError(t, err)

	res, err := Import(out, importTime)
	require.NoError(t, err)
	require.Len(t, res.Clients, len(original))
	assert.Zero(t, res.Skipped)

	for i, want := range original {
		got := res.Clients[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.User, got.User)
		assert.Equal(t, want.WhatsApp, got.WhatsApp)
		assert.True(t, want.Value.Equal(got.Value), "value of %s", want.ID)
		assert.Equal(t, want.DurationMonths, got.DurationMonths)
		assert.Equal(t, want.ExpirationDate, got.ExpirationDate)
		assert.Equal(t, want.IsActive, got.IsActive)
	}
}

func TestRoundTrip_FreeTextIsNormalized(t *testing.T) {
	clients := []models.Client{
		{ID: "1", Name: "Ana\nMaria", User: "ana\r\nm", WhatsApp: "119", Value: decimal.NewFromInt(10), DurationMonths: 1, IsActive: true},
		{ID: "2", Name: "Bob ", User: " bob", WhatsApp: "219\r", Value: decimal.NewFromInt(20), DurationMonths: 1, IsActive: true},
	}

	out, err := Export(clients)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 3, "every client must stay on a single line")

	res, err := Import(out, importTime)
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	require.Len(t, res.Clients, 2)

	assert.Equal(t, "1", res.Clients[0].ID)
	assert.Equal(t, "Ana Maria", res.Clients[0].Name)
	assert.Equal(t, "ana m", res.Clients[0].User)
	assert.Equal(t, "2", res.Clients[1].ID)
	assert.Equal(t, "Bob", res.Clients[1].Name)
	assert.Equal(t, "bob", res.Clients[1].User)
	assert.Equal(t, "219", res.Clients[1].WhatsApp)
}

func TestImport_SynthesizesHistory(t *testing.T) {
	data := "ID,Nome,Usuario,WhatsApp,Valor,Meses,Inicio,Vencimento,TotalPago,Ativo\n" +
		"x1,Ana,ana,119,40,2,2024-05-01,2024-07-01,999,SIM\n"

	res, err := Import([]byte(data), importTime)
	require.NoError(t, err)
	require.Len(t, res.Clients, 1)

	c := res.Clients[0]
	require.Len(t, c.RenewalHistory, 1)
	rec := c.RenewalHistory[0]
	assert.Equal(t, "imp-"+"1718445600000"+"1", rec.ID)
	assert.Equal(t, importTime, rec.CreatedAt)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 2, rec.DurationMonths)
	assert.Equal(t, "2024-05-01", rec.StartDate)
	assert.Equal(t, "2024-07-01", rec.EndDate)
	assert.True(t, c.TotalPaidValue.Equal(decimal.NewFromInt(40)), "total paid is derived from history")
}

func TestImport_Defaults(t *testing.T) {
	data := "\ufeffID,Nome,Valor,Meses,Ativo\r\n" +
		",,abc,,sim\r\n"

	res, err := Import([]byte(data), importTime)
	require.NoError(t, err)
	require.Len(t, res.Clients, 1)

	c := res.Clients[0]
	assert.Equal(t, "17184456000001", c.ID)
	assert.Equal(t, "Sem Nome", c.Name)
	assert.True(t, c.Value.IsZero())
	assert.Equal(t, 1, c.DurationMonths)
	assert.False(t, c.IsActive, "only exact SIM is truthy")
}

func TestImport_SkipsMalformedRows(t *testing.T) {
	data := "ID,Nome,WhatsApp,Valor\n" +
		`1,"Ana,11,30` + "\n" +
		`2,Bruno,12,20` + "\n" +
		"\n" +
		`3,Car"la,13,10` + "\n" +
		`4, "Diego" ,14, 15 ` + "\n"

	res, err := Import([]byte(data), importTime)
	require.NoError(t, err)

	require.Len(t, res.Clients, 2)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, "Bruno", res.Clients[0].Name)
	assert.Equal(t, "Diego", res.Clients[1].Name)
	assert.True(t, res.Clients[1].Value.Equal(decimal.NewFromInt(15)))
}

func TestImport_NoData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "header only", data: "ID,Nome"},
		{name: "header and blank lines", data: "ID,Nome\n\n  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data), importTime)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "plain", line: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "quoted comma", line: `"a,b",c`, want: []string{"a,b", "c"}},
		{name: "doubled quotes", line: `"say ""hi""",x`, want: []string{`say "hi"`, "x"}},
		{name: "surrounding spaces", line: `  a , "b"  ,c  `, want: []string{"a", "b", "c"}},
		{name: "empty fields", line: ",,", want: []string{"", "", ""}},
		{name: "trailing comma", line: "a,", want: []string{"a", ""}},
		{name: "unicode", line: `"São Paulo",ç`, want: []string{"São Paulo", "ç"}},
		{name: "unbalanced quote", line: `"abc,d`, wantErr: true},
		{name: "stray quote", line: `ab"c,d`, wantErr: true},
		{name: "garbage after quote", line: `"ab"c,d`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitRow(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
