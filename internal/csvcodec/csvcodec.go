// Package csvcodec реализует обмен списком клиентов в формате CSV,
// совместимом с электронными таблицами: экспорт с BOM и импорт с пропуском
// повреждённых строк.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Колонки файла. Порядок колонок при экспорте фиксирован.
const (
	ColID         = "ID"
	ColName       = "Nome"
	ColUser       = "Usuario"
	ColWhatsApp   = "WhatsApp"
	ColValue      = "Valor"
	ColMonths     = "Meses"
	ColStart      = "Inicio"
	ColExpiration = "Vencimento"
	ColTotalPaid  = "TotalPago"
	ColActive     = "Ativo"

	yes = "SIM"
	no  = "NAO"

	bom         = "\ufeff"
	defaultName = "Sem Nome"
)

// Header: заголовок экспортируемого файла.
var Header = []string{
	ColID, ColName, ColUser, ColWhatsApp, ColValue,
	ColMonths, ColStart, ColExpiration, ColTotalPaid, ColActive,
}

// ErrNoData возвращается, если в файле нет ни одной строки с данными.
var ErrNoData = errors.New("csv has no data rows")

var (
	lineBreak = regexp.MustCompile(`\r?\n`)
	// одиночный \r тоже считается переводом строки в свободном тексте
	anyBreak = regexp.MustCompile(`\r\n|\r|\n`)
)

// Export сериализует клиентов в CSV с BOM в начале, чтобы табличные редакторы
// правильно определяли кодировку UTF-8. Переводы строк в текстовых полях
// заменяются пробелами, пробелы по краям отбрасываются.
func Export(clients []models.Client) ([]byte, error) {
	const op = "csvcodec.Export"
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, c := range clients {
		active := no
		if c.IsActive {
			active = yes
		}
		row := []string{
			textField(c.ID),
			textField(c.Name),
			textField(c.User),
			textField(c.WhatsApp),
			c.Value.String(),
			strconv.Itoa(c.DurationMonths),
			c.StartDate,
			c.ExpirationDate,
			c.TotalPaidValue.String(),
			active,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// textField приводит свободный текст к виду, который Import прочитает обратно:
// каждая строка файла является одной записью, а пробелы по краям поля не сохраняются.
func textField(s string) string {
	return strings.TrimSpace(anyBreak.ReplaceAllString(s, " "))
}

// Result: результат разбора файла до подтверждения импорта.
type Result struct {
	Clients []models.Client `json:"clients"`
	Skipped int             `json:"skipped"`
}

// Import разбирает CSV-текст в новых клиентов.
//
// Колонки ищутся по заголовку. Каждый клиент получает одну запись в истории,
// собранную из импортированных дат, суммы и длительности и датированную моментом импорта.
// Строки, которые не удалось разобрать, пропускаются и учитываются в Result.Skipped.
func Import(data []byte, now time.Time) (Result, error) {
	const op = "csvcodec.Import"
	lines := lineBreak.Split(string(data), -1)
	if len(lines) < 2 {
		return Result{}, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	header, err := splitRow(strings.TrimPrefix(lines[0], bom))
	if err != nil {
		return Result{}, fmt.Errorf("%s: header: %w", op, err)
	}

	var res Result
	stamp := now.UnixMilli()
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		values, err := splitRow(lines[i])
		if err != nil || len(values) == 0 {
			res.Skipped++
			continue
		}
		row := make(map[string]string, len(header))
		for idx, col := range header {
			if idx < len(values) {
				row[col] = values[idx]
			}
		}
		res.Clients = append(res.Clients, rowToClient(row, i, stamp, now))
	}

	if len(res.Clients) == 0 && res.Skipped == 0 {
		return Result{}, fmt.Errorf("%s: %w", op, ErrNoData)
	}
	return res, nil
}

func rowToClient(row map[string]string, line int, stamp int64, now time.Time) models.Client {
	value, err := decimal.NewFromString(row[ColValue])
	if err != nil {
		value = decimal.Zero
	}
	months, err := strconv.Atoi(row[ColMonths])
	if err != nil || months <= 0 {
		months = 1
	}

	id := row[ColID]
	if id == "" {
		id = fmt.Sprintf("%d%d", stamp, line)
	}
	name := row[ColName]
	if name == "" {
		name = defaultName
	}

	c := models.Client{
		ID:             id,
		Name:           name,
		User:           row[ColUser],
		WhatsApp:       row[ColWhatsApp],
		Value:          value,
		DurationMonths: months,
		StartDate:      row[ColStart],
		ExpirationDate: row[ColExpiration],
		IsActive:       row[ColActive] == yes,
		RenewalHistory: []models.RenewalRecord{{
			ID:             fmt.Sprintf("imp-%d%d", stamp, line),
			CreatedAt:      now,
			Value:          value,
			DurationMonths: months,
			StartDate:      row[ColStart],
			EndDate:        row[ColExpiration],
		}},
	}
	// Сумма оплат всегда выводится из истории; колонка TotalPago служит только для чтения человеком.
	c.TotalPaidValue = c.HistoryTotal()
	return c
}
