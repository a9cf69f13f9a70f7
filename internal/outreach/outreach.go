// Package outreach готовит сообщения клиентам: подставляет данные клиента в
// шаблон и строит ссылку для открытия диалога в WhatsApp.
package outreach

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Подстановки, которые понимают шаблоны.
const (
	TokenName       = "{{nome}}"
	TokenUser       = "{{usuario}}"
	TokenExpiration = "{{vencimento}}"
	TokenValue      = "{{valor}}"

	noUser = "N/A"

	deepLinkBase = "https://wa.me/"
	countryCode  = "55"
)

var nonDigits = regexp.MustCompile(`\D`)

// Render подставляет данные клиента во все вхождения токенов шаблона.
func Render(template string, c models.Client) string {
	user := c.User
	if user == "" {
		user = noUser
	}
	r := strings.NewReplacer(
		TokenName, c.Name,
		TokenExpiration, dates.FormatISOLocalized(c.ExpirationDate),
		TokenValue, FormatCurrency(c.Value),
		TokenUser, user,
	)
	return r.Replace(template)
}

// TemplateFor выбирает шаблон по статусу: для просроченных клиентов (в том числе
// уже получивших сообщение) берётся шаблон о просрочке, для остальных шаблон о скором окончании.
func TemplateFor(status models.Status, s models.Settings) string {
	s = s.WithDefaults()
	switch status {
	case models.StatusExpired, models.StatusMessageSent:
		return s.MessageTemplateExpired
	default:
		return s.MessageTemplateUpcoming
	}
}

// DeepLink строит ссылку wa.me: код страны 55, только цифры номера и
// URL-кодированный текст сообщения.
func DeepLink(whatsapp, message string) string {
	digits := nonDigits.ReplaceAllString(whatsapp, "")
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return deepLinkBase + countryCode + digits + "?text=" + text
}

// Compose готовит сообщение клиенту по шаблону, соответствующему его статусу на дату today.
func Compose(c models.Client, s models.Settings, today time.Time) models.Outreach {
	status := ledger.Classify(c, today)
	msg := Render(TemplateFor(status, s), c)
	return models.Outreach{
		ClientID: c.ID,
		Name:     c.Name,
		Status:   status,
		Message:  msg,
		Link:     DeepLink(c.WhatsApp, msg),
	}
}

// FormatCurrency форматирует сумму в реалах: "R$ 1.234,56".
func FormatCurrency(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + frac
}
