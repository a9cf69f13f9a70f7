package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

var today = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func isoOffset(days int) string {
	return dates.ToISODate(today.AddDate(0, 0, days))
}

func TestClassify(t *testing.T) {
	sentToday := today
	sentBefore := today.AddDate(0, 0, -7)

	tests := []struct {
		name   string
		client models.Client
		want   models.Status
	}{
		{
			name:   "expires today is still active",
			client: models.Client{IsActive: true, ExpirationDate: isoOffset(0)},
			want:   models.StatusActive,
		},
		{
			name:   "expires in future",
			client: models.Client{IsActive: true, ExpirationDate: isoOffset(12)},
			want:   models.StatusActive,
		},
		{
			name:   "expired five days ago without message",
			client: models.Client{IsActive: true, ExpirationDate: isoOffset(-5)},
			want:   models.StatusExpired,
		},
		{
			name:   "expired and message sent today",
			client: models.Client{IsActive: true, ExpirationDate: isoOffset(-5), LastMessageDate: &sentToday},
			want:   models.StatusMessageSent,
		},
		{
			name:   "message sent before expiration does not count",
			client: models.Client{IsActive: true, ExpirationDate: isoOffset(-5), LastMessageDate: &sentBefore},
			want:   models.StatusExpired,
		},
		{
			name:   "unparseable expiration is treated as overdue",
			client: models.Client{IsActive: true, ExpirationDate: "sometime"},
			want:   models.StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.client, today))
		})
	}
}

func TestClassify_InactiveOverridesEverything(t *testing.T) {
	sent := today
	for _, offset := range []int{-40, -5, 0, 5, 40} {
		c := models.Client{IsActive: false, ExpirationDate: isoOffset(offset)}
		assert.Equal(t, models.StatusInactive, Classify(c, today), "offset %d", offset)

		c.LastMessageDate = &sent
		assert.Equal(t, models.StatusInactive, Classify(c, today), "offset %d with message", offset)
	}
}

func TestClassify_MessageSentTransition(t *testing.T) {
	c := models.Client{IsActive: true, ExpirationDate: isoOffset(-5)}
	assert.Equal(t, models.StatusExpired, Classify(c, today))

	c = MarkMessageSent(c, today)
	assert.Equal(t, models.StatusMessageSent, Classify(c, today))
}

func TestView(t *testing.T) {
	v := View(models.Client{IsActive: true, ExpirationDate: isoOffset(4)}, today)
	assert.Equal(t, 4, v.DaysLeft)
	assert.Equal(t, models.StatusActive, v.Status)
}
