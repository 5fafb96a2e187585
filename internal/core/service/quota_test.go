package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDailyQuota_Allow(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		limit         int
		used          int
		expectAllowed bool
		expectMessage bool
		simulateErr   error
	}{
		{name: "below limit", limit: 5, used: 4, expectAllowed: true},
		{name: "at limit", limit: 5, used: 5, expectMessage: true},
		{name: "at limit with send error", limit: 5, used: 9, expectMessage: true, simulateErr: assert.AnError},
		{name: "disabled", limit: 0, used: 100, expectAllowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSender := &mockTextSender{sendError: tt.simulateErr}
			q := &DailyQuota{
				counts: map[int64]int{1: tt.used},
				limit:  tt.limit,
				sender: mockSender,
				now:    func() time.Time { return fixed },
			}

			assert.Equal(t, tt.expectAllowed, q.Allow(context.Background(), 1))

			if tt.expectMessage {
				assert.Equal(t, 1, mockSender.callCount)
				assert.Equal(t, "Daily limit of 5 resize jobs reached. It resets in 1h30m0s.", mockSender.sendReplies[0])
			} else {
				assert.Equal(t, 0, mockSender.callCount)
			}
		})
	}
}

func TestDailyQuota_Counts(t *testing.T) {
	q := &DailyQuota{counts: map[int64]int{}, limit: 2, sender: &mockTextSender{}, now: time.Now}

	assert.True(t, q.Allow(context.Background(), 7))
	assert.True(t, q.Allow(context.Background(), 7))
	assert.False(t, q.Allow(context.Background(), 7))
	assert.Equal(t, 2, q.Used(7))
	assert.Equal(t, 0, q.Used(8))

	q.reset()
	assert.Equal(t, 0, q.Used(7))
}

func TestNewDailyQuota(t *testing.T) {
	viper.Set("telegram.daily_limit", 10)
	t.Cleanup(viper.Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockSender := &mockTextSender{}
	q := NewDailyQuota(ctx, mockSender)

	assert.NotNil(t, q.counts)
	assert.Equal(t, 10, q.Limit())
	assert.Equal(t, mockSender, q.sender)
}

func TestNextReset(t *testing.T) {
	reset := nextReset(time.Date(2026, 12, 31, 13, 5, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), reset)
}
