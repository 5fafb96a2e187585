package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Limiter interface {
	// Allow counts one request for the chat and reports whether it is within the quota.
	Allow(ctx context.Context, chatID int64) bool
	// Used returns the requests counted for the chat today.
	Used(chatID int64) int
}

// DailyQuota limits resize jobs per chat and day. A limit of 0 disables it.
type DailyQuota struct {
	mu     sync.Mutex
	counts map[int64]int
	limit  int
	sender port.TextSender
	now    func() time.Time
}

func NewDailyQuota(ctx context.Context, sender port.TextSender) *DailyQuota {
	q := &DailyQuota{
		counts: make(map[int64]int),
		limit:  viper.GetInt("telegram.daily_limit"),
		sender: sender,
		now:    time.Now,
	}

	go q.resetDaily(ctx)

	return q
}

func (q *DailyQuota) Limit() int {
	return q.limit
}

func (q *DailyQuota) Used(chatID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[chatID]
}

const overQuota = "Daily limit of %d resize jobs reached. It resets in %s."

func (q *DailyQuota) Allow(ctx context.Context, chatID int64) bool {
	if q.limit <= 0 {
		return true
	}

	q.mu.Lock()
	allowed := q.counts[chatID] < q.limit
	if allowed {
		q.counts[chatID]++
	}
	q.mu.Unlock()

	if allowed {
		return true
	}

	_, err := q.sender.SendMessageReply(ctx, &domain.Message{ChatID: chatID},
		fmt.Sprintf(overQuota, q.limit, nextReset(q.now()).Sub(q.now()).Truncate(time.Second)))
	if err != nil {
		log.Warn().Err(err).Msg("failed to send quota warning")
	}

	return false
}

func (q *DailyQuota) reset() {
	q.mu.Lock()
	q.counts = make(map[int64]int)
	q.mu.Unlock()
}

func (q *DailyQuota) resetDaily(ctx context.Context) {
	for {
		reset := nextReset(q.now())
		log.Debug().Time("reset", reset).Msg("running quota reset timer")

		select {
		case <-time.After(time.Until(reset)):
			log.Debug().Msg("resetting daily quota")
			q.reset()
		case <-ctx.Done():
			log.Debug().Msg("stopping daily quota reset")
			return
		}
	}
}

func nextReset(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
