package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper removes scratch artifacts older than maxAge that no request owns.
type Sweeper interface {
	Sweep(maxAge time.Duration) error
}

// Janitor sweeps the scratch directory on start and then every interval.
type Janitor struct {
	sweeper  Sweeper
	maxAge   time.Duration
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewJanitor(sweeper Sweeper, maxAge, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &Janitor{
		sweeper:  sweeper,
		maxAge:   maxAge,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	go j.run(ctx)
}

// Stop ends the loop and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stop:
			log.Debug().Msg("janitor stopped")
			return
		case <-ctx.Done():
			log.Debug().Msg("janitor context done")
			return
		}
	}
}

func (j *Janitor) sweep() {
	start := time.Now()
	if err := j.sweeper.Sweep(j.maxAge); err != nil {
		log.Warn().Err(err).Msg("scratch sweep failed")
		return
	}
	log.Debug().Dur("elapsed", time.Since(start)).Dur("maxAge", j.maxAge).Msg("scratch sweep finished")
}
