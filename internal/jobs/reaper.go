package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drivebackup/auth-server-go/internal/config"
	"github.com/drivebackup/auth-server-go/internal/repository"
	"github.com/drivebackup/auth-server-go/internal/util"
)

// ReaperJob periodically deletes pairings older than the TTL. The sweep
// interval is strictly shorter than the TTL, so no record outlives its
// deadline by more than two intervals.
type ReaperJob struct {
	repo     repository.PairingRepository
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewReaperJob(repo repository.PairingRepository, ttl, interval time.Duration) *ReaperJob {
	return &ReaperJob{
		repo:     repo,
		ttl:      ttl,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ReaperJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("ttl", j.ttl).Msg("reaper started")
}

func (j *ReaperJob) Stop() {
	close(j.done)
	log.Info().Msg("reaper stopped")
}

func (j *ReaperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep deletes every pairing past the TTL. Individual delete failures are
// logged and skipped; concurrent deletes of the same key are harmless because
// the store treats a missing row as success.
func (j *ReaperJob) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), config.SweepTimeout)
	defer cancel()

	cutoff := time.Now().Add(-j.ttl)

	expired, err := j.repo.ListExpired(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("reaper: failed to list expired pairings")
		return
	}
	if len(expired) == 0 {
		return
	}

	deleted := 0
	for _, p := range expired {
		if err := j.repo.Delete(ctx, p.UserCode); err != nil {
			log.Error().Err(err).
				Str("userCode", util.MaskCode(p.UserCode)).
				Msg("reaper: failed to delete pairing")
			continue
		}
		deleted++
	}

	log.Info().Int("deleted", deleted).Int("expired", len(expired)).Msg("reaper sweep complete")
}
