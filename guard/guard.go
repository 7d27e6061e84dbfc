// Package guard rate-limits question bursts per user.
package guard

import (
	"fmt"
	"time"

	"github.com/dialogkeep/dialog-control/domain/infra"
)

const (
	DefaultTurnThreshold = 5
	DefaultWindow        = time.Minute
)

// Guard decides whether a user is spamming: more than threshold turns in
// total and the threshold-th most recent one created inside the lookback
// window. Gating on the threshold-th turn means the next rapid question
// is the one that gets refused.
type Guard struct {
	ds        infra.Datastore
	threshold int
	window    time.Duration
	now       func() time.Time
}

func New(ds infra.Datastore, threshold int, window time.Duration) *Guard {
	if threshold < 1 {
		threshold = DefaultTurnThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		ds:        ds,
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

func (g *Guard) IsSpamming(userID uint) (bool, error) {
	count, nthCreatedAt, err := g.ds.CountRecentTurns(userID, g.threshold)
	if err != nil {
		return false, fmt.Errorf("CountRecentTurns failed: %w", err)
	}
	if count <= int64(g.threshold) || nthCreatedAt == nil {
		return false, nil
	}
	return g.now().Sub(*nthCreatedAt) < g.window, nil
}
