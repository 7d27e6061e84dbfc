// Package history reconstructs the active conversation window from a
// time-ordered log of turns. Both functions are pure: they never touch
// the store and always produce the same output for the same input.
package history

import (
	"fmt"

	"github.com/dialogkeep/dialog-control/domain/model"
)

const (
	DefaultWindowMinutes = 30
	DefaultMaxPairs      = 5
)

// Window shapes the raw in-window turn list for segmentation: answered
// turns first, capped to the most recent maxPairs, then every unanswered
// turn. Each group keeps its creation order; the result is deliberately
// NOT a single timestamp-sorted merge.
func Window(turns []model.Turn, maxPairs int) ([]model.Turn, error) {
	if maxPairs < 0 {
		return nil, fmt.Errorf("maxPairs must not be negative, got %d", maxPairs)
	}

	var answered, unanswered []model.Turn
	for _, t := range turns {
		if t.Answered() {
			answered = append(answered, t)
		} else {
			unanswered = append(unanswered, t)
		}
	}
	if len(answered) > maxPairs {
		answered = answered[len(answered)-maxPairs:]
	}
	return append(answered, unanswered...), nil
}

// Segment cuts the sequence down to the current conversation. Turns at or
// before the last boundary belong to a closed conversation and are
// dropped; unanswered questions older than the most recent answer are
// considered superseded and dropped as well. With no answered pairs the
// unanswered turns are returned untouched.
func Segment(turns []model.Turn) (pairs, unanswered []model.Turn) {
	start := 0
	for i, t := range turns {
		if t.IsBoundary {
			start = i + 1
		}
	}

	for _, t := range turns[start:] {
		if t.Answered() {
			pairs = append(pairs, t)
		} else {
			unanswered = append(unanswered, t)
		}
	}
	if len(pairs) == 0 {
		return pairs, unanswered
	}

	lastAnswerTime := pairs[0].CreatedAt
	for _, t := range pairs[1:] {
		if t.CreatedAt.After(lastAnswerTime) {
			lastAnswerTime = t.CreatedAt
		}
	}

	var fresh []model.Turn
	for _, t := range unanswered {
		if t.CreatedAt.After(lastAnswerTime) {
			fresh = append(fresh, t)
		}
	}
	return pairs, fresh
}
