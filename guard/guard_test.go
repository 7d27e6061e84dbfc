package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/dialogkeep/dialog-control/domain/infra"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGuard_IsSpamming_Burst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fifth := now.Add(-20 * time.Second)

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CountRecentTurns(uint(1), 5).Return(int64(6), &fifth, nil)

	g := New(ds, 5, time.Minute)
	g.now = fixedClock(now)

	spamming, err := g.IsSpamming(1)
	assert.NoError(t, err)
	assert.True(t, spamming)
}

func TestGuard_IsSpamming_ExactlyThresholdTurns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fifth := now.Add(-5 * time.Second)

	// Five turns total is still allowed: the gate is "more than five".
	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CountRecentTurns(uint(1), 5).Return(int64(5), &fifth, nil)

	g := New(ds, 5, time.Minute)
	g.now = fixedClock(now)

	spamming, err := g.IsSpamming(1)
	assert.NoError(t, err)
	assert.False(t, spamming)
}

func TestGuard_IsSpamming_OldBurst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fifth := now.Add(-65 * time.Second)

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CountRecentTurns(uint(1), 5).Return(int64(6), &fifth, nil)

	g := New(ds, 5, time.Minute)
	g.now = fixedClock(now)

	spamming, err := g.IsSpamming(1)
	assert.NoError(t, err)
	assert.False(t, spamming)
}

func TestGuard_IsSpamming_NoTurns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CountRecentTurns(uint(42), 5).Return(int64(0), nil, nil)

	g := New(ds, 5, time.Minute)

	spamming, err := g.IsSpamming(42)
	assert.NoError(t, err)
	assert.False(t, spamming)
}

func TestGuard_New_Defaults(t *testing.T) {
	g := New(nil, 0, 0)
	assert.Equal(t, DefaultTurnThreshold, g.threshold)
	assert.Equal(t, DefaultWindow, g.window)
}
