package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/dialogkeep/dialog-control/config"
	"github.com/dialogkeep/dialog-control/domain/infra"
	"github.com/dialogkeep/dialog-control/domain/model"
)

func testConfig() *config.Config {
	return &config.Config{
		SpamTurnThreshold:    5,
		SpamWindowSeconds:    60,
		HistoryWindowMinutes: 30,
		HistoryMaxPairs:      5,
	}
}

func strPtr(s string) *string { return &s }

func TestService_CreateOrGetUser_Cached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CreateUser(gomock.Any()).Return(true, uint(7), nil).Times(1)

	s := NewWithDatastore(testConfig(), ds)

	id, err := s.CreateOrGetUser(1234)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), id)

	// Second resolution comes from the cache, not the store.
	id, err = s.CreateOrGetUser(1234)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestService_RecordTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().AddTurn(uint(1), "how do I deploy?", nil, strPtr("https://wiki/deploy")).
		Return(uint(11), nil)

	s := NewWithDatastore(testConfig(), ds)

	id, err := s.RecordTurn(1, "how do I deploy?", nil, strPtr("https://wiki/deploy"))
	assert.NoError(t, err)
	assert.Equal(t, uint(11), id)
}

func TestService_IsSpamming(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fifth := time.Now().Add(-10 * time.Second)
	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().CountRecentTurns(uint(1), 5).Return(int64(6), &fifth, nil)

	s := NewWithDatastore(testConfig(), ds)

	spamming, err := s.IsSpamming(1)
	assert.NoError(t, err)
	assert.True(t, spamming)
}

func TestService_GetActiveContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	answer := "answer"
	turns := []model.Turn{
		{ID: 1, Question: "closed", Answer: &answer, IsBoundary: true, CreatedAt: base},
		{ID: 2, Question: "stale", CreatedAt: base.Add(time.Minute)},
		{ID: 3, Question: "current", Answer: &answer, CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, Question: "open", CreatedAt: base.Add(3 * time.Minute)},
	}

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().ListTurnsSince(uint(1), gomock.Any()).Return(turns, nil)

	s := NewWithDatastore(testConfig(), ds)

	ctx, err := s.GetActiveContext(1)
	assert.NoError(t, err)
	assert.Len(t, ctx.Pairs, 1)
	assert.Equal(t, uint(3), ctx.Pairs[0].ID)
	assert.Len(t, ctx.Unanswered, 1)
	assert.Equal(t, uint(4), ctx.Unanswered[0].ID)
}

func TestService_GetActiveContext_WindowBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().ListTurnsSince(uint(1), now.Add(-30*time.Minute)).Return(nil, nil)

	s := NewWithDatastore(testConfig(), ds)
	s.now = func() time.Time { return now }

	ctx, err := s.GetActiveContext(1)
	assert.NoError(t, err)
	assert.Empty(t, ctx.Pairs)
	assert.Empty(t, ctx.Unanswered)
}

func TestService_GetActiveContext_NegativeMaxPairs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().ListTurnsSince(uint(1), gomock.Any()).Return(nil, nil)

	cfg := testConfig()
	cfg.HistoryMaxPairs = -1
	s := NewWithDatastore(cfg, ds)

	_, err := s.GetActiveContext(1)
	assert.Error(t, err)
}

func TestService_CloseAndReopenConversation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().SetBoundary(uint(1), true).Return(nil)
	ds.EXPECT().SetBoundary(uint(1), false).Return(nil)

	s := NewWithDatastore(testConfig(), ds)

	assert.NoError(t, s.CloseConversation(1))
	assert.NoError(t, s.ReopenConversation(1))
}

func TestService_RateLastAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().SetScore(uint(11), 5).Return(true, nil)
	ds.EXPECT().SetScore(uint(99), 5).Return(false, nil)

	s := NewWithDatastore(testConfig(), ds)

	ok, err := s.RateLastAnswer(11, 5)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RateLastAnswer(99, 5)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestService_ToggleSubscription(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds := infra.NewMockDatastore(ctrl)
	ds.EXPECT().ToggleSubscription(uint(1)).Return(false, true, nil)

	s := NewWithDatastore(testConfig(), ds)

	state, found, err := s.ToggleSubscription(1)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.False(t, state)
}
