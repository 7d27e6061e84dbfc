// Package service exposes the conversation core to the messaging-platform
// adapter: user registration, spam checks, turn recording and active
// context reconstruction.
package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/dialogkeep/dialog-control/config"
	"github.com/dialogkeep/dialog-control/domain/infra"
	"github.com/dialogkeep/dialog-control/domain/model"
	"github.com/dialogkeep/dialog-control/guard"
	"github.com/dialogkeep/dialog-control/history"
)

type Service struct {
	ds            infra.Datastore
	guard         *guard.Guard
	userCache     *ttlcache.Cache[int64, uint]
	windowMinutes int
	maxPairs      int
	now           func() time.Time
}

func New(cfg *config.Config) (*Service, error) {
	var ds infra.Datastore
	var err error
	if cfg.DBDriver == "dynamodb" {
		ds, err = infra.NewDynamoDB(cfg)
	} else {
		ds, err = infra.NewDataBase(cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewWithDatastore(cfg, ds), nil
}

func NewWithDatastore(cfg *config.Config, ds infra.Datastore) *Service {
	windowMinutes := cfg.HistoryWindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = history.DefaultWindowMinutes
	}
	s := &Service{
		ds:            ds,
		guard:         guard.New(ds, cfg.SpamTurnThreshold, time.Duration(cfg.SpamWindowSeconds)*time.Second),
		userCache:     ttlcache.New(ttlcache.WithTTL[int64, uint](time.Hour)),
		windowMinutes: windowMinutes,
		maxPairs:      cfg.HistoryMaxPairs,
		now:           time.Now,
	}
	go s.userCache.Start()
	return s
}

// CreateOrGetUser resolves the platform user, creating it on first
// contact. The resolution is cached; CreateUser itself is idempotent, so
// a cache miss after expiry never duplicates the user.
func (s *Service) CreateOrGetUser(externalID int64) (uint, error) {
	if item := s.userCache.Get(externalID); item != nil {
		return item.Value(), nil
	}
	created, id, err := s.ds.CreateUser(&externalID)
	if err != nil {
		return 0, fmt.Errorf("CreateUser failed: %w", err)
	}
	if created {
		slog.Info("registered new user", slog.Uint64("user_id", uint64(id)), slog.Int64("external_id", externalID))
	}
	s.userCache.Set(externalID, id, ttlcache.DefaultTTL)
	return id, nil
}

func (s *Service) ToggleSubscription(userID uint) (bool, bool, error) {
	return s.ds.ToggleSubscription(userID)
}

func (s *Service) IsSpamming(userID uint) (bool, error) {
	return s.guard.IsSpamming(userID)
}

func (s *Service) RecordTurn(userID uint, question string, answer, sourceLink *string) (uint, error) {
	return s.ds.AddTurn(userID, question, answer, sourceLink)
}

// GetActiveContext reconstructs the conversation window the answering
// engine should be prompted with: the recent answered pairs and the
// still-open questions of the current conversation.
func (s *Service) GetActiveContext(userID uint) (*model.ActiveContext, error) {
	since := s.now().Add(-time.Duration(s.windowMinutes) * time.Minute)
	turns, err := s.ds.ListTurnsSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("ListTurnsSince failed: %w", err)
	}
	windowed, err := history.Window(turns, s.maxPairs)
	if err != nil {
		return nil, err
	}
	pairs, unanswered := history.Segment(windowed)
	return &model.ActiveContext{Pairs: pairs, Unanswered: unanswered}, nil
}

// CloseConversation flags the user's most recent turn as the end of the
// conversation. A question recorded between the caller's decision to
// close and this call can steal the flag; at chat cadence that race is
// accepted rather than locked around.
func (s *Service) CloseConversation(userID uint) error {
	return s.ds.SetBoundary(userID, true)
}

// ReopenConversation clears the boundary flag set by CloseConversation.
func (s *Service) ReopenConversation(userID uint) error {
	return s.ds.SetBoundary(userID, false)
}

func (s *Service) RateLastAnswer(turnID uint, score int) (bool, error) {
	return s.ds.SetScore(turnID, score)
}
