package model

import "time"

// Turn is one question from a user and, once the answering engine has
// replied, its answer. Answer == nil is the canonical "unanswered"
// representation; the store boundary normalizes empty strings onto it.
type Turn struct {
	ID         uint    `gorm:"primary_key"`
	Question   string  `gorm:"type:text"`
	Answer     *string `gorm:"type:text"`
	SourceLink *string `gorm:"type:text;index"` // page the answer was taken from
	Score      *int
	UserID     uint `gorm:"index"`
	IsBoundary bool // marks the end of a logical conversation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Answered reports whether the turn carries a non-empty answer.
func (t Turn) Answered() bool {
	return t.Answer != nil && *t.Answer != ""
}

// NormalizeAnswer maps the empty string onto nil so both spellings of
// "unanswered" look the same once persisted.
func NormalizeAnswer(answer *string) *string {
	if answer == nil || *answer == "" {
		return nil
	}
	return answer
}

// ActiveContext is what the answering engine is prompted with: the
// answered pairs of the current conversation plus the questions still
// waiting for an answer.
type ActiveContext struct {
	Pairs      []Turn
	Unanswered []Turn
}
