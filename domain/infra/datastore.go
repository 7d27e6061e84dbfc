package infra

import (
	"time"

	"github.com/dialogkeep/dialog-control/domain/model"
)

//go:generate mockgen -source=datastore.go -destination=datastore_mock.go -package=infra

// Datastore is the narrow contract the conversation core needs from the
// store. "Not found" is reported through the result values, never through
// the error; only infrastructure failures surface as errors.
type Datastore interface {
	// Create a subscribed user, or return the existing one for the external id.
	CreateUser(externalID *int64) (created bool, id uint, err error)
	// Resolve a platform user id to the internal user id.
	FindUserID(externalID int64) (id uint, found bool, err error)
	// Flip the subscription flag and return the new state.
	ToggleSubscription(userID uint) (subscribed bool, found bool, err error)
	// Append a turn and return its assigned id.
	AddTurn(userID uint, question string, answer, sourceLink *string) (uint, error)
	// Record a rating on an existing turn.
	SetScore(turnID uint, score int) (bool, error)
	// Mark or unmark the user's most recent turn as a conversation boundary.
	SetBoundary(userID uint, flag bool) error
	// All turns for the user created at or after since, oldest first.
	ListTurnsSince(userID uint, since time.Time) ([]model.Turn, error)
	// Total turn count plus the creation time of the nth most recent turn,
	// nil when fewer than nth turns exist.
	CountRecentTurns(userID uint, nth int) (count int64, nthCreatedAt *time.Time, err error)
}

func timeNow() time.Time {
	return time.Now().UTC()
}
