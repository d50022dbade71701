package interfaces

import (
	"time"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
)

// ConversationLease is a session's context checked out under its per-session
// lock. At most one lease per session is live at a time; holders of a lease
// for one session never block work on other sessions. Every lease must be
// finished with exactly one call to Commit or Release.
type ConversationLease interface {
	SessionID() string

	// History returns a copy of the stored turns, oldest first.
	History() []models.ConversationMessage

	// FirstTurn reports whether the session has completed no exchange yet.
	FirstTurn() bool

	// Pages returns the document pages captured when the session was created.
	Pages() []models.PolicyPage

	// Commit appends a user/assistant pair, trims the history to the store's
	// limit (oldest pairs dropped first), clears the first-turn flag and
	// releases the lock.
	Commit(user, assistant models.ConversationMessage)

	// Release unlocks the session without recording anything.
	Release()
}

type ConversationStore interface {
	// Acquire returns the conversation for sessionID with its lock held,
	// creating an empty one with the given pages if absent. Updates the
	// session's last-accessed time.
	Acquire(sessionID string, pages []models.PolicyPage) ConversationLease

	// Remove deletes the conversation. Idempotent.
	Remove(sessionID string)

	// EvictIdle removes every conversation last accessed before cutoff and
	// returns how many were removed.
	EvictIdle(cutoff time.Time) int

	Count() int
}
