// Package models defines the fixture-owned domain records for the
// collaborative story app: users, stories, turn rotation, and turns.
package models

import "fmt"

type EmailVerificationState string

const (
	EmailVerificationStatePending    = EmailVerificationState("pending")
	EmailVerificationStateVerified   = EmailVerificationState("verified")
	EmailVerificationStateUnverified = EmailVerificationState("unverified")
)

type User struct {
	ID                      int
	Username                string
	Email                   string
	EmailVerificationStatus EmailVerificationState
}

type TurnAction string

const (
	TurnActionPass           = TurnAction("pass")
	TurnActionWrite          = TurnAction("write")
	TurnActionFinish         = TurnAction("finish")
	TurnActionWriteAndFinish = TurnAction("write_and_finish")
)

// Turn is one entry in a story's turn sequence. Ordering is positional:
// the sequence is the creation order, not a stored column.
type Turn struct {
	StoryID int
	TakenBy int
	Action  TurnAction
	Text    string
}

func (t *Turn) Finishes() bool {
	switch t.Action {
	case TurnActionFinish, TurnActionWriteAndFinish:
		return true
	}
	return false
}

func (t *Turn) Writes() bool {
	switch t.Action {
	case TurnActionWrite, TurnActionWriteAndFinish:
		return true
	}
	return false
}

// Validate checks the action/text coupling: writing actions require text,
// pass and finish require none.
func (t *Turn) Validate() error {
	switch t.Action {
	case TurnActionFinish, TurnActionPass, TurnActionWrite, TurnActionWriteAndFinish:
	default:
		return fmt.Errorf("unknown turn action %q", t.Action)
	}

	if t.Writes() && t.Text == "" {
		return fmt.Errorf("text for a %q turn cannot be empty", t.Action)
	}
	if !t.Writes() && t.Text != "" {
		return fmt.Errorf("text for a %q turn must be empty", t.Action)
	}

	return nil
}

type StoryState string

const (
	StoryStateDraft      = StoryState("draft")
	StoryStateInProgress = StoryState("in_progress")
	StoryStateDone       = StoryState("done")
)

type Story struct {
	ID        int
	Title     string
	State     StoryState
	CreatedBy int
}

// StoryCowriter is the ordered (story, user) relation defining turn
// rotation. TurnIndex is a dense 0..n-1 permutation; insertion order is
// authorship order.
type StoryCowriter struct {
	StoryID   int
	UserID    int
	TurnIndex int
}

// DeriveStoryState computes a story's state from its participant count and
// completion flag. State is derived, never user-supplied: a single-author
// story sits in draft, adding cowriters moves it to in_progress, and
// completion always wins, so any complete story is done regardless of how
// many authors it has.
func DeriveStoryState(participants int, complete bool) StoryState {
	state := StoryStateDraft
	if participants > 1 {
		state = StoryStateInProgress
	}
	if complete {
		state = StoryStateDone
	}
	return state
}
