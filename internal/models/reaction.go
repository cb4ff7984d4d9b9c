package models

// Reaction is a participant's post-session vote.
type Reaction string

const (
	ReactionFlame Reaction = "flame" // willing to continue
	ReactionCross Reaction = "cross" // end the relationship
)

// Reaction window outcomes.
const (
	ResultContinue = "continue"
	ResultEnd      = "end"
)

// ReactionWindow is a short-lived voting period opened when a session ends
// by timeout. It resolves exactly once: a single cross resolves it to end
// immediately, two flames resolve it to continue, and the deadline timer
// force-resolves it to end.
type ReactionWindow struct {
	ID       string
	Users    [2]string
	Votes    map[string]Reaction // connection id -> vote, at most one each
	Resolved bool
	Timer    Stopper
}

// Partner returns the other participant, or "" for a non-participant.
func (w *ReactionWindow) Partner(connID string) string {
	switch connID {
	case w.Users[0]:
		return w.Users[1]
	case w.Users[1]:
		return w.Users[0]
	}
	return ""
}

// Has reports whether the connection participates in this window.
func (w *ReactionWindow) Has(connID string) bool {
	return connID == w.Users[0] || connID == w.Users[1]
}
