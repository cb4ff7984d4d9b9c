package models

import "time"

// Stopper cancels an outstanding deferred callback. time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// End reasons observed on session_ended events.
const (
	ReasonTimeout             = "timeout"
	ReasonPartnerDisconnected = "partner_disconnected"
	ReasonEnded               = "ended"
	ReasonPartnerOffline      = "partner_offline"
)

// Session is an active two-party chat pairing with a running expiry timer.
// EndTime moves forward as sparks are applied; the timer is cancelled and
// re-armed whenever it does.
type Session struct {
	RoomID    string
	Users     [2]string
	StartTime time.Time
	EndTime   time.Time
	Timer     Stopper
}

// Partner returns the other participant of the session, or "" when the
// given connection is not a participant.
func (s *Session) Partner(connID string) string {
	switch connID {
	case s.Users[0]:
		return s.Users[1]
	case s.Users[1]:
		return s.Users[0]
	}
	return ""
}

// Has reports whether the connection participates in this session.
func (s *Session) Has(connID string) bool {
	return connID == s.Users[0] || connID == s.Users[1]
}
