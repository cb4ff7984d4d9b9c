package models

// PendingDMRequest is a one-shot direct-message handshake offered to a
// target looked up by identifier. It is consumed by accept or decline and
// discarded when either party disconnects.
type PendingDMRequest struct {
	ID             string
	FromID         string
	TargetID       string
	FromIdentifier string
}

// PendingFlameRequest is a one-shot continuation handshake between the two
// participants of an active session. It is implicitly invalidated when the
// originating session ends before the target responds.
type PendingFlameRequest struct {
	ID       string
	FromID   string
	TargetID string
	RoomID   string // originating session room
}

// DMSession is a private room formed by an accepted DM request.
type DMSession struct {
	RoomID string
	Users  [2]string
}

// Partner returns the other participant, or "" for a non-participant.
func (d *DMSession) Partner(connID string) string {
	switch connID {
	case d.Users[0]:
		return d.Users[1]
	case d.Users[1]:
		return d.Users[0]
	}
	return ""
}
