package models

// Status represents what a connection is currently doing
type Status string

const (
	StatusIdle      Status = "idle"
	StatusQueued    Status = "queued"
	StatusInSession Status = "in_session"
)

// Connection holds the ephemeral per-connection state. It exists from
// connect to disconnect and is never persisted.
type Connection struct {
	ID         string
	Status     Status
	Identifier string              // self-asserted, last-registered wins
	BlockList  map[string]struct{} // identifiers excluded from pairing

	RoomID         string // active session room, empty when idle/queued
	ReactionRoomID string // reaction window, empty outside a voting period
	DMRoomID       string // direct-message room, empty when not in one

	SparksLeft int // extension credits remaining for the current session
}

// Blocks reports whether pairing with the given identifier is excluded
// by this connection's block list. An empty identifier is never blocked.
func (c *Connection) Blocks(identifier string) bool {
	if identifier == "" {
		return false
	}
	_, ok := c.BlockList[identifier]
	return ok
}
