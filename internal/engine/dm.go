package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// DMRequest starts an identifier-addressed handshake with a target who is
// not necessarily in any session. An unknown or disconnected target gets
// the requester an immediate offline error and no request record.
func (e *Engine) DMRequest(connID, targetIdentifier string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || targetIdentifier == "" {
		return
	}

	targetID, ok := e.identifiers[targetIdentifier]
	if !ok || e.conns[targetID] == nil {
		e.emit.ToConnection(connID, events.DMError, events.DMErrorPayload{Reason: "offline"})
		return
	}
	// Own identifier resolves to oneself; there is no room to open.
	if targetID == connID {
		return
	}

	r := &models.PendingDMRequest{
		ID:             uuid.NewString(),
		FromID:         connID,
		TargetID:       targetID,
		FromIdentifier: c.Identifier,
	}
	e.dmRequests[r.ID] = r

	e.emit.ToConnection(targetID, events.DMIncoming, events.DMIncomingPayload{
		RequestID:      r.ID,
		FromIdentifier: r.FromIdentifier,
	})
	e.log.Info().Str("request", r.ID).Msg("dm requested")
}

// DMAccept consumes the request, opens a private room and joins both
// parties to it. A party already in a DM room leaves it first, keeping
// every connection in at most one DM room.
func (e *Engine) DMAccept(connID, requestID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.dmRequests[requestID]
	if r == nil || r.TargetID != connID {
		return
	}
	delete(e.dmRequests, requestID)

	from, target := e.conns[r.FromID], e.conns[r.TargetID]
	if from == nil || target == nil {
		return
	}
	for _, c := range []*models.Connection{from, target} {
		if c.DMRoomID != "" {
			e.endDMLocked(c.DMRoomID, models.ReasonEnded)
		}
	}

	roomID := "dm_" + uuid.NewString()
	dm := &models.DMSession{RoomID: roomID, Users: [2]string{r.FromID, r.TargetID}}
	for _, c := range []*models.Connection{from, target} {
		c.DMRoomID = roomID
		e.emit.Join(c.ID, roomID)
	}
	e.dmSessions[roomID] = dm

	e.emit.ToConnection(r.FromID, events.DMReady, events.DMReadyPayload{
		DMRoomID:          roomID,
		PartnerIdentifier: target.Identifier,
	})
	e.emit.ToConnection(r.TargetID, events.DMReady, events.DMReadyPayload{
		DMRoomID:          roomID,
		PartnerIdentifier: from.Identifier,
	})
	e.log.Info().Str("room", roomID).Msg("dm session started")
}

// DMDecline consumes the request and notifies the requester. No room is
// created.
func (e *Engine) DMDecline(connID, requestID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.dmRequests[requestID]
	if r == nil || r.TargetID != connID {
		return
	}
	delete(e.dmRequests, requestID)

	e.emit.ToConnection(r.FromID, events.DMDeclined, struct{}{})
	e.log.Info().Str("request", requestID).Msg("dm declined")
}

// DMMessage relays a message to the caller's DM room. Delivery requires
// that the caller still belongs to exactly this room and the room still
// exists; the message arrives trimmed and capped from the boundary.
func (e *Engine) DMMessage(connID, dmRoomID, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || message == "" || c.DMRoomID != dmRoomID {
		return
	}
	if e.dmSessions[dmRoomID] == nil {
		return
	}

	e.emit.ToRoom(dmRoomID, events.DMReceive, events.MessagePayload{
		ID:        uuid.NewString(),
		SenderID:  connID,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// DMEnd ends the DM session the caller currently belongs to.
func (e *Engine) DMEnd(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || c.DMRoomID == "" {
		return
	}
	e.endDMLocked(c.DMRoomID, models.ReasonEnded)
}

// endDMLocked tears a DM room down, notifying both sides and clearing
// their references. Unknown rooms are already ended.
func (e *Engine) endDMLocked(roomID, reason string) {
	dm := e.dmSessions[roomID]
	if dm == nil {
		return
	}

	e.emit.ToRoom(roomID, events.DMEnded, events.DMEndedPayload{Reason: reason})
	for _, uid := range dm.Users {
		if c := e.conns[uid]; c != nil {
			e.emit.Leave(uid, roomID)
			c.DMRoomID = ""
		}
	}
	delete(e.dmSessions, roomID)
	e.log.Info().Str("room", roomID).Str("reason", reason).Msg("dm session ended")
}
