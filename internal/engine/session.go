package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// createSessionLocked starts a session for a freshly selected pair. If a
// participant vanished between selection and creation, the survivor is
// re-queued instead; this is a recovery path, not an error.
func (e *Engine) createSessionLocked(aID, bID string) {
	a, b := e.conns[aID], e.conns[bID]
	if a == nil || b == nil {
		for _, c := range []*models.Connection{a, b} {
			if c != nil {
				c.Status = models.StatusQueued
				e.queue = append(e.queue, c.ID)
			}
		}
		e.log.Warn().Str("a", aID).Str("b", bID).Msg("participant gone, re-queuing survivor")
		return
	}

	roomID := "room_" + uuid.NewString()
	start := time.Now()

	for _, c := range []*models.Connection{a, b} {
		c.Status = models.StatusInSession
		c.RoomID = roomID
		c.SparksLeft = e.cfg.MaxSparks
		e.emit.Join(c.ID, roomID)
	}

	s := &models.Session{
		RoomID:    roomID,
		Users:     [2]string{aID, bID},
		StartTime: start,
		EndTime:   start.Add(e.cfg.SessionDuration),
	}
	s.Timer = e.sched.Schedule(e.cfg.SessionDuration, func() { e.sessionExpired(roomID) })
	e.sessions[roomID] = s

	e.emit.ToConnection(aID, events.Matched, events.MatchedPayload{
		RoomID:            roomID,
		StartTime:         start.UnixMilli(),
		Duration:          e.cfg.SessionDuration.Milliseconds(),
		PartnerIdentifier: b.Identifier,
	})
	e.emit.ToConnection(bID, events.Matched, events.MatchedPayload{
		RoomID:            roomID,
		StartTime:         start.UnixMilli(),
		Duration:          e.cfg.SessionDuration.Milliseconds(),
		PartnerIdentifier: a.Identifier,
	})
	e.log.Info().Str("room", roomID).Msg("session started")
}

// SendMessage relays a chat message to the sender's session room. The
// message arrives trimmed and capped from the boundary.
func (e *Engine) SendMessage(connID, roomID, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || message == "" || c.RoomID != roomID {
		return
	}
	s := e.sessions[roomID]
	if s == nil || !s.Has(connID) {
		return
	}

	e.emit.ToRoom(roomID, events.ReceiveMessage, events.MessagePayload{
		ID:        uuid.NewString(),
		SenderID:  connID,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	e.log.Debug().Str("room", roomID).Msg("message sent")
}

// SendSpark consumes one extension credit to push the session's end time
// out. Exhausted credits or a sender outside a session are silently
// ignored; the expiry timer is cancelled and re-armed for the new end.
func (e *Engine) SendSpark(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || c.Status != models.StatusInSession {
		return
	}
	s := e.sessions[c.RoomID]
	if s == nil {
		return
	}
	if c.SparksLeft <= 0 {
		e.log.Debug().Str("conn", connID).Msg("spark ignored, no credits left")
		return
	}

	c.SparksLeft--
	s.EndTime = s.EndTime.Add(e.cfg.SparkExtension)
	if s.Timer != nil {
		s.Timer.Stop()
	}
	roomID := s.RoomID
	s.Timer = e.sched.Schedule(time.Until(s.EndTime), func() { e.sessionExpired(roomID) })

	e.emit.ToRoom(roomID, events.SparkApplied, events.SparkAppliedPayload{
		SenderID:         connID,
		NewEndTime:       s.EndTime.UnixMilli(),
		SenderSparksLeft: c.SparksLeft,
	})
	e.log.Info().Str("room", roomID).Int("sparks_left", c.SparksLeft).Msg("spark applied")
}

// LeaveSession ends the caller's active session early. Outside a session
// it is a no-op.
func (e *Engine) LeaveSession(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || c.RoomID == "" {
		return
	}
	e.log.Info().Str("conn", connID).Str("room", c.RoomID).Msg("early leave")
	e.endSessionLocked(c.RoomID, models.ReasonPartnerDisconnected)
}

// endSessionLocked tears a session down: cancels the timer, notifies the
// room, returns both participants to idle and drops the record. Unknown
// rooms are already ended, so the call is idempotent. Flame requests tied
// to the room are invalidated without resolution. Only a timeout ending
// opens a reaction window.
func (e *Engine) endSessionLocked(roomID, reason string) {
	s := e.sessions[roomID]
	if s == nil {
		return
	}

	if s.Timer != nil {
		s.Timer.Stop()
	}
	e.emit.ToRoom(roomID, events.SessionEnded, events.SessionEndedPayload{Reason: reason})

	for _, uid := range s.Users {
		if c := e.conns[uid]; c != nil {
			e.emit.Leave(uid, roomID)
			c.Status = models.StatusIdle
			c.RoomID = ""
		}
	}
	delete(e.sessions, roomID)

	for id, r := range e.flameRequests {
		if r.RoomID == roomID {
			delete(e.flameRequests, id)
		}
	}

	e.log.Info().Str("room", roomID).Str("reason", reason).Msg("session ended")

	if reason == models.ReasonTimeout {
		e.openReactionWindowLocked(s.Users)
	}
}

// sessionExpired is the expiry timer callback. A stale fire after the
// session already ended finds no record and does nothing.
func (e *Engine) sessionExpired(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[roomID]; !ok {
		return
	}
	e.endSessionLocked(roomID, models.ReasonTimeout)
}
