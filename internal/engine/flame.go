package engine

import (
	"github.com/google/uuid"

	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// FlameRequest offers the caller's session partner a continuation beyond
// the current session. It is independent of the reaction window and valid
// any time the session is active.
func (e *Engine) FlameRequest(connID string) {
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
	target := s.Partner(connID)

	r := &models.PendingFlameRequest{
		ID:       uuid.NewString(),
		FromID:   connID,
		TargetID: target,
		RoomID:   s.RoomID,
	}
	e.flameRequests[r.ID] = r

	e.emit.ToConnection(target, events.FlameIncoming, events.FlameIncomingPayload{
		RequestID:      r.ID,
		FromIdentifier: c.Identifier,
	})
	e.log.Info().Str("request", r.ID).Str("room", s.RoomID).Msg("flame requested")
}

// FlameAccept consumes the request and tells each side the other's
// identifier. Only the recorded target may accept; anything else,
// including a request already invalidated by its session ending, is a
// no-op.
func (e *Engine) FlameAccept(connID, requestID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.flameRequests[requestID]
	if r == nil || r.TargetID != connID {
		return
	}
	delete(e.flameRequests, requestID)

	from, target := e.conns[r.FromID], e.conns[r.TargetID]
	if from == nil || target == nil {
		return
	}
	e.emit.ToConnection(r.FromID, events.FlameAccepted, events.FlameAcceptedPayload{
		PartnerIdentifier: target.Identifier,
	})
	e.emit.ToConnection(r.TargetID, events.FlameAccepted, events.FlameAcceptedPayload{
		PartnerIdentifier: from.Identifier,
	})
	e.log.Info().Str("request", requestID).Msg("flame accepted")
}

// FlameDecline consumes the request and notifies the requester.
func (e *Engine) FlameDecline(connID, requestID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.flameRequests[requestID]
	if r == nil || r.TargetID != connID {
		return
	}
	delete(e.flameRequests, requestID)

	e.emit.ToConnection(r.FromID, events.FlameDeclined, struct{}{})
	e.log.Info().Str("request", requestID).Msg("flame declined")
}
