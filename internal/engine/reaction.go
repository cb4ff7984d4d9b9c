package engine

import (
	"github.com/google/uuid"

	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// openReactionWindowLocked starts the post-timeout voting period for the
// two participants of the just-ended session.
func (e *Engine) openReactionWindowLocked(users [2]string) {
	id := "reaction_" + uuid.NewString()
	w := &models.ReactionWindow{
		ID:    id,
		Users: users,
		Votes: make(map[string]models.Reaction, 2),
	}
	for _, uid := range users {
		if c := e.conns[uid]; c != nil {
			c.ReactionRoomID = id
		}
	}
	w.Timer = e.sched.Schedule(e.cfg.ReactionWindow, func() { e.windowExpired(id) })
	e.windows[id] = w
	e.log.Info().Str("window", id).Msg("reaction window opened")
}

// SendReaction records a vote in the caller's reaction window. A cross
// from either side resolves the window to end immediately; two flames
// resolve it to continue. Duplicate votes are ignored.
func (e *Engine) SendReaction(connID string, reaction models.Reaction) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || c.ReactionRoomID == "" {
		return
	}
	w := e.windows[c.ReactionRoomID]
	if w == nil || w.Resolved || !w.Has(connID) {
		return
	}
	if _, voted := w.Votes[connID]; voted {
		return
	}
	w.Votes[connID] = reaction

	if reaction == models.ReactionCross {
		e.resolveWindowLocked(w, models.ResultEnd)
		return
	}
	if len(w.Votes) == 2 {
		e.resolveWindowLocked(w, models.ResultContinue)
	}
}

// resolveWindowLocked settles a window exactly once: the deadline timer is
// cancelled, both participants' window references are cleared and each
// still-connected participant hears the result along with the
// counterpart's identifier. It only reports the outcome; re-entering the
// queue on continue is the client's own move.
func (e *Engine) resolveWindowLocked(w *models.ReactionWindow, result string) {
	if w.Resolved {
		return
	}
	w.Resolved = true
	if w.Timer != nil {
		w.Timer.Stop()
	}
	delete(e.windows, w.ID)

	for _, uid := range w.Users {
		c := e.conns[uid]
		if c == nil {
			continue
		}
		c.ReactionRoomID = ""

		partnerIdentifier := ""
		if p := e.conns[w.Partner(uid)]; p != nil {
			partnerIdentifier = p.Identifier
		}
		e.emit.ToConnection(uid, events.ReactionResult, events.ReactionResultPayload{
			Result:            result,
			PartnerIdentifier: partnerIdentifier,
		})
	}
	e.log.Info().Str("window", w.ID).Str("result", result).Msg("reaction window resolved")
}

// windowExpired is the deadline timer callback; an unresolved window
// force-resolves to end. A stale fire after resolution is a no-op.
func (e *Engine) windowExpired(windowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.windows[windowID]
	if w == nil {
		return
	}
	e.resolveWindowLocked(w, models.ResultEnd)
}
