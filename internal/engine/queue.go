package engine

import "github.com/emberchat/ember-server/internal/models"

// JoinQueue appends an idle connection to the waiting list and attempts a
// match. Joining while queued or in a session is a no-op, so a double
// join_queue cannot duplicate an entry.
func (e *Engine) JoinQueue(connID, identifier string, blockList []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil {
		return
	}
	if c.Status != models.StatusIdle {
		e.log.Debug().Str("conn", connID).Str("status", string(c.Status)).Msg("join_queue ignored")
		return
	}

	if identifier != "" {
		e.registerIdentifierLocked(c, identifier)
	}
	c.BlockList = make(map[string]struct{}, len(blockList))
	for _, id := range blockList {
		c.BlockList[id] = struct{}{}
	}

	c.Status = models.StatusQueued
	e.queue = append(e.queue, connID)
	e.log.Info().Str("conn", connID).Int("size", len(e.queue)).Msg("queue joined")

	e.tryMatchLocked()
}

// LeaveQueue removes the connection from the waiting list wherever it is.
func (e *Engine) LeaveQueue(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil {
		return
	}
	e.removeFromQueueLocked(connID)
	if c.Status == models.StatusQueued {
		c.Status = models.StatusIdle
	}
	e.log.Info().Str("conn", connID).Int("size", len(e.queue)).Msg("queue left")
}

func (e *Engine) removeFromQueueLocked(connID string) {
	for i, id := range e.queue {
		if id == connID {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return
		}
	}
}

// tryMatchLocked prunes stale entries, then scans for the first pair not
// excluded by either side's block list. Earliest arrivals are preferred,
// modulated by compatibility rather than pure FIFO. Without block lists
// this degrades to pairing the first two queued connections.
func (e *Engine) tryMatchLocked() {
	pruned := e.queue[:0]
	for _, id := range e.queue {
		if c := e.conns[id]; c != nil && c.Status == models.StatusQueued {
			pruned = append(pruned, id)
		}
	}
	if len(pruned) != len(e.queue) {
		e.log.Debug().Int("size", len(pruned)).Msg("pruned stale queue entries")
	}
	e.queue = pruned

	for i := 0; i < len(e.queue)-1; i++ {
		a := e.conns[e.queue[i]]
		for j := i + 1; j < len(e.queue); j++ {
			b := e.conns[e.queue[j]]
			if a.Blocks(b.Identifier) || b.Blocks(a.Identifier) {
				continue
			}
			// Remove both before creating the session; j first so i's
			// index stays valid.
			e.queue = append(e.queue[:j], e.queue[j+1:]...)
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			e.log.Info().Str("a", a.ID).Str("b", b.ID).Msg("paired")
			e.createSessionLocked(a.ID, b.ID)
			return
		}
	}
	e.log.Debug().Int("size", len(e.queue)).Msg("no eligible pair, waiting")
}
