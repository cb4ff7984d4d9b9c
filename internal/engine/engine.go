package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/emberchat/ember-server/internal/config"
	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// Emitter delivers outbound events to connections and rooms. Delivery is
// fire-and-forget: implementations must never block the caller.
type Emitter interface {
	ToConnection(connID, event string, payload any)
	ToRoom(roomID, event string, payload any)
	Join(connID, roomID string)
	Leave(connID, roomID string)
}

// Scheduler defers a one-shot callback. The returned handle cancels it.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) models.Stopper
}

// Engine is the matchmaking and session lifecycle core. It owns every
// mutable collection (connections, queue, sessions, reaction windows,
// pending handshakes) behind a single mutex, so each inbound event or
// timer fire runs as one complete, non-interleaved handler turn.
type Engine struct {
	mu    sync.Mutex
	cfg   *config.Config
	emit  Emitter
	sched Scheduler
	log   zerolog.Logger

	conns       map[string]*models.Connection
	queue       []string
	identifiers map[string]string // identifier -> connection id

	sessions      map[string]*models.Session
	windows       map[string]*models.ReactionWindow
	dmRequests    map[string]*models.PendingDMRequest
	flameRequests map[string]*models.PendingFlameRequest
	dmSessions    map[string]*models.DMSession
}

// New creates an engine. The emitter and scheduler are injected so tests
// can record events and fire timers deterministically.
func New(cfg *config.Config, emit Emitter, sched Scheduler, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:           cfg,
		emit:          emit,
		sched:         sched,
		log:           logger.With().Str("component", "engine").Logger(),
		conns:         make(map[string]*models.Connection),
		identifiers:   make(map[string]string),
		sessions:      make(map[string]*models.Session),
		windows:       make(map[string]*models.ReactionWindow),
		dmRequests:    make(map[string]*models.PendingDMRequest),
		flameRequests: make(map[string]*models.PendingFlameRequest),
		dmSessions:    make(map[string]*models.DMSession),
	}
}

// Connect registers a new idle connection.
func (e *Engine) Connect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.conns[connID] = &models.Connection{ID: connID, Status: models.StatusIdle}
	e.log.Info().Str("conn", connID).Msg("connected")
}

// Disconnect cascades cleanup through every component so nothing keeps a
// reference to the vanished connection. The reason is informational only.
func (e *Engine) Disconnect(connID, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil {
		return
	}
	e.log.Info().Str("conn", connID).Str("reason", reason).Msg("disconnected")

	// Pending handshakes go first: a requester whose still-pending target
	// vanished hears the implicit decline before the session sweep below
	// silently drops requests tied to the ending room.
	e.dropPendingLocked(connID)

	e.removeFromQueueLocked(connID)
	if c.RoomID != "" {
		e.endSessionLocked(c.RoomID, models.ReasonPartnerDisconnected)
	}
	if c.ReactionRoomID != "" {
		if w := e.windows[c.ReactionRoomID]; w != nil {
			e.resolveWindowLocked(w, models.ResultEnd)
		}
	}
	if c.DMRoomID != "" {
		e.endDMLocked(c.DMRoomID, models.ReasonPartnerOffline)
	}
	if c.Identifier != "" && e.identifiers[c.Identifier] == connID {
		delete(e.identifiers, c.Identifier)
	}
	delete(e.conns, connID)
}

// RegisterIdentifier records a self-asserted identifier for the
// connection. The last registration wins, including across connections.
func (e *Engine) RegisterIdentifier(connID, identifier string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.conns[connID]
	if c == nil || identifier == "" {
		return
	}
	e.registerIdentifierLocked(c, identifier)
}

func (e *Engine) registerIdentifierLocked(c *models.Connection, identifier string) {
	if c.Identifier != "" && e.identifiers[c.Identifier] == c.ID {
		delete(e.identifiers, c.Identifier)
	}
	c.Identifier = identifier
	e.identifiers[identifier] = c.ID
}

// Stats reports the current queue length and active session count.
func (e *Engine) Stats() (queued, sessions int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue), len(e.sessions)
}

func (e *Engine) dropPendingLocked(connID string) {
	for id, r := range e.dmRequests {
		switch connID {
		case r.FromID:
			delete(e.dmRequests, id)
		case r.TargetID:
			delete(e.dmRequests, id)
			e.emit.ToConnection(r.FromID, events.DMDeclined, struct{}{})
		}
	}
	for id, r := range e.flameRequests {
		switch connID {
		case r.FromID:
			delete(e.flameRequests, id)
		case r.TargetID:
			delete(e.flameRequests, id)
			e.emit.ToConnection(r.FromID, events.FlameDeclined, struct{}{})
		}
	}
}
