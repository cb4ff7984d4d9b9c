package handlers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/emberchat/ember-server/internal/config"
	"github.com/emberchat/ember-server/internal/engine"
	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// Router adapts transport events into engine calls. Payloads are decoded
// into their tagged structs and sanitized here, before any domain logic
// runs; malformed payloads are dropped without acknowledgment.
type Router struct {
	engine *engine.Engine
	cfg    *config.Config
	log    zerolog.Logger
	routes map[string]func(connID string, data json.RawMessage)
}

// NewRouter builds the dispatch table over the engine.
func NewRouter(eng *engine.Engine, cfg *config.Config, logger zerolog.Logger) *Router {
	r := &Router{
		engine: eng,
		cfg:    cfg,
		log:    logger.With().Str("component", "handlers").Logger(),
	}
	r.routes = map[string]func(string, json.RawMessage){
		events.JoinQueue:          r.joinQueue,
		events.LeaveQueue:         r.leaveQueue,
		events.LeaveSession:       r.leaveSession,
		events.SendMessage:        r.sendMessage,
		events.SendSpark:          r.sendSpark,
		events.SendReaction:       r.sendReaction,
		events.RegisterIdentifier: r.registerIdentifier,
		events.DMRequest:          r.dmRequest,
		events.DMAccept:           r.dmAccept,
		events.DMDecline:          r.dmDecline,
		events.DMMessage:          r.dmMessage,
		events.DMEnd:              r.dmEnd,
		events.FlameRequest:       r.flameRequest,
		events.FlameAccept:        r.flameAccept,
		events.FlameDecline:       r.flameDecline,
	}
	return r
}

// Connected implements transport.Router.
func (r *Router) Connected(connID string) {
	r.engine.Connect(connID)
}

// Disconnected implements transport.Router.
func (r *Router) Disconnected(connID, reason string) {
	r.engine.Disconnect(connID, reason)
}

// HandleEvent dispatches one inbound envelope. Unknown events are dropped.
func (r *Router) HandleEvent(connID string, env events.Envelope) {
	h := r.routes[env.Event]
	if h == nil {
		r.log.Debug().Str("conn", connID).Str("event", env.Event).Msg("unknown event dropped")
		return
	}
	h(connID, env.Data)
}

func (r *Router) joinQueue(connID string, data json.RawMessage) {
	// The whole payload is optional; loose fields are normalized and
	// anything unusable is treated as absent.
	var p events.JoinQueuePayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}
	identifier := stringValue(p.Identifier, r.cfg.IdentifierMaxLen)
	blockList := stringList(p.BlockList, r.cfg.BlockListMax)
	r.engine.JoinQueue(connID, identifier, blockList)
}

func (r *Router) leaveQueue(connID string, _ json.RawMessage) {
	r.engine.LeaveQueue(connID)
}

func (r *Router) leaveSession(connID string, _ json.RawMessage) {
	r.engine.LeaveSession(connID)
}

func (r *Router) sendMessage(connID string, data json.RawMessage) {
	var p events.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	message, ok := clampText(p.Message, r.cfg.MessageMaxLen)
	if !ok {
		return
	}
	r.engine.SendMessage(connID, p.RoomID, message)
}

func (r *Router) sendSpark(connID string, _ json.RawMessage) {
	r.engine.SendSpark(connID)
}

func (r *Router) sendReaction(connID string, data json.RawMessage) {
	var p events.SendReactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	reaction := models.Reaction(p.Reaction)
	if reaction != models.ReactionFlame && reaction != models.ReactionCross {
		return
	}
	r.engine.SendReaction(connID, reaction)
}

func (r *Router) registerIdentifier(connID string, data json.RawMessage) {
	var p events.RegisterIdentifierPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	identifier := stringValue(p.Identifier, r.cfg.IdentifierMaxLen)
	if identifier == "" {
		return
	}
	r.engine.RegisterIdentifier(connID, identifier)
}

func (r *Router) dmRequest(connID string, data json.RawMessage) {
	var p events.DMRequestPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TargetIdentifier == "" {
		return
	}
	r.engine.DMRequest(connID, p.TargetIdentifier)
}

func (r *Router) dmAccept(connID string, data json.RawMessage) {
	if id, ok := requestID(data); ok {
		r.engine.DMAccept(connID, id)
	}
}

func (r *Router) dmDecline(connID string, data json.RawMessage) {
	if id, ok := requestID(data); ok {
		r.engine.DMDecline(connID, id)
	}
}

func (r *Router) dmMessage(connID string, data json.RawMessage) {
	var p events.DMMessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.DMRoomID == "" {
		return
	}
	message, ok := clampText(p.Message, r.cfg.MessageMaxLen)
	if !ok {
		return
	}
	r.engine.DMMessage(connID, p.DMRoomID, message)
}

func (r *Router) dmEnd(connID string, _ json.RawMessage) {
	r.engine.DMEnd(connID)
}

func (r *Router) flameRequest(connID string, _ json.RawMessage) {
	r.engine.FlameRequest(connID)
}

func (r *Router) flameAccept(connID string, data json.RawMessage) {
	if id, ok := requestID(data); ok {
		r.engine.FlameAccept(connID, id)
	}
}

func (r *Router) flameDecline(connID string, data json.RawMessage) {
	if id, ok := requestID(data); ok {
		r.engine.FlameDecline(connID, id)
	}
}

func requestID(data json.RawMessage) (string, bool) {
	var p events.RequestIDPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RequestID == "" {
		return "", false
	}
	return p.RequestID, true
}
