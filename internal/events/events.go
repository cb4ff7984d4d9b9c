package events

import "encoding/json"

// Envelope is the wire format in both directions: a named event with an
// optional JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names consumed by the engine.
const (
	JoinQueue          = "join_queue"
	LeaveQueue         = "leave_queue"
	LeaveSession       = "leave_session"
	SendMessage        = "send_message"
	SendSpark          = "send_spark"
	SendReaction       = "send_reaction"
	RegisterIdentifier = "register_identifier"
	DMRequest          = "dm_request"
	DMAccept           = "dm_accept"
	DMDecline          = "dm_decline"
	DMMessage          = "dm_message"
	DMEnd              = "dm_end"
	FlameRequest       = "flame_request"
	FlameAccept        = "flame_accept"
	FlameDecline       = "flame_decline"
)

// Outbound event names produced by the engine.
const (
	Matched        = "matched"
	SessionEnded   = "session_ended"
	SparkApplied   = "spark_applied"
	ReactionResult = "reaction_result"
	ReceiveMessage = "receive_message"
	DMIncoming     = "dm_incoming"
	DMReady        = "dm_ready"
	DMDeclined     = "dm_declined"
	DMError        = "dm_error"
	DMEnded        = "dm_ended"
	DMReceive      = "dm_receive"
	FlameIncoming  = "flame_incoming"
	FlameAccepted  = "flame_accepted"
	FlameDeclined  = "flame_declined"
)
