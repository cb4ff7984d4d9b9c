package events

// Inbound payloads. Clients self-assert everything here, so the boundary
// tolerates loose typing where the protocol does (identifier and block list
// entries) and the dispatcher normalizes before any engine call.

// JoinQueuePayload accompanies join_queue. Identifier may be any JSON
// value; non-strings are treated as absent. Non-string block list entries
// are discarded entry by entry rather than failing the whole event.
type JoinQueuePayload struct {
	Identifier any   `json:"identifier"`
	BlockList  []any `json:"blockList"`
}

// RegisterIdentifierPayload accompanies register_identifier.
type RegisterIdentifierPayload struct {
	Identifier any `json:"identifier"`
}

// SendMessagePayload accompanies send_message.
type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// SendReactionPayload accompanies send_reaction.
type SendReactionPayload struct {
	Reaction string `json:"reaction"`
}

// DMRequestPayload accompanies dm_request.
type DMRequestPayload struct {
	TargetIdentifier string `json:"targetIdentifier"`
}

// RequestIDPayload accompanies dm_accept, dm_decline, flame_accept and
// flame_decline.
type RequestIDPayload struct {
	RequestID string `json:"requestId"`
}

// DMMessagePayload accompanies dm_message.
type DMMessagePayload struct {
	DMRoomID string `json:"dmRoomId"`
	Message  string `json:"message"`
}

// Outbound payloads. Timestamps are Unix milliseconds.

// MatchedPayload announces a new session to both participants.
type MatchedPayload struct {
	RoomID            string `json:"roomId"`
	StartTime         int64  `json:"startTime"`
	Duration          int64  `json:"duration"`
	PartnerIdentifier string `json:"partnerIdentifier"`
}

// SessionEndedPayload announces the end of a session to its room.
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}

// SparkAppliedPayload broadcasts a successful time extension.
type SparkAppliedPayload struct {
	SenderID         string `json:"senderId"`
	NewEndTime       int64  `json:"newEndTime"`
	SenderSparksLeft int    `json:"senderSparksLeft"`
}

// ReactionResultPayload reports the outcome of a reaction window.
type ReactionResultPayload struct {
	Result            string `json:"result"`
	PartnerIdentifier string `json:"partnerIdentifier"`
}

// MessagePayload carries a chat message, for both receive_message and
// dm_receive.
type MessagePayload struct {
	ID        string `json:"id"`
	SenderID  string `json:"senderId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// DMIncomingPayload notifies a target of a pending DM request.
type DMIncomingPayload struct {
	RequestID      string `json:"requestId"`
	FromIdentifier string `json:"fromIdentifier"`
}

// DMReadyPayload announces an accepted DM handshake to both sides.
type DMReadyPayload struct {
	DMRoomID          string `json:"dmRoomId"`
	PartnerIdentifier string `json:"partnerIdentifier"`
}

// DMErrorPayload is the only negative acknowledgment the DM broker emits.
type DMErrorPayload struct {
	Reason string `json:"reason"`
}

// DMEndedPayload announces the end of a DM session to its room.
type DMEndedPayload struct {
	Reason string `json:"reason"`
}

// FlameIncomingPayload notifies a target of a pending continuation request.
type FlameIncomingPayload struct {
	RequestID      string `json:"requestId"`
	FromIdentifier string `json:"fromIdentifier"`
}

// FlameAcceptedPayload reports an accepted continuation to each side.
type FlameAcceptedPayload struct {
	PartnerIdentifier string `json:"partnerIdentifier"`
}
