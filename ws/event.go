// Package ws carries the two websocket surfaces.
//
//   - The relay gateway (/gateway): a chat-platform bot streams voice and
//     activity transitions into the server.
//   - The observer feed (/ws): dashboards receive attendance_update events
//     as the reconciler applies them.
//
// Both use the same Hub, Client and Event envelope. Relay clients never
// receive broadcasts and observer clients cannot send transitions.
package ws

// Event is the envelope of every websocket message.
//
// Seq is assigned to outbound broadcasts only; an observer that sees a gap
// knows it missed updates and should re-read the API.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server
const (
	OpHeartbeat        = "heartbeat"
	OpVoiceStateUpdate = "voice_state_update" // relay only, d: models.VoiceStateChange
	OpActivityUpdate   = "activity_update"    // relay only, d: models.ActivityChange
	OpBoundaryEvent    = "boundary_event"     // relay only, d: models.BoundaryEvent
)

// Server → client
const (
	OpReady            = "ready"
	OpHeartbeatAck     = "heartbeat_ack"
	OpAttendanceUpdate = "attendance_update" // d: models.ReconcileOutcome
	OpError            = "error"
)

// ReadyData is sent once after a connection is accepted.
type ReadyData struct {
	Role     Role   `json:"role"`
	Identity string `json:"identity"`
}

// ErrorData reports a rejected inbound event back to the relay.
type ErrorData struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}
