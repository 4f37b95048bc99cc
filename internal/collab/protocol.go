package collab

import (
	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/document"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   string     `json:"selection,omitempty"` // shape id
	Tool        string     `json:"tool,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	ServerSeq int64  `json:"serverSeq"`
}

// ShapeRecord is a stored shape with its public id.
type ShapeRecord struct {
	ID string `json:"id"`
	document.Record
}

type DocSyncPayload struct {
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Shapes    []ShapeRecord `json:"shapes"`
	ServerSeq int64         `json:"serverSeq"`
}

type HitTestPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type HitResultPayload struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ShapeID string  `json:"shapeId,omitempty"`
	Hit     bool    `json:"hit"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Hit testing
	TypeHitTest   = "hit.test"
	TypeHitResult = "hit.result"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types
const (
	OpShapeCreate = "shape.create"
	OpShapeMove   = "shape.move"
	OpShapeRotate = "shape.rotate"
	OpShapeResize = "shape.resize"
	OpShapeHandle = "shape.handle"
	OpShapeFill   = "shape.fill"
	OpShapeDelete = "shape.delete"
	OpShapeFront  = "shape.front"
	OpCanvasClear = "canvas.clear"
)

// Operation is one edit to a drawing. Only the fields its type uses are set.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	ShapeID   string `json:"shapeId,omitempty"`

	// For shape.create
	Shape *document.Record `json:"shape,omitempty"`

	// For shape.move and shape.handle
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// For shape.rotate: a relative Delta or an absolute Rotation
	Delta    *float64 `json:"delta,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	// For shape.resize
	Factor *float64 `json:"factor,omitempty"`

	// For shape.handle
	Handle string `json:"handle,omitempty"`

	// For shape.fill
	Fill string `json:"fill,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ShapeID         string `json:"shapeId,omitempty"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
