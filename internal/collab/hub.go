package collab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

const loadTimeout = 10 * time.Second

// Store loads and saves the canvas behind a drawing.
type Store interface {
	LoadCanvas(ctx context.Context, drawingID string) (width, height float64, shapes []geometry.Shape, err error)
	SaveCanvas(ctx context.Context, drawingID string, shapes []geometry.Shape) error
}

type Room struct {
	drawingID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DrawingState
}

func NewRoom(drawingID string, state *DrawingState) *Room {
	return &Room{
		drawingID: drawingID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     state,
	}
}

type HubOption func(*Hub)

// WithAutosave saves rooms with unsaved edits every interval.
func WithAutosave(interval time.Duration) HubOption {
	return func(h *Hub) { h.autosave = interval }
}

// WithEditorOptions configures the editor behind every room.
func WithEditorOptions(opts ...editor.Option) HubOption {
	return func(h *Hub) { h.editorOpts = opts }
}

// WithCanvasSize sets the canvas used when there is no store.
func WithCanvasSize(width, height float64) HubOption {
	return func(h *Hub) { h.width, h.height = width, height }
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // drawingID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	store      Store
	editorOpts []editor.Option
	autosave   time.Duration
	width      float64
	height     float64
}

// NewHub creates a hub. A nil store gives every drawing a fresh empty canvas
// and never saves.
func NewHub(store Store, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		store:      store,
		width:      800,
		height:     600,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Run() {
	var tick <-chan time.Time
	if h.autosave > 0 && h.store != nil {
		ticker := time.NewTicker(h.autosave)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-tick:
			h.saveAll()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Stop ends Run and saves every room with unsaved edits.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	h.saveAll()
}

// Room returns the live state of a drawing, if any client has it open.
func (h *Hub) Room(drawingID string) (*DrawingState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[drawingID]
	if !ok {
		return nil, false
	}
	return room.state, true
}

func (h *Hub) loadState(drawingID string) (*DrawingState, error) {
	if h.store == nil {
		return NewDrawingState(h.width, h.height, nil, h.editorOpts...), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	w, ht, shapes, err := h.store.LoadCanvas(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	return NewDrawingState(w, ht, shapes, h.editorOpts...), nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.DrawingID]
	h.mu.RUnlock()

	if !ok {
		state, err := h.loadState(client.DrawingID)
		if err != nil {
			slog.Error("load drawing", "error", err, "drawing", client.DrawingID)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "failed to load drawing"}))
			client.close()
			return
		}
		room = NewRoom(client.DrawingID, state)
		h.mu.Lock()
		h.rooms[client.DrawingID] = room
		h.mu.Unlock()
		activeRooms.Inc()
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()
	connectedClients.Inc()

	snap := room.state.Sync()
	welcome := newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		ServerSeq: snap.ServerSeq,
	})
	client.Send(welcome)
	client.Send(syncMessage(snap))

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.DrawingID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DrawingID)
	}
	h.mu.Unlock()
	connectedClients.Dec()

	if empty {
		activeRooms.Dec()
		h.saveRoom(room)
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.DrawingID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) saveRoom(room *Room) {
	if h.store == nil || !room.state.TakeUnsaved() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if err := h.store.SaveCanvas(ctx, room.drawingID, room.state.Snapshot()); err != nil {
		room.state.MarkUnsaved()
		savesTotal.WithLabelValues(resultError).Inc()
		slog.Error("save drawing", "error", err, "drawing", room.drawingID)
		return
	}
	savesTotal.WithLabelValues(resultOK).Inc()
	slog.Debug("drawing saved", "drawing", room.drawingID, "seq", room.state.Seq())
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeHitTest:
		h.handleHitTest(sender, msg)
	case TypeDocSync:
		if room := h.room(sender.DrawingID); room != nil {
			sender.Send(syncMessage(room.state.Sync()))
		}
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func syncMessage(p DocSyncPayload) *Message {
	msg := newMessage(TypeDocSync, p)
	msg.Seq = p.ServerSeq
	return msg
}

func (h *Hub) room(drawingID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[drawingID]
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room := h.room(sender.DrawingID)
	if room == nil {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.DrawingID, outMsg, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	op := submit.Operation

	room := h.room(sender.DrawingID)
	if room == nil {
		return
	}

	seq, err := room.state.ApplyOperation(&op)
	if err != nil {
		operationsTotal.WithLabelValues(op.Type, resultError).Inc()
		slog.Debug("operation rejected", "error", err, "op", op.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}
	operationsTotal.WithLabelValues(op.Type, resultOK).Inc()

	switch op.Type {
	case OpShapeDelete:
		room.presence.ClearSelection(op.ShapeID)
	case OpCanvasClear:
		room.presence.ClearSelection("")
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ShapeID:         op.ShapeID,
		ServerSeq:       seq,
		ServerTimestamp: time.Now().UnixMilli(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.UserID = sender.UserID
	out.Seq = seq
	h.broadcastToRoom(sender.DrawingID, out, sender.ClientID)
}

func (h *Hub) handleHitTest(sender *Client, msg *Message) {
	var req HitTestPayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Warn("invalid hit test payload", "error", err, "user", sender.UserID)
		return
	}
	room := h.room(sender.DrawingID)
	if room == nil {
		return
	}

	shapeID, ok, rebuilt := room.state.HitTest(req.X, req.Y)
	if rebuilt {
		indexRebuildsTotal.Inc()
	}
	result := resultMiss
	if ok {
		result = resultHit
	}
	hitTestsTotal.WithLabelValues(result).Inc()

	sender.Send(newMessage(TypeHitResult, HitResultPayload{X: req.X, Y: req.Y, ShapeID: shapeID, Hit: ok}))
}

func (h *Hub) broadcastToRoom(drawingID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[drawingID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
