package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentinout/internal/metrics"
)

// JoinAuthorizer decides whether identity may subscribe to room.
type JoinAuthorizer func(identity, room string) bool

// Broadcast is one frame fanned out to a room, possibly across instances.
type Broadcast struct {
	Origin string `json:"origin"`
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Frame  []byte `json:"frame"`
}

// Backplane carries broadcasts between hub instances.
type Backplane interface {
	Publish(ctx context.Context, b Broadcast) error
	Subscribe(ctx context.Context, fn func(Broadcast)) error
}

type HubOptions struct {
	Authorize JoinAuthorizer
	Backplane Backplane
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Hub tracks live connections and the rooms they joined. Nothing it
// relays is persisted.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}

	instance  string
	authorize JoinAuthorizer
	backplane Backplane
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHub(opts HubOptions) *Hub {
	h := &Hub{
		rooms:     make(map[string]map[*Client]struct{}),
		clients:   make(map[*Client]struct{}),
		instance:  uuid.NewString(),
		authorize: opts.Authorize,
		backplane: opts.Backplane,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.authorize == nil {
		h.authorize = func(string, string) bool { return false }
	}
	return h
}

// Run relays broadcasts from other instances until ctx ends.
// Without a backplane it just waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.backplane == nil {
		<-ctx.Done()
		return nil
	}
	return h.backplane.Subscribe(ctx, func(b Broadcast) {
		if b.Origin == h.instance {
			return
		}
		h.deliver(b.Room, b.Frame, nil)
	})
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RelayConnections.Inc()
	}
	h.logger.Debug("Relay client connected", "client", c.id, "identity", c.identity)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	h.mu.Unlock()

	c.stop()
	if h.metrics != nil {
		h.metrics.RelayConnections.Dec()
	}
	h.logger.Debug("Relay client disconnected", "client", c.id, "identity", c.identity)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	delete(c.rooms, room)
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) join(c *Client, room string) bool {
	if room == "" || !h.authorize(c.identity, room) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	return true
}

func (h *Hub) joined(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := c.rooms[room]
	return ok
}

// RoomSize reports how many local connections joined room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// deliver queues frame for every local member of room except one.
// Members whose buffer is full are disconnected.
func (h *Hub) deliver(room string, frame []byte, except *Client) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow relay client", "client", c.id, "room", room)
		h.unregister(c)
	}
}

func (h *Hub) broadcast(ctx context.Context, from *Client, room string, frame []byte) {
	h.deliver(room, frame, from)

	if h.backplane == nil {
		return
	}
	err := h.backplane.Publish(ctx, Broadcast{
		Origin: h.instance,
		Room:   room,
		Sender: from.id,
		Frame:  frame,
	})
	if err != nil {
		h.logger.Error("Relay backplane publish failed", "room", room, "error", err)
	}
}

// handle processes one inbound frame from c.
func (h *Hub) handle(ctx context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.reply(EventError, errorPayload{Message: "malformed event"})
		return
	}
	switch env.Event {
	case EventJoinRoom:
		h.countEvent(env.Event)
		var p roomPayload
		_ = json.Unmarshal(env.Data, &p)
		if !h.join(c, p.RoomID) {
			c.reply(EventError, errorPayload{Message: "not allowed to join room"})
			return
		}
		c.reply(EventJoined, roomPayload{RoomID: p.RoomID})

	case EventSendMessage:
		h.countEvent(env.Event)
		var p chatPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !h.joined(c, p.RoomID) {
			return
		}
		frame, err := encode(EventMessageBack, chatBack{Message: p.Message, UserName: p.UserName, Sender: p.Sender})
		if err != nil {
			return
		}
		h.broadcast(ctx, c, p.RoomID, frame)

	case EventTypingStart, EventTypingEnd:
		h.countEvent(env.Event)
		var p roomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !h.joined(c, p.RoomID) {
			return
		}
		out := EventTyping
		if env.Event == EventTypingEnd {
			out = EventNotTyping
		}
		frame, err := encode(out, p)
		if err != nil {
			return
		}
		h.broadcast(ctx, c, p.RoomID, frame)

	default:
		h.countEvent(unknownEvent)
		h.logger.Debug("Ignoring unknown relay event", "event", env.Event, "client", c.id)
	}
}

// countEvent takes a known event name or unknownEvent, never client input.
func (h *Hub) countEvent(name string) {
	if h.metrics != nil {
		h.metrics.RelayEvents.WithLabelValues(name).Inc()
	}
}
