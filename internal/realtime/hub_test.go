package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testHub(bp Backplane) *Hub {
	return NewHub(HubOptions{
		Authorize: policy.CanJoin,
		Backplane: bp,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   metrics.New(nil),
	})
}

func connect(h *Hub, identity string) *Client {
	c := newClient(h, nil, identity)
	h.register(c)
	return c
}

func frame(t *testing.T, event string, data interface{}) []byte {
	t.Helper()
	b, err := encode(event, data)
	require.NoError(t, err)
	return b
}

func next(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return Envelope{}
	}
}

func empty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame %s", raw)
	default:
	}
}

func TestJoinRequiresParticipant(t *testing.T) {
	h := testHub(nil)
	a, b, stranger := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	room := policy.RoomID(a, b, primitive.NilObjectID)

	alice := connect(h, a.Hex())
	eve := connect(h, stranger.Hex())

	h.handle(context.Background(), alice, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	assert.Equal(t, EventJoined, next(t, alice).Event)

	h.handle(context.Background(), eve, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	env := next(t, eve)
	assert.Equal(t, EventError, env.Event)
	assert.Equal(t, 1, h.RoomSize(room))
}

func TestMessageReachesOtherMembersOnly(t *testing.T) {
	h := testHub(nil)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	room := policy.RoomID(a, b, primitive.NilObjectID)
	ctx := context.Background()

	alice := connect(h, a.Hex())
	bob := connect(h, b.Hex())
	h.handle(ctx, alice, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	h.handle(ctx, bob, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	next(t, alice)
	next(t, bob)

	h.handle(ctx, alice, frame(t, EventSendMessage, chatPayload{RoomID: room, Message: "hi", UserName: "Alice", Sender: a.Hex()}))

	env := next(t, bob)
	assert.Equal(t, EventMessageBack, env.Event)
	var got chatBack
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, chatBack{Message: "hi", UserName: "Alice", Sender: a.Hex()}, got)
	empty(t, alice)

	h.handle(ctx, bob, frame(t, EventTypingStart, roomPayload{RoomID: room}))
	assert.Equal(t, EventTyping, next(t, alice).Event)
	h.handle(ctx, bob, frame(t, EventTypingEnd, roomPayload{RoomID: room}))
	assert.Equal(t, EventNotTyping, next(t, alice).Event)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RelayEvents.WithLabelValues(EventSendMessage)))
}

func TestEventsForUnjoinedRoomDropped(t *testing.T) {
	h := testHub(nil)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	room := policy.RoomID(a, b, primitive.NilObjectID)
	ctx := context.Background()

	alice := connect(h, a.Hex())
	bob := connect(h, b.Hex())
	h.handle(ctx, bob, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	next(t, bob)

	h.handle(ctx, alice, frame(t, EventSendMessage, chatPayload{RoomID: room, Message: "sneaky"}))
	empty(t, bob)
}

func TestUnknownEventsShareOneSeries(t *testing.T) {
	h := testHub(nil)
	alice := connect(h, primitive.NewObjectID().Hex())

	for i := 0; i < 50; i++ {
		h.handle(context.Background(), alice, frame(t, fmt.Sprintf("junk-%d", i), roomPayload{}))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(h.metrics.RelayEvents))
	assert.Equal(t, 50.0, testutil.ToFloat64(h.metrics.RelayEvents.WithLabelValues(unknownEvent)))
	empty(t, alice)
}

func TestDisconnectLeavesRooms(t *testing.T) {
	h := testHub(nil)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	room := policy.RoomID(a, b, primitive.NilObjectID)

	alice := connect(h, a.Hex())
	h.handle(context.Background(), alice, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	require.Equal(t, 1, h.RoomSize(room))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RelayConnections))

	h.unregister(alice)
	assert.Equal(t, 0, h.RoomSize(room))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.RelayConnections))

	// second unregister is a no-op
	h.unregister(alice)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.RelayConnections))
}

type memoryBackplane struct {
	mu   sync.Mutex
	subs []func(Broadcast)
}

func (m *memoryBackplane) Publish(_ context.Context, b Broadcast) error {
	m.mu.Lock()
	subs := append([]func(Broadcast){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(b)
	}
	return nil
}

func (m *memoryBackplane) Subscribe(ctx context.Context, fn func(Broadcast)) error {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (m *memoryBackplane) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func TestBackplaneCrossesInstances(t *testing.T) {
	bp := &memoryBackplane{}
	one, two := testHub(bp), testHub(bp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = one.Run(ctx) }()
	go func() { _ = two.Run(ctx) }()
	require.Eventually(t, func() bool { return bp.subscribers() == 2 }, time.Second, 10*time.Millisecond)

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	room := policy.RoomID(a, b, primitive.NilObjectID)

	alice := connect(one, a.Hex())
	bob := connect(two, b.Hex())
	one.handle(ctx, alice, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	two.handle(ctx, bob, frame(t, EventJoinRoom, roomPayload{RoomID: room}))
	next(t, alice)
	next(t, bob)

	one.handle(ctx, alice, frame(t, EventSendMessage, chatPayload{RoomID: room, Message: "across", Sender: a.Hex()}))
	assert.Equal(t, EventMessageBack, next(t, bob).Event)
	// the origin instance ignores its own broadcast
	empty(t, alice)
}
