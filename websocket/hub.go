package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"salon-server/events"
)

// Observer is a subscription handle. Events arrive on Events() in publish
// order until the observer is unsubscribed, at which point the channel closes.
type Observer struct {
	id     string
	events chan events.Event
}

func (o *Observer) ID() string                     { return o.id }
func (o *Observer) Events() <-chan events.Event { return o.events }

// Sink receives every event published on this instance. Forward must not
// block.
type Sink interface {
	Forward(events.Event)
}

// Message is the envelope written to WebSocket clients
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans change events out to observers and keeps a short history for
// clients that poll instead of holding a socket open.
type Hub struct {
	origin      string
	bufferSize  int
	historySize int

	mu        sync.RWMutex
	observers map[*Observer]struct{}
	clients   map[*Client]struct{}
	sinks     []Sink
	history   []events.Event
	seq       uint64
	dropped   uint64
	closed    bool
}

// NewHub creates a hub whose observers buffer bufferSize events each and
// whose poll history holds historySize events.
func NewHub(bufferSize, historySize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if historySize < 0 {
		historySize = 0
	}
	return &Hub{
		origin:      uuid.NewString(),
		bufferSize:  bufferSize,
		historySize: historySize,
		observers:   make(map[*Observer]struct{}),
		clients:     make(map[*Client]struct{}),
	}
}

// Origin identifies this process on events it publishes.
func (h *Hub) Origin() string {
	return h.origin
}

// AddSink registers a downstream consumer of locally published events.
func (h *Hub) AddSink(s Sink) {
	h.mu.Lock()
	h.sinks = append(h.sinks, s)
	h.mu.Unlock()
}

func (h *Hub) Subscribe() *Observer {
	o := &Observer{id: uuid.NewString(), events: make(chan events.Event, h.bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(o.events)
		return o
	}
	h.observers[o] = struct{}{}
	return o
}

// Unsubscribe removes o and closes its channel. Calling it again is a no-op.
func (h *Hub) Unsubscribe(o *Observer) {
	if o == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[o]; ok {
		delete(h.observers, o)
		close(o.events)
	}
}

// Publish delivers an event raised on this instance to every observer and
// to the registered sinks. It never blocks on a slow observer.
func (h *Hub) Publish(ev events.Event) {
	h.deliver(ev, true)
}

// Deliver fans out an event that originated elsewhere. Sinks are skipped so
// relayed events are not echoed back to the broker.
func (h *Hub) Deliver(ev events.Event) {
	h.deliver(ev, false)
}

func (h *Hub) deliver(ev events.Event, forward bool) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if ev.Origin == "" {
		ev.Origin = h.origin
	}
	h.seq++
	ev.Seq = h.seq
	h.remember(ev)

	// Sends happen under the lock so every observer sees events in the
	// same order they were published.
	for o := range h.observers {
		select {
		case o.events <- ev:
		default:
			h.dropped++
			log.Printf("⚠️ Observer %s buffer is full, dropping %s event for %s %s", o.id, ev.Type, ev.Kind, ev.EntityID)
		}
	}

	var sinks []Sink
	if forward {
		sinks = append(sinks, h.sinks...)
	}
	h.mu.Unlock()

	for _, s := range sinks {
		s.Forward(ev)
	}
}

func (h *Hub) remember(ev events.Event) {
	if h.historySize == 0 {
		return
	}
	h.history = append(h.history, ev)
	if over := len(h.history) - h.historySize; over > 0 {
		h.history = append([]events.Event(nil), h.history[over:]...)
	}
}

// Since returns the retained events with a sequence number greater than
// after, plus the latest sequence number. resync is true when events after
// the cursor have already been evicted (or the cursor is from a previous
// process), in which case the caller should re-fetch full state.
func (h *Hub) Since(after uint64) (evs []events.Event, latest uint64, resync bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	latest = h.seq
	if after > latest {
		return append([]events.Event(nil), h.history...), latest, true
	}
	if after == latest {
		return []events.Event{}, latest, false
	}
	if len(h.history) == 0 || h.history[0].Seq > after+1 {
		return append([]events.Event(nil), h.history...), latest, true
	}

	evs = make([]events.Event, 0, latest-after)
	for _, ev := range h.history {
		if ev.Seq > after {
			evs = append(evs, ev)
		}
	}
	return evs, latest, false
}

// Stats reports connected observers, sockets and dropped deliveries.
func (h *Hub) Stats() (observers, clients int, dropped uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers), len(h.clients), h.dropped
}

// BroadcastMessage writes msg to every connected socket, skipping sockets
// whose send buffer is full.
func (h *Hub) BroadcastMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("⚠️ Client %s send buffer is full, dropping %s message", c.observer.id, msg.Type)
		}
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	log.Printf("🔌 Admin client registered: user=%d observer=%s", c.UserID, c.observer.id)
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Printf("🔌 Admin client unregistered: user=%d observer=%s", c.UserID, c.observer.id)
	}
}

// Close tells every socket the stream is ending and releases all observers.
func (h *Hub) Close() {
	bye, _ := json.Marshal(&Message{Type: "disconnected", Timestamp: time.Now()})

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		select {
		case c.send <- bye:
		default:
		}
		delete(h.clients, c)
		close(c.send)
	}
	for o := range h.observers {
		delete(h.observers, o)
		close(o.events)
	}
}
