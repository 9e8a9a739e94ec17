// Package gateway is the read-only query surface of the index system: REST
// endpoints over the store plus a WebSocket fan-out of newly computed index
// records arriving via Redis pub/sub. Nothing here writes to the store; the
// only mutating endpoint republishes a recompute command to the engine.
package gateway

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"index-systemv1/internal/metrics"
	redisstore "index-systemv1/internal/store/redis"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Hub manages WebSocket clients and fans out index records received from the
// engine's Redis channel.
type Hub struct {
	Rdb  *goredis.Client
	prom *metrics.Metrics // optional

	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64
	latest  []byte // last broadcast envelope
	replay  *ReplayBuffer
}

// NewHub creates a Hub. prom may be nil.
func NewHub(rdb *goredis.Client, prom *metrics.Metrics) *Hub {
	return &Hub{
		Rdb:     rdb,
		prom:    prom,
		clients: make(map[*Client]bool),
		replay:  NewReplayBuffer(500),
	}
}

// Run subscribes to the engine's record channel and broadcasts each message.
// Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.Rdb.Subscribe(ctx, redisstore.ChannelDaily)
	defer pubsub.Close()

	log.Printf("[api_gateway] subscribed to %s", redisstore.ChannelDaily)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast([]byte(msg.Payload))
		}
	}
}

// Broadcast wraps an index-record payload in an envelope and fans it out to
// every connected client. The envelope is hand-crafted JSON; seq lets
// clients detect gaps and request replay on reconnect.
func (h *Hub) Broadcast(data []byte) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	buf := make([]byte, 0, len(data)+96)
	buf = append(buf, `{"type":"index_record","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')

	h.replay.Push(seq, buf)

	h.mu.Lock()
	h.latest = buf
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
			// slow client; it will catch up via replay on reconnect
		}
	}
}

// HandleWS upgrades the connection and registers the client. sinceSeq > 0
// requests replay of envelopes the client missed while disconnected.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api_gateway] ws upgrade failed: %v", err)
		return
	}

	var sinceSeq int64
	if s := r.URL.Query().Get("since_seq"); s != "" {
		sinceSeq, _ = strconv.ParseInt(s, 10, 64)
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}
	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.setClientGauge(count)

	log.Printf("[api_gateway] ws client connected (%d total)", count)

	go client.sendInitialState(sinceSeq)
	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	h.setClientGauge(count)
	close(c.send)
}

func (h *Hub) setClientGauge(n int) {
	if h.prom != nil {
		h.prom.WSClients.Set(float64(n))
	}
}
