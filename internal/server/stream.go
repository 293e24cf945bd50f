package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"

	"github.com/aristath/qho/internal/modules/animation"
)

const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"

	streamWriteTimeout = 5 * time.Second
)

// StreamMessage is one websocket message. The client ID is only set on the
// greeting.
type StreamMessage struct {
	Type   string              `json:"type"`
	Client string              `json:"client,omitempty"`
	Frame  *animation.Frame    `json:"frame,omitempty"`
	State  *animation.Snapshot `json:"state,omitempty"`
	Error  string              `json:"error,omitempty"`
}

type streamClient struct {
	id       string
	encoding string
	send     chan []byte
}

// ClientReadLimit is a websocket read limit large enough for frames of the
// default configuration. Frames grow with levels times grid samples, and
// nhooyr.io/websocket clients start at 32 KiB, so Go clients must call
// conn.SetReadLimit before reading.
const ClientReadLimit = 1 << 22

// StreamHub fans animation frames out to websocket clients. It implements
// animation.Sink; a client whose queue is full misses frames rather than
// holding up the driver. Frames routinely exceed 32 KiB; see ClientReadLimit.
type StreamHub struct {
	ctx     context.Context
	sampler *animation.Sampler
	buffer  int
	origins []string
	log     zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*streamClient

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewStreamHub creates a hub. Connections are closed when ctx is done. allowedOrigins
// holds full origins ("http://localhost:3000") or "*".
func NewStreamHub(ctx context.Context, sampler *animation.Sampler, buffer int, allowedOrigins []string, log zerolog.Logger) *StreamHub {
	if buffer < 1 {
		buffer = 1
	}
	return &StreamHub{
		ctx:     ctx,
		sampler: sampler,
		buffer:  buffer,
		origins: originPatterns(allowedOrigins),
		log:     log.With().Str("component", "stream_hub").Logger(),
		clients: make(map[string]*streamClient),
	}
}

// originPatterns converts origins to the host patterns websocket.Accept
// matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// ServeHTTP handles GET /api/oscillator/stream
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	encoding := r.URL.Query().Get("encoding")
	if encoding == "" {
		encoding = EncodingJSON
	}
	if encoding != EncodingJSON && encoding != EncodingMsgpack {
		http.Error(w, fmt.Sprintf("unsupported encoding %q", encoding), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	client := h.register(encoding)
	defer h.unregister(client.id)

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx once the peer goes away. Shutdown goes through h.ctx so the
	// peer gets a close frame instead of a dropped connection.
	ctx := conn.CloseRead(context.Background())

	snap := h.sampler.Snapshot()
	hello, err := encodeMessage(encoding, &StreamMessage{Type: "config", Client: client.id, State: &snap})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode greeting")
		return
	}
	if err := h.write(ctx, conn, encoding, hello); err != nil {
		return
	}

	for {
		select {
		case <-h.ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-ctx.Done():
			return
		case payload := <-client.send:
			if err := h.write(ctx, conn, encoding, payload); err != nil {
				h.log.Debug().Err(err).Str("client", client.id).Msg("Stream write failed")
				return
			}
		}
	}
}

func (h *StreamHub) write(ctx context.Context, conn *websocket.Conn, encoding string, payload []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()

	typ := websocket.MessageText
	if encoding == EncodingMsgpack {
		typ = websocket.MessageBinary
	}
	return conn.Write(writeCtx, typ, payload)
}

func (h *StreamHub) register(encoding string) *streamClient {
	c := &streamClient{
		id:       uuid.New().String(),
		encoding: encoding,
		send:     make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info().
		Str("client", c.id).
		Str("encoding", encoding).
		Int("clients", count).
		Msg("Stream client connected")
	return c
}

func (h *StreamHub) unregister(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info().Str("client", id).Int("clients", count).Msg("Stream client disconnected")
}

// RenderFrame implements animation.Sink
func (h *StreamHub) RenderFrame(frame *animation.Frame) error {
	return h.broadcast(&StreamMessage{Type: "frame", Frame: frame})
}

// RenderError implements animation.Sink
func (h *StreamHub) RenderError(err error) {
	if err := h.broadcast(&StreamMessage{Type: "error", Error: err.Error()}); err != nil {
		h.log.Error().Err(err).Msg("Failed to broadcast error")
	}
}

func (h *StreamHub) broadcast(msg *StreamMessage) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Each encoding is produced at most once per message.
	payloads := make(map[string][]byte, 2)
	for _, c := range h.clients {
		payload, ok := payloads[c.encoding]
		if !ok {
			var err error
			payload, err = encodeMessage(c.encoding, msg)
			if err != nil {
				return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
			}
			payloads[c.encoding] = payload
		}

		select {
		case c.send <- payload:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StreamStats counts queued and dropped messages.
type StreamStats struct {
	Clients int   `json:"clients"`
	Sent    int64 `json:"sent"`
	Dropped int64 `json:"dropped"`
}

// Stats returns the hub counters.
func (h *StreamHub) Stats() StreamStats {
	return StreamStats{
		Clients: h.Clients(),
		Sent:    h.sent.Load(),
		Dropped: h.dropped.Load(),
	}
}

func encodeMessage(encoding string, msg *StreamMessage) ([]byte, error) {
	if encoding == EncodingMsgpack {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(msg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.Marshal(msg)
}
