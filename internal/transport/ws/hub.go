// Package ws streams frames to websocket clients and turns their messages
// into runner commands.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	clientSend = 16
)

// Inbound is a client request.
type Inbound struct {
	Type     string  `json:"type"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Content  string  `json:"content,omitempty"`
	Priority string  `json:"priority,omitempty"`
	ID       string  `json:"id,omitempty"`
}

// Outbound is what clients receive: frames, the item list after a change,
// and errors for their own requests.
type Outbound struct {
	Type  string      `json:"type"`
	Frame *sim.Frame  `json:"frame,omitempty"`
	Items []todo.Item `json:"items,omitempty"`
	Error string      `json:"error,omitempty"`
}

type client struct {
	id   uint64
	send chan []byte
}

// Hub fans frames out to clients. OnFrame and BroadcastItems may be called
// from the runner goroutine while handlers run on their own.
type Hub struct {
	commands chan<- sim.Command
	resizes  chan<- sim.Size
	log      *log.Logger
	now      func() time.Time

	upgrader websocket.Upgrader
	origins  map[string]struct{}
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]*client
	dropped atomic.Uint64
}

type HubOption func(*Hub)

// AllowOrigins accepts browser connections from the given origin hosts
// (host or host:port) in addition to same-origin ones.
func AllowOrigins(hosts ...string) HubOption {
	return func(h *Hub) {
		for _, host := range hosts {
			if host != "" {
				h.origins[strings.ToLower(host)] = struct{}{}
			}
		}
	}
}

// NewHub only upgrades same-origin requests, or requests with no Origin
// header, unless AllowOrigins widens the set.
func NewHub(commands chan<- sim.Command, resizes chan<- sim.Size, logger *log.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "[ws] ", log.LstdFlags)
	}
	h := &Hub{
		commands: commands,
		resizes:  resizes,
		log:      logger,
		now:      time.Now,
		origins:  make(map[string]struct{}),
		clients:  make(map[uint64]*client),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  16 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	if host == strings.ToLower(r.Host) {
		return true
	}
	_, ok := h.origins[host]
	if !ok {
		h.log.Printf("rejected origin %s", origin)
	}
	return ok
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts messages skipped because a client fell behind.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) OnFrame(f sim.Frame) {
	h.broadcast(Outbound{Type: "frame", Frame: &f})
}

func (h *Hub) BroadcastItems(items []todo.Item) {
	if items == nil {
		items = []todo.Item{}
	}
	h.broadcast(Outbound{Type: "items", Items: items})
}

func (h *Hub) broadcast(msg Outbound) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Printf("marshal %s: %v", msg.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) join() *client {
	c := &client{id: h.nextID.Add(1), send: make(chan []byte, clientSend)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := h.join()
		defer h.leave(c)
		h.log.Printf("client %d connected from %s", c.id, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-c.send:
					_ = conn.SetWriteDeadline(h.now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(h.now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if err := h.handle(msg); err != nil {
				h.reply(c, Outbound{Type: "error", Error: err.Error()})
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), h.now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		h.log.Printf("client %d disconnected", c.id)
	}
}

func (h *Hub) reply(c *client, msg Outbound) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hub) handle(raw []byte) error {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("bad message: %w", err)
	}

	if in.Type == "resize" {
		select {
		case h.resizes <- sim.Size{Width: in.Width, Height: in.Height}:
			return nil
		default:
			return fmt.Errorf("server busy")
		}
	}

	cmd, err := h.command(in)
	if err != nil {
		return err
	}
	select {
	case h.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("server busy")
	}
}

func (h *Hub) command(in Inbound) (sim.Command, error) {
	switch in.Type {
	case "add":
		p := todo.Medium
		if in.Priority != "" {
			var err error
			if p, err = todo.ParsePriority(in.Priority); err != nil {
				return nil, err
			}
		}
		return func(list []todo.Item) ([]todo.Item, error) {
			next, _, err := todo.Add(list, in.Content, p, h.now())
			return next, err
		}, nil
	case "toggle":
		return func(list []todo.Item) ([]todo.Item, error) {
			return todo.Toggle(list, in.ID, h.now())
		}, nil
	case "delete":
		return func(list []todo.Item) ([]todo.Item, error) {
			return todo.Delete(list, in.ID)
		}, nil
	case "clear":
		return func(list []todo.Item) ([]todo.Item, error) {
			return todo.Clear(list), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", in.Type)
}
