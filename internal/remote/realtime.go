package remote

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 25 * time.Second
	readDeadline      = 60 * time.Second
)

// phoenixMessage is the envelope the realtime channel speaks.
type phoenixMessage struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
	Ref     string         `json:"ref"`
}

// Subscription is a live change-notification channel for one table.
// Unsubscribe must be called when the owning context goes away.
type Subscription struct {
	conn  *websocket.Conn
	topic string
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex // guards writes to conn
}

// Subscribe opens a change-notification channel for table. onChange fires on
// any insert, update or delete; events are not inspected individually, the
// caller is expected to do a full reload either way.
func (c *Client) Subscribe(table string, onChange func()) (*Subscription, error) {
	wsURL, err := c.realtimeURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	sub := &Subscription{
		conn:  conn,
		topic: "realtime:public:" + table,
		done:  make(chan struct{}),
	}

	join := phoenixMessage{
		Topic: sub.topic,
		Event: "phx_join",
		Payload: map[string]any{
			"config": map[string]any{
				"postgres_changes": []map[string]any{
					{"event": "*", "schema": "public", "table": table},
				},
			},
		},
		Ref: uuid.NewString(),
	}
	if err := sub.write(join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join %s: %w", sub.topic, err)
	}

	go sub.heartbeatLoop()
	go sub.readLoop(onChange)

	slog.Info("Subscribed to realtime changes", "topic", sub.topic)
	return sub, nil
}

func (c *Client) realtimeURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse remote URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported remote URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": {c.apiKey}, "vsn": {"1.0.0"}}.Encode()
	return u.String(), nil
}

func (s *Subscription) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			beat := phoenixMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: map[string]any{},
				Ref:     uuid.NewString(),
			}
			if err := s.write(beat); err != nil {
				slog.Warn("Realtime heartbeat failed", "topic", s.topic, "error", err)
				return
			}
		}
	}
}

func (s *Subscription) readLoop(onChange func()) {
	for {
		s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		var msg phoenixMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
				// Normal teardown.
			default:
				slog.Warn("Realtime connection closed", "topic", s.topic, "error", err)
			}
			return
		}

		switch msg.Event {
		case "postgres_changes", "INSERT", "UPDATE", "DELETE":
			onChange()
		default:
			// phx_reply, heartbeat ack, presence noise: ignore.
		}
	}
}

func (s *Subscription) write(msg phoenixMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteJSON(msg)
}

// Unsubscribe leaves the channel and closes the connection. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		leave := phoenixMessage{
			Topic:   s.topic,
			Event:   "phx_leave",
			Payload: map[string]any{},
			Ref:     uuid.NewString(),
		}
		if err := s.write(leave); err != nil {
			slog.Debug("Realtime leave failed", "topic", s.topic, "error", err)
		}
		s.conn.Close()
		slog.Info("Unsubscribed from realtime changes", "topic", s.topic)
	})
}
