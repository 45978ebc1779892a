package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/balloonwind/internal/adapters/nats"
	"github.com/samirrijal/balloonwind/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	BalloonID *int   `json:"balloon_id"` // positions filter (optional, nil = whole fleet)
	Channel   string `json:"channel"`    // "positions" | "snapshots" (default: positions)
}

// wsSubject maps a client message to the NATS subject it relays.
func wsSubject(m wsMessage) (string, error) {
	channel := m.Channel
	if channel == "" {
		channel = "positions"
	}
	switch channel {
	case "positions":
		if m.BalloonID != nil {
			return natsadapter.PositionSubject(*m.BalloonID), nil
		}
		return natsadapter.PositionSubjects, nil
	case "snapshots":
		return natsadapter.SnapshotSubjects, nil
	default:
		return "", fmt.Errorf("unknown channel: %s", channel)
	}
}

// overlapping lists the active subjects a new subscription would duplicate.
// The fleet subject and single-balloon position subjects never coexist:
// narrowing to a balloon drops the fleet, widening to the fleet drops every
// balloon.
func overlapping(subject string, active []string) []string {
	var drop []string
	fleet := subject == natsadapter.PositionSubjects
	single := !fleet && strings.HasPrefix(subject, positionPrefix)
	for _, s := range active {
		switch {
		case single && s == natsadapter.PositionSubjects:
			drop = append(drop, s)
		case fleet && s != subject && strings.HasPrefix(s, positionPrefix):
			drop = append(drop, s)
		}
	}
	sort.Strings(drop)
	return drop
}

// positionPrefix is shared by the fleet wildcard and per-balloon subjects.
var positionPrefix = strings.TrimSuffix(natsadapter.PositionSubjects, ">")

// WebSocketHandler returns a handler that upgrades to WebSocket
// and relays live balloon events from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","channel":"positions","balloon_id":42}
// Without balloon_id the whole fleet is relayed. Default channel is "positions".
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		logger.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "live updates unavailable"})
			return
		}

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		// whole-fleet positions until the client narrows it
		sub, err := nc.Subscribe(natsadapter.PositionSubjects, relay)
		if err != nil {
			logger.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.PositionSubjects] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, err := wsSubject(m)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				active := make([]string, 0, len(subs))
				for name := range subs {
					active = append(active, name)
				}
				for _, name := range overlapping(subject, active) {
					_ = subs[name].Unsubscribe()
					delete(subs, name)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": name})
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Info("ws client disconnected", "subscriptions", len(subs))
	}
}
