package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/usecases"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by the client on every keystroke.
type wsMessage struct {
	Query string `json:"query"`
}

// wsEvent is sent to the client.
type wsEvent struct {
	Type string `json:"type"` // "suggestions" | "error"
	domain.Suggestions
	Message string `json:"message,omitempty"`
}

// WebSocketHandler runs one suggestion session per connection.
// Clients send {"query":"ala"} as the user types and receive
// {"type":"suggestions","seq":N,...} updates: local matches at once,
// merged remote results after the debounce, never out of order.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			logger = logger.With("request_id", rid)
		}
		logger.Debug("ws client connected")

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		session := usecases.NewSuggestionSession(ctx, deps.Places, deps.Debounce, func(s domain.Suggestions) {
			if err := writeJSON(wsEvent{Type: "suggestions", Suggestions: s}); err != nil {
				logger.Debug("ws write failed", "error", err)
			}
		})
		defer session.Close()

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
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
				_ = writeJSON(wsEvent{Type: "error", Message: "invalid JSON"})
				continue
			}
			if len(m.Query) > maxQueryLength {
				_ = writeJSON(wsEvent{Type: "error", Message: "query too long"})
				continue
			}

			session.Update(m.Query)
		}

		logger.Debug("ws client disconnected")
	}
}
