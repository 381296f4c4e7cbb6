package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/metrics"
)

// heartbeatInterval is how often an idle stream emits a comment line so
// proxies and clients can tell the connection is alive.
const heartbeatInterval = 15 * time.Second

// streamEvents serves the per-workspace SSE feed. The connection stays open
// until the client goes away; there is no replay, so clients refetch over
// REST after reconnecting.
func (s *Server) streamEvents(c *gin.Context) {
	ws := workspace(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortError(c, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sub := s.bus.Subscribe(ws.ID)
	defer sub.Close()

	metrics.SSESubscribers.Inc()
	defer metrics.SSESubscribers.Dec()

	logger := s.logger.With().Str("workspace_id", ws.ID).Logger()
	logger.Debug().Msg("SSE subscriber connected")
	defer logger.Debug().Msg("SSE subscriber disconnected")

	fmt.Fprintf(c.Writer, ": connected workspace=%s\n\n", ws.ID)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case evt, open := <-sub.C:
			if !open {
				return
			}
			if dropped := sub.TakeLag(); dropped > 0 {
				metrics.SSEEventsDropped.Add(float64(dropped))
				logger.Warn().Uint64("dropped", dropped).Msg("SSE subscriber lagged")
				fmt.Fprintf(c.Writer, "event: lagged\ndata: {\"dropped\":%d}\n\n", dropped)
			}
			if err := writeSSEEvent(c.Writer, evt); err != nil {
				return
			}
			flusher.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt *events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
