// ABOUTME: Server-sent event encoding helpers for the status stream
// ABOUTME: Events are named, with JSON data payloads

package gateway

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeSSEEvent writes a single named SSE event with a JSON payload.
func (g *Gateway) writeSSEEvent(w io.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		g.logger.Debug("failed to marshal SSE payload", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		g.logger.Debug("failed to write SSE event", "error", err)
	}
}
