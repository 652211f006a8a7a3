// Server-sent events handler: streams change cues so open dashboards refetch
// without polling. Cues carry only the collection name and a timestamp, never
// row data, so a late or dropped cue costs one refetch at most.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
)

// heartbeatInterval keeps idle SSE connections alive through proxies that
// reap silent streams.
const heartbeatInterval = 25 * time.Second

// StreamEvents godoc
// @ID          streamEvents
// @Summary     Change-cue stream (SSE)
// @Description Streams "change" events whenever repairs, checklist items, templates, or settings change. Each event's data is {"collection": "...", "at": "..."}. Clients refetch the named collection on receipt.
// @Tags        Events
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200  {string} string "event stream"
// @Router      /events [get]
func (h *Handlers) StreamEvents(feed realtime.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		cues, cancel := feed.Subscribe()
		defer cancel()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Writer.WriteHeader(http.StatusOK)
		c.Writer.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case cue, open := <-cues:
				if !open {
					return
				}
				payload, err := json.Marshal(cue)
				if err != nil {
					continue
				}
				fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", payload)
				c.Writer.Flush()
			case <-heartbeat.C:
				// Comment frame, ignored by EventSource clients.
				fmt.Fprint(c.Writer, ": ping\n\n")
				c.Writer.Flush()
			}
		}
	}
}
