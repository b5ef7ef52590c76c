package ingest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RefreshHandler lets an operator re-trigger ingestion. A failed first run
// is retried in full; a completed run gets an in-place refresh pass. The
// work happens in the background, the response carries the current status.
func RefreshHandler(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p.Tracker.Completed() {
			go func() {
				_ = p.Refresh(context.Background())
			}()
		} else {
			go func() {
				_ = p.Run(context.Background())
			}()
		}

		c.JSON(http.StatusAccepted, gin.H{
			"accepted": true,
			"status":   p.Tracker.Snapshot(),
		})
	}
}
