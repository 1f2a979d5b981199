package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salon-server/middleware"
	"salon-server/websocket"
)

// RegisterRealtimeRoutes mounts the polling fallback for consoles that
// cannot hold a socket open.
func RegisterRealtimeRoutes(rg *gin.RouterGroup, a *API) {
	rg.GET("/events", a.eventsSince)
}

// eventsSince returns events newer than ?after=. When the history no longer
// reaches back that far, resync is true and the console should reload.
func (a *API) eventsSince(c *gin.Context) {
	var after uint64
	if v := c.Query("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			badRequest(c, "after must be a non-negative integer")
			return
		}
		after = n
	}

	evs, latest, resync := a.Hub.Since(after)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"events": evs,
			"latest": latest,
			"resync": resync,
		},
	})
}

func (a *API) serveWebSocket(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		authFailed(c, "not signed in")
		return
	}
	websocket.ServeWebSocket(a.Hub, c.Writer, c.Request, user.ID)
}
