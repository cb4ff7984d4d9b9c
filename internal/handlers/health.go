package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emberchat/ember-server/internal/engine"
)

// Health reports liveness plus the current queue length and active
// session count.
func Health(eng *engine.Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		queued, sessions := eng.Stats()
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"queue":    queued,
			"sessions": sessions,
		})
	}
}
