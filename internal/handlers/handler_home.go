package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HomeHandler serves liveness and readiness probes.
type HomeHandler struct {
	pool          *pgxpool.Pool
	enableDBCheck bool
}

// NewHomeHandler creates a new HomeHandler. The pool may be nil when no
// database readiness check is wanted.
func NewHomeHandler(pool *pgxpool.Pool, enableDBCheck bool) *HomeHandler {
	return &HomeHandler{pool: pool, enableDBCheck: enableDBCheck}
}

// Health godoc
// @Summary Health check
// @Description Reports service liveness and, when enabled, database reachability.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HomeHandler) Health(c *gin.Context) {
	if h.enableDBCheck && h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
