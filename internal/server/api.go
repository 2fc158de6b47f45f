package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vesaa/effectlab/internal/mistakes"
	"github.com/vesaa/effectlab/internal/session"
)

// registerAPIRoutes wires the JSON API.
//
//	GET /api/health              process and session counters
//	GET /api/mistakes            topic index
//	GET /api/mistakes/:n/state   both variants of the visitor's page
func (s *Server) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", s.handleHealth)
	api.GET("/mistakes", handleMistakeIndex)
	api.GET("/mistakes/:n/state", session.Middleware(s.store, s.signer), s.handleMistakeState)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"time":        time.Now().UTC(),
		"sessions":    s.store.Count(),
		"live_timers": s.store.LiveTimers(),
		"process":     s.procs.Collect(),
	})
}

type mistakeSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

func handleMistakeIndex(c *gin.Context) {
	all := mistakes.All()
	out := make([]mistakeSummary, 0, len(all))
	for _, m := range all {
		out = append(out, mistakeSummary{ID: m.ID, Title: m.Title, Description: m.Description, Path: m.Path()})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// handleMistakeState mounts the page for the visitor's window when it is not
// already showing, exactly like a GET of the page would.
func (s *Server) handleMistakeState(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	m, ok := mistakes.ByID(n)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such mistake"})
		return
	}
	page, err := session.FromContext(c).Visit(m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.settle(c.Request.Context(), page)

	c.JSON(http.StatusOK, gin.H{
		"id":       m.ID,
		"route":    m.Path(),
		"name":     page.Name(),
		"running":  page.Running(),
		"variants": page.Snapshot(),
	})
}
