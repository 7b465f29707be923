package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	httpapi "github.com/consensuslabs/vodstream/internal/http"
	"github.com/gin-gonic/gin"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"

	checkTimeout = 3 * time.Second
)

// Handler handles health check related endpoints
type Handler struct {
	checks  map[string]Checker
	logger  Logger
	started time.Time
}

// NewHandler creates a new health check handler
func NewHandler(logger Logger) *Handler {
	return &Handler{
		checks:  make(map[string]Checker),
		logger:  logger,
		started: time.Now(),
	}
}

// Register adds a named dependency check. Not safe once serving has started.
func (h *Handler) Register(name string, check Checker) {
	h.checks[name] = check
}

// HandleHealthCheck runs every check concurrently and answers 503 if any fails
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check Checker) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, h.checks[name])
	}
	wg.Wait()

	resp := httpapi.HealthResponse{
		Status: StatusUp,
		Checks: make(map[string]string, len(names)),
		Uptime: int64(time.Since(h.started).Seconds()),
	}
	for i, name := range names {
		if results[i] != nil {
			resp.Status = StatusDown
			resp.Checks[name] = StatusDown
			h.logger.LogWarn("Health check failed", map[string]interface{}{
				"check": name,
				"error": results[i].Error(),
			})
			continue
		}
		resp.Checks[name] = StatusUp
	}

	status := http.StatusOK
	if resp.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
