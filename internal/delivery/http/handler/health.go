package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Check pings one dependency
type Check func(ctx context.Context) error

// HealthHandler reports the health of the API and its stores
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
	logger  *logger.Logger
}

// NewHealthHandler creates a health handler for the named checks
func NewHealthHandler(checks map[string]Check, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  log,
	}
}

// Health handles GET /health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "All dependencies reachable"
// @Failure 503 {object} map[string]interface{} "A dependency is down"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			status := "up"
			if err := check(ctx); err != nil {
				h.logger.Warnf("Health check %s failed: %v", name, err)
				status = "down"
			}
			mu.Lock()
			results[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status, code := "healthy", http.StatusOK
	for _, s := range results {
		if s != "up" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	response.JSON(w, code, map[string]any{
		"status": status,
		"checks": results,
	})
}
