package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/json"
)

const (
	statusOK        = "ok"
	statusUnhealthy = "unhealthy"

	defaultMaxHeapBytes = 500 << 20
	storeCheckTimeout   = time.Second
)

type Handler struct {
	store        domain.ConversationStore
	environment  string
	version      string
	maxHeapBytes uint64
	startTime    time.Time
	shuttingDown atomic.Bool
	readHeap     func() uint64
}

func NewHandler(store domain.ConversationStore, environment, version string) *Handler {
	return &Handler{
		store:        store,
		environment:  environment,
		version:      version,
		maxHeapBytes: defaultMaxHeapBytes,
		startTime:    time.Now(),
		readHeap:     heapAlloc,
	}
}

// MarkShuttingDown makes every later check report unhealthy so load
// balancers drain the instance.
func (h *Handler) MarkShuttingDown() {
	h.shuttingDown.Store(true)
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API, including uptime, memory and store checks
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
// @Router       /ready [get]
// @Router       /live [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]checkResult{
		"memory": h.checkMemory(),
		"store":  h.checkStore(r.Context()),
	}

	status := statusOK
	if h.shuttingDown.Load() {
		status = statusUnhealthy
	}
	for _, c := range checks {
		if c.Status != statusOK {
			status = statusUnhealthy
		}
	}

	code := http.StatusOK
	if status != statusOK {
		code = http.StatusServiceUnavailable
	}

	json.Write(w, code, healthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Version:     h.version,
		Checks:      checks,
	})
}

func (h *Handler) checkMemory() checkResult {
	heap := h.readHeap()
	details := fmt.Sprintf("heap %dMB", heap>>20)
	if heap > h.maxHeapBytes {
		return checkResult{Status: statusUnhealthy, Details: details}
	}
	return checkResult{Status: statusOK, Details: details}
}

func (h *Handler) checkStore(ctx context.Context) checkResult {
	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	var rooms int
	err := h.store.View(ctx, func(tx domain.StoreTx) error {
		rooms = len(tx.Rooms())
		return nil
	})
	if err != nil {
		return checkResult{Status: statusUnhealthy, Details: err.Error()}
	}
	return checkResult{Status: statusOK, Details: fmt.Sprintf("%d rooms", rooms)}
}

func heapAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
