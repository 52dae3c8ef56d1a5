package apisdk

import (
	"context"
	"net/http"
	"slices"

	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
	"github.com/hilthontt/devtea/api-sdk/option"
)

type HealthService struct {
	Options []option.RequestOption
}

func NewHealthService(opts ...option.RequestOption) *HealthService {
	h := &HealthService{opts}
	return h
}

// Get reports server health. An unhealthy server answers 503, which comes
// back as a *TransportError after the configured attempts.
func (h *HealthService) Get(ctx context.Context, opts ...option.RequestOption) (*HealthResponse, error) {
	opts = slices.Concat(h.Options, opts)

	res := &HealthResponse{}
	err := requestconfig.ExecuteNewRequest(ctx, http.MethodGet, "health", nil, res, opts...)

	return res, err
}

type HealthCheck struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   string                 `json:"timestamp"`
	Uptime      string                 `json:"uptime"`
	Environment string                 `json:"environment"`
	Version     string                 `json:"version"`
	Checks      map[string]HealthCheck `json:"checks"`
}
