package health

// healthResponse represents the health status of the API
type healthResponse struct {
	Status      string                 `json:"status" example:"ok" enum:"ok,unhealthy"`  // Health status (ok or unhealthy)
	Timestamp   string                 `json:"timestamp" example:"2024-01-01T12:00:00Z"` // Current server timestamp in RFC3339 format
	Uptime      string                 `json:"uptime" example:"2h30m45s"`                // Server uptime since start
	Environment string                 `json:"environment" example:"development"`        // Deployment environment
	Version     string                 `json:"version" example:"1.0.0"`                  // Server version
	Checks      map[string]checkResult `json:"checks"`                                   // Individual dependency checks
}

// checkResult is the outcome of one health check
type checkResult struct {
	Status  string `json:"status" example:"ok" enum:"ok,unhealthy"`
	Details string `json:"details,omitempty" example:"heap 12MB"`
}
