package api

// IngestResponse is the body returned for an accepted event
type IngestResponse struct {
	Status  string `json:"status"`
	EventID string `json:"eventId"`
	Message string `json:"message"`
}

// HealthResponse is the body returned by the route-group health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
