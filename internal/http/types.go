package http

// ErrorBody is the error payload of every endpoint
type ErrorBody struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Uptime int64             `json:"uptime"`
}
