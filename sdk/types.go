package mailqueue

// EnqueueRequest describes one email job.
type EnqueueRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
}

// EnqueueResponse is returned by POST /queue/jobs on success.
type EnqueueResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"-"`
}

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
