package mailqueue

import (
	"context"
	"errors"
	"net/http"
)

// JobsService submits jobs to the gateway.
type JobsService struct {
	c *Client
}

// Enqueue submits a job. A nil error means the job is durably queued.
func (s *JobsService) Enqueue(ctx context.Context, req EnqueueRequest) (*EnqueueResponse, error) {
	if req.Email == "" {
		return nil, errors.New("mailqueue: email is required")
	}
	out, hdr, err := doRequest[EnqueueResponse](ctx, s.c, http.MethodPost, "/queue/jobs", req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	out.RequestID = hdr.Get(requestIDHeader)
	return out, nil
}
