package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/gsarma/mailqueue/internal/job"
	"github.com/gsarma/mailqueue/internal/queue"
)

// Enqueuer is the subset of queue.Store the handlers depend on.
type Enqueuer interface {
	Append(ctx context.Context, name string, payload []byte) error
	Ping(ctx context.Context) error
}

type Handler struct {
	queue     Enqueuer
	queueName string
	logger    *slog.Logger
	timeout   time.Duration
}

// NewHandler wires the ingestion handlers to q. timeout bounds each append.
func NewHandler(q Enqueuer, logger *slog.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		queue:     q,
		queueName: queue.DefaultName,
		logger:    logger,
		timeout:   timeout,
	}
}

// EnqueueJob validates the posted job and appends it to the email queue.
func (h *Handler) EnqueueJob(c *gin.Context) {
	raw, err := bindPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	j, err := job.Validate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := job.Encode(j)
	if err != nil {
		h.logger.Error("failed to encode job", "request_id", RequestIDFromContext(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add job to queue"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.queue.Append(ctx, h.queueName, payload); err != nil {
		h.logger.Error("failed to add job to queue",
			"request_id", RequestIDFromContext(c),
			"queue", h.queueName,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add job to queue"})
		return
	}

	h.logger.Info("job added to queue", "request_id", RequestIDFromContext(c), "queue", h.queueName)
	c.JSON(http.StatusCreated, gin.H{"message": "Job added to queue"})
}

// Health reports whether the queue store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.queue.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindPayload decodes a JSON object body, or a urlencoded form where the
// first value of each key is used.
func bindPayload(c *gin.Context) (map[string]any, error) {
	if c.ContentType() == binding.MIMEPOSTForm {
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		raw := make(map[string]any, len(c.Request.PostForm))
		for k := range c.Request.PostForm {
			raw[k] = c.Request.PostForm.Get(k)
		}
		return raw, nil
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
