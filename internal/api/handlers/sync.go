package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
)

type SyncHandler struct {
	db        *database.Database
	publisher *events.Publisher
	pipeline  *pipeline.Pipeline
	logger    *logger.Logger
}

func NewSyncHandler(db *database.Database, publisher *events.Publisher, p *pipeline.Pipeline, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		db:        db,
		publisher: publisher,
		pipeline:  p,
		logger:    logger,
	}
}

type syncRequest struct {
	Phase   string `json:"phase"`
	SaveRaw bool   `json:"save_raw"`
	Flush   bool   `json:"flush"`
	Wait    bool   `json:"wait"`
}

// Trigger publishes a sync.requested event for the worker to pick up, or runs
// the pipeline inline when the caller asks to wait for the result.
func (h *SyncHandler) Trigger(c *gin.Context) {
	// An empty body means "full sync with defaults".
	req := syncRequest{Phase: "full", Flush: true}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Phase {
	case "full", "extract", "insert":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be full, extract or insert"})
		return
	}

	if req.Wait {
		h.runInline(c, req)
		return
	}

	err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:  events.TypeSyncRequested,
		Phase: req.Phase,
		Data: map[string]interface{}{
			"save_raw": req.SaveRaw,
			"flush":    req.Flush,
		},
	})
	if err != nil {
		h.logger.Error("Failed to publish sync request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "requested", "phase": req.Phase})
}

// runInline executes the requested phase within the request and returns the
// finished run. A partial or failed run still answers 200; the run body
// carries the failure detail.
func (h *SyncHandler) runInline(c *gin.Context, req syncRequest) {
	ctx := c.Request.Context()
	opts := pipeline.ExtractOptions{SaveRaw: req.SaveRaw, Flush: req.Flush}

	var run *models.SyncRun
	var err error
	switch req.Phase {
	case "extract":
		run, err = h.pipeline.Extract(ctx, opts)
	case "insert":
		run, err = h.pipeline.Insert(ctx)
	default:
		run, err = h.pipeline.Extract(ctx, opts)
		if err == nil {
			run, err = h.pipeline.Insert(ctx)
		}
	}

	if err != nil {
		h.logger.Error("Inline sync failed: %v", err)
		if run == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": run, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.db.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

func (h *SyncHandler) GetRun(c *gin.Context) {
	run, err := h.db.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
