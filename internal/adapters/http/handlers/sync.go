package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-keeper/internal/app"
)

// SyncHandler exposes the sync engine.
type SyncHandler struct {
	sync *app.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync *app.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// RegisterRoutes mounts the sync routes on rg.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Trigger)
	rg.GET("/sync", h.Last)
}

// Trigger handles POST /api/v1/sync. It runs a manual cycle, or joins the
// one in flight, and returns its report. A failed fetch is 503; a caller
// that gives up first gets TIMEOUT while the cycle finishes in the
// background.
//
// @Summary Sync with the remote list
// @Tags sync
// @Success 200 {object} dto.SyncResponse
// @Failure 503 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) Trigger(c *gin.Context) {
	report, err := h.sync.Sync(c.Request.Context(), app.TriggerManual)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		dto.RespondWithErrorCode(c, dto.ErrorCodeTimeout, "sync still running")
	case err != nil:
		dto.HandleError(c, err)
	default:
		c.JSON(http.StatusOK, newSyncResponse(report))
	}
}

// Last handles GET /api/v1/sync with the most recent cycle report.
// Before the first cycle it is 404.
func (h *SyncHandler) Last(c *gin.Context) {
	report, ok := h.sync.LastReport()
	if !ok {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "no sync cycle has run yet")
		return
	}

	c.JSON(http.StatusOK, newSyncResponse(report))
}

func newSyncResponse(r app.CycleReport) dto.SyncResponse {
	resp := dto.SyncResponse{
		ID:         r.ID,
		Trigger:    string(r.Trigger),
		Outcome:    r.Outcome(),
		Started:    r.Started,
		Finished:   r.Finished,
		DurationMS: r.Duration().Milliseconds(),
		Fetched:    r.Fetched,
		Added:      r.Added,
		Conflicts:  r.Conflicts,
	}

	if r.Err != nil {
		resp.Error = r.Err.Error()
	}

	return resp
}
