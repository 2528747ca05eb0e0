package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortsbot/types"
)

type runsController struct {
	ctx    context.Context
	runner Runner
	status StatusSource
	isBusy func(error) bool
}

// RegisterRunRoutes registers run trigger and status endpoints
func RegisterRunRoutes(r *gin.Engine, rc *runsController) {
	g := r.Group("/api/runs")
	g.POST("", rc.handleStartRun)
	g.GET("/current", rc.handleCurrentRun)
}

// handleStartRun starts a run and returns 202 with its ID, or 409 when one is active.
// The body is optional.
func (rc *runsController) handleStartRun(c *gin.Context) {
	var req types.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID, err := rc.runner.Start(rc.ctx, req)
	if err != nil {
		if rc.isBusy != nil && rc.isBusy(err) {
			status := rc.status.GetStatus()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": status.State, "run_id": status.RunID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started", "run_id": runID})
}

// handleCurrentRun returns the status snapshot
func (rc *runsController) handleCurrentRun(c *gin.Context) {
	c.JSON(http.StatusOK, rc.status.GetStatus())
}
