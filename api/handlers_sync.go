package api

import (
	"errors"
	"net/http"

	"creatorhub/syncbridge"

	"github.com/gin-gonic/gin"
)

func SyncStatusHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Session.SyncStatus(c.Request.Context()))
}

type ToggleSyncRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToggleSyncResponse carries a warning when sync was switched on but the first push failed.
type ToggleSyncResponse struct {
	Status  syncbridge.Status `json:"status"`
	Warning string            `json:"warning,omitempty"`
}

func ToggleSyncHandler(c *gin.Context, deps *Deps) {
	var req ToggleSyncRequest
	if !bindJSON(c, &req) {
		return
	}
	resp := ToggleSyncResponse{}
	if err := deps.Session.ToggleCloudSync(c.Request.Context(), *req.Enabled); err != nil {
		if !errors.Is(err, syncbridge.ErrSyncUnavailable) {
			respondError(c, err)
			return
		}
		resp.Warning = err.Error()
	}
	resp.Status = deps.Session.SyncStatus(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

func ForceSyncHandler(c *gin.Context, deps *Deps) {
	if err := deps.Session.ForceSync(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.SyncStatus(c.Request.Context()))
}
