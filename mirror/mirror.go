// Package mirror serves a syncbridge.RemoteStore over HTTP so several dashboard
// installations can share profiles.
package mirror

import (
	"errors"
	"net/http"
	"strings"

	"creatorhub/models"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter returns a gin engine exposing store:
//
//	GET  /mirror/:username   fetch a record (404 when absent)
//	PUT  /mirror/:username   replace a record
//	HEAD /mirror/:username   existence check
//	GET  /healthz            backing store reachability
func NewRouter(store syncbridge.RemoteStore) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	group := router.Group("/mirror")
	{
		group.GET("/:username", func(c *gin.Context) {
			GetRecordHandler(c, store)
		})
		group.PUT("/:username", func(c *gin.Context) {
			PutRecordHandler(c, store)
		})
		group.HEAD("/:username", func(c *gin.Context) {
			HeadRecordHandler(c, store)
		})
	}
	router.GET("/healthz", func(c *gin.Context) {
		HealthHandler(c, store)
	})
	return router
}

func usernameParam(c *gin.Context) (string, bool) {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		utils.GinBadRequest(c, "username is required")
		return "", false
	}
	return username, true
}

// GetRecordHandler returns the stored {user, userData} record.
func GetRecordHandler(c *gin.Context, store syncbridge.RemoteStore) {
	username, ok := usernameParam(c)
	if !ok {
		return
	}
	payload, err := store.Get(c.Request.Context(), username)
	if errors.Is(err, syncbridge.ErrNotFound) {
		utils.GinNotFound(c, "no record for "+username)
		return
	}
	if err != nil {
		utils.GinServiceUnavailable(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, payload)
}

// PutRecordHandler replaces the record. The embedded user must carry the same username.
func PutRecordHandler(c *gin.Context, store syncbridge.RemoteStore) {
	username, ok := usernameParam(c)
	if !ok {
		return
	}
	var payload models.SyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.GinBadRequest(c, "invalid record: "+err.Error())
		return
	}
	if !strings.EqualFold(payload.User.Username, username) {
		utils.GinBadRequest(c, "record username does not match path")
		return
	}
	if err := store.Put(c.Request.Context(), username, payload); err != nil {
		utils.GinServiceUnavailable(c, err.Error())
		return
	}
	log.WithField("username", username).Debug("mirror: stored record")
	c.Status(http.StatusNoContent)
}

// HeadRecordHandler answers 200 when a record exists, 404 otherwise.
func HeadRecordHandler(c *gin.Context, store syncbridge.RemoteStore) {
	username, ok := usernameParam(c)
	if !ok {
		return
	}
	exists, err := store.Exists(c.Request.Context(), username)
	if err != nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	if !exists {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// HealthHandler reports whether the backing store answers.
func HealthHandler(c *gin.Context, store syncbridge.RemoteStore) {
	if err := store.Ping(c.Request.Context()); err != nil {
		utils.GinServiceUnavailable(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
