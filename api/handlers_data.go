package api

import (
	"fmt"
	"net/http"

	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

// GetDocumentHandler returns the whole document of the current profile.
func GetDocumentHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Session.Load())
}

// ExportHandler returns the document as an indented JSON attachment.
func ExportHandler(c *gin.Context, deps *Deps) {
	data, err := deps.Dashboard.ExportData()
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("creator-hub-backup-%s.json", deps.Session.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
}

// ImportHandler replaces the document with the request body, an earlier export.
func ImportHandler(c *gin.Context, deps *Deps) {
	body, err := c.GetRawData()
	if err != nil {
		utils.GinBadRequest(c, "Failed to read request body: "+err.Error())
		return
	}
	if err := deps.Dashboard.ImportData(c.Request.Context(), string(body)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.Load())
}

func ResetHandler(c *gin.Context, deps *Deps) {
	if err := deps.Dashboard.ResetAllData(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.Load())
}

func ValidateHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, gin.H{"valid": deps.Dashboard.ValidateData()})
}

func ListBackupsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.Backups())
}

func CreateBackupHandler(c *gin.Context, deps *Deps) {
	key, err := deps.Dashboard.CreateBackup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func RestoreBackupHandler(c *gin.Context, deps *Deps) {
	if err := deps.Dashboard.RestoreBackup(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.Load())
}

func StatsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.Stats())
}
