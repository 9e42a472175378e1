package api

import (
	"net/http"

	"creatorhub/dashboard"
	"creatorhub/models"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

func GetSettingsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.Settings())
}

// PatchSettingsHandler merges a partial settings object. Accumulated totals and
// lastAccess are ignored.
func PatchSettingsHandler(c *gin.Context, deps *Deps) {
	body, err := c.GetRawData()
	if err != nil {
		utils.GinBadRequest(c, "Failed to read request body: "+err.Error())
		return
	}
	settings, err := deps.Dashboard.UpdateSettings(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func UpdateProfileHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	settings, err := deps.Dashboard.UpdateProfileSettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func UpdateNotificationsHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.NotificationPatch
	if !bindJSON(c, &patch) {
		return
	}
	settings, err := deps.Dashboard.UpdateNotificationSettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func UpdateAppearanceHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.AppearancePatch
	if !bindJSON(c, &patch) {
		return
	}
	settings, err := deps.Dashboard.UpdateAppearanceSettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func UpdatePrivacyHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.PrivacyPatch
	if !bindJSON(c, &patch) {
		return
	}
	settings, err := deps.Dashboard.UpdatePrivacySettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func UpdateLanguageHandler(c *gin.Context, deps *Deps) {
	var req LanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	lang, err := deps.Dashboard.UpdateLanguage(c.Request.Context(), req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

func ToggleDarkModeHandler(c *gin.Context, deps *Deps) {
	dark, err := deps.Dashboard.ToggleDarkMode(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"darkMode": dark})
}

func GetGlobalSettingsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Session.GlobalSettings())
}

// UpdateGlobalSettingsHandler replaces the device-wide switches.
func UpdateGlobalSettingsHandler(c *gin.Context, deps *Deps) {
	var gs models.GlobalSettings
	if !bindJSON(c, &gs) {
		return
	}
	if gs.DefaultLanguage != "" {
		lang, err := dashboard.NormalizeLanguage(gs.DefaultLanguage)
		if err != nil {
			respondError(c, err)
			return
		}
		gs.DefaultLanguage = lang
	}
	if err := deps.Session.SetGlobalSettings(gs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.GlobalSettings())
}
