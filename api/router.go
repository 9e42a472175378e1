// Package api exposes the dashboard over a JSON HTTP interface.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"creatorhub/config"
	"creatorhub/dashboard"
	"creatorhub/db"
	"creatorhub/ideas"
	"creatorhub/session"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

// Deps bundles what the handlers need.
type Deps struct {
	Config    *config.Config
	Session   *session.Session
	Dashboard *dashboard.Service
	Ideas     *ideas.Service
}

// ListResponse is a page of results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SetupRouter registers every route on a new gin engine.
func SetupRouter(deps *Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.RedirectTrailingSlash = false

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", func(c *gin.Context) { RegisterHandler(c, deps) })
		authGroup.POST("/login", func(c *gin.Context) { LoginHandler(c, deps) })
	}

	protected := router.Group("")
	protected.Use(utils.AuthMiddleware(deps.Config), RequireActiveSession(deps.Session))

	protected.POST("/auth/logout", func(c *gin.Context) { LogoutHandler(c, deps) })
	protected.GET("/auth/me", func(c *gin.Context) { GetMeHandler(c, deps) })
	protected.DELETE("/auth/me", func(c *gin.Context) { DeleteMeHandler(c, deps) })

	dataGroup := protected.Group("/data")
	{
		dataGroup.GET("", func(c *gin.Context) { GetDocumentHandler(c, deps) })
		dataGroup.GET("/export", func(c *gin.Context) { ExportHandler(c, deps) })
		dataGroup.POST("/import", func(c *gin.Context) { ImportHandler(c, deps) })
		dataGroup.POST("/reset", func(c *gin.Context) { ResetHandler(c, deps) })
		dataGroup.GET("/validate", func(c *gin.Context) { ValidateHandler(c, deps) })
		dataGroup.GET("/backups", func(c *gin.Context) { ListBackupsHandler(c, deps) })
		dataGroup.POST("/backups", func(c *gin.Context) { CreateBackupHandler(c, deps) })
		dataGroup.POST("/backups/:key/restore", func(c *gin.Context) { RestoreBackupHandler(c, deps) })
	}
	protected.GET("/stats", func(c *gin.Context) { StatsHandler(c, deps) })

	goalGroup := protected.Group("/goals")
	{
		goalGroup.GET("", func(c *gin.Context) { ListGoalsHandler(c, deps) })
		goalGroup.POST("", func(c *gin.Context) { CreateGoalHandler(c, deps) })
		goalGroup.GET("/:id", func(c *gin.Context) { GetGoalHandler(c, deps) })
		goalGroup.PUT("/:id", func(c *gin.Context) { UpdateGoalHandler(c, deps) })
		goalGroup.DELETE("/:id", func(c *gin.Context) { DeleteGoalHandler(c, deps) })
		goalGroup.PUT("/:id/progress", func(c *gin.Context) { UpdateGoalProgressHandler(c, deps) })
	}

	taskGroup := protected.Group("/tasks")
	{
		taskGroup.GET("", func(c *gin.Context) { ListTasksHandler(c, deps) })
		taskGroup.POST("", func(c *gin.Context) { CreateTaskHandler(c, deps) })
		taskGroup.GET("/today", func(c *gin.Context) { TodayTasksHandler(c, deps) })
		taskGroup.GET("/stats", func(c *gin.Context) { TaskStatsHandler(c, deps) })
		taskGroup.PUT("/:id", func(c *gin.Context) { UpdateTaskHandler(c, deps) })
		taskGroup.DELETE("/:id", func(c *gin.Context) { DeleteTaskHandler(c, deps) })
		taskGroup.POST("/:id/toggle", func(c *gin.Context) { ToggleTaskHandler(c, deps) })
	}

	accountGroup := protected.Group("/accounts")
	{
		accountGroup.GET("", func(c *gin.Context) { ListAccountsHandler(c, deps) })
		accountGroup.POST("", func(c *gin.Context) { CreateAccountHandler(c, deps) })
		accountGroup.GET("/tracker", func(c *gin.Context) { AffiliateTrackerHandler(c, deps) })
		accountGroup.PUT("/:id", func(c *gin.Context) { UpdateAccountHandler(c, deps) })
		accountGroup.DELETE("/:id", func(c *gin.Context) { DeleteAccountHandler(c, deps) })
	}

	earningGroup := protected.Group("/earnings")
	{
		earningGroup.GET("", func(c *gin.Context) { ListEarningsHandler(c, deps) })
		earningGroup.POST("", func(c *gin.Context) { CreateEarningHandler(c, deps) })
		earningGroup.GET("/today", func(c *gin.Context) { TodayEarningsHandler(c, deps) })
		earningGroup.GET("/overview", func(c *gin.Context) { EarningsOverviewHandler(c, deps) })
		earningGroup.GET("/monthly", func(c *gin.Context) { MonthlyStatsHandler(c, deps) })
		earningGroup.GET("/monthly/:month", func(c *gin.Context) { MonthStatsHandler(c, deps) })
		earningGroup.PUT("/affiliates", func(c *gin.Context) { UpdateAffiliatesHandler(c, deps) })
	}

	settingsGroup := protected.Group("/settings")
	{
		settingsGroup.GET("", func(c *gin.Context) { GetSettingsHandler(c, deps) })
		settingsGroup.PATCH("", func(c *gin.Context) { PatchSettingsHandler(c, deps) })
		settingsGroup.PUT("/profile", func(c *gin.Context) { UpdateProfileHandler(c, deps) })
		settingsGroup.PUT("/notifications", func(c *gin.Context) { UpdateNotificationsHandler(c, deps) })
		settingsGroup.PUT("/appearance", func(c *gin.Context) { UpdateAppearanceHandler(c, deps) })
		settingsGroup.PUT("/privacy", func(c *gin.Context) { UpdatePrivacyHandler(c, deps) })
		settingsGroup.PUT("/language", func(c *gin.Context) { UpdateLanguageHandler(c, deps) })
		settingsGroup.POST("/dark-mode", func(c *gin.Context) { ToggleDarkModeHandler(c, deps) })
		settingsGroup.GET("/global", func(c *gin.Context) { GetGlobalSettingsHandler(c, deps) })
		settingsGroup.PUT("/global", func(c *gin.Context) { UpdateGlobalSettingsHandler(c, deps) })
	}

	ideaGroup := protected.Group("/ideas")
	{
		ideaGroup.GET("/products", func(c *gin.Context) { ListProductIdeasHandler(c, deps) })
		ideaGroup.POST("/products", func(c *gin.Context) { GenerateProductIdeasHandler(c, deps) })
		ideaGroup.GET("/trending", func(c *gin.Context) { ListTrendingHandler(c, deps) })
		ideaGroup.POST("/trending", func(c *gin.Context) { ResearchTrendingHandler(c, deps) })
		ideaGroup.GET("/kits", func(c *gin.Context) { ListKitsHandler(c, deps) })
		ideaGroup.POST("/kits", func(c *gin.Context) { GenerateKitsHandler(c, deps) })
	}

	syncGroup := protected.Group("/sync")
	{
		syncGroup.GET("/status", func(c *gin.Context) { SyncStatusHandler(c, deps) })
		syncGroup.PUT("", func(c *gin.Context) { ToggleSyncHandler(c, deps) })
		syncGroup.POST("/force", func(c *gin.Context) { ForceSyncHandler(c, deps) })
	}

	return router
}

// RequireActiveSession rejects tokens that do not belong to the profile currently
// logged into the session. It must run after utils.AuthMiddleware.
func RequireActiveSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := sess.CurrentUser()
		if !ok || current.ID != c.GetString("userID") {
			utils.GinUnauthorized(c, "Session is not active for this token. Log in again.")
			return
		}
		c.Next()
	}
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, session.ErrInvalidInput), errors.Is(err, session.ErrParse):
		utils.GinBadRequest(c, msg)
	case errors.Is(err, session.ErrUserNotFound), errors.Is(err, session.ErrInvalidPassword):
		utils.GinUnauthorized(c, "Invalid username or password.")
	case errors.Is(err, session.ErrNoCurrentUser):
		utils.GinUnauthorized(c, msg)
	case errors.Is(err, session.ErrRegistrationClosed):
		utils.GinForbidden(c, msg)
	case errors.Is(err, dashboard.ErrNotFound):
		utils.GinNotFound(c, msg)
	case errors.Is(err, session.ErrDuplicateUsername), errors.Is(err, session.ErrSyncDisabled):
		utils.GinConflict(c, msg)
	case errors.Is(err, syncbridge.ErrSyncUnavailable):
		utils.GinServiceUnavailable(c, msg)
	default:
		utils.GinInternalServerError(c, msg)
	}
}

// bindJSON decodes the body into v and answers 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		utils.GinBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// paginate applies ?page and ?limit (default: everything) to items.
func paginate[T any](c *gin.Context, items []T) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		utils.GinBadRequest(c, "Invalid 'page' parameter. Must be a positive integer.")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 || limit > 100 {
		utils.GinBadRequest(c, "Invalid 'limit' parameter. Must be between 0 and 100.")
		return
	}
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:  db.Paginate(items, page, limit),
		Total: len(items),
		Page:  page,
		Limit: limit,
	})
}
