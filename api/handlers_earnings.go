package api

import (
	"net/http"

	"creatorhub/dashboard"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

// ListEarningsHandler returns every entry, or those of ?month=YYYY-MM.
func ListEarningsHandler(c *gin.Context, deps *Deps) {
	if month := c.Query("month"); month != "" {
		paginate(c, deps.Dashboard.EarningsByMonth(month))
		return
	}
	paginate(c, deps.Dashboard.DailyEarnings())
}

func CreateEarningHandler(c *gin.Context, deps *Deps) {
	var in dashboard.EarningInput
	if !bindJSON(c, &in) {
		return
	}
	earning, err := deps.Dashboard.AddDailyEarning(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, earning)
}

func TodayEarningsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.TodayEarnings())
}

func EarningsOverviewHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.EarningsOverview())
}

func MonthlyStatsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.MonthlyStats())
}

func MonthStatsHandler(c *gin.Context, deps *Deps) {
	month := c.Param("month")
	stats, ok := deps.Dashboard.MonthlyStatsFor(month)
	if !ok {
		utils.GinNotFound(c, "No earnings recorded for "+month+".")
		return
	}
	c.JSON(http.StatusOK, stats)
}

type AffiliatesRequest struct {
	Count int `json:"count"`
}

func UpdateAffiliatesHandler(c *gin.Context, deps *Deps) {
	var req AffiliatesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := deps.Dashboard.UpdateActiveAffiliates(c.Request.Context(), req.Count); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Dashboard.EarningsOverview())
}
