package api

import (
	"net/http"

	"creatorhub/dashboard"
	"creatorhub/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- Goals ---

// ListGoalsHandler lists goals, filtered by repeated ?content_query parts and paginated
// with ?page and ?limit.
func ListGoalsHandler(c *gin.Context, deps *Deps) {
	goals, err := deps.Dashboard.SearchGoals(c.QueryArray("content_query"))
	if err != nil {
		respondError(c, err)
		return
	}
	paginate(c, goals)
}

func CreateGoalHandler(c *gin.Context, deps *Deps) {
	var in dashboard.GoalInput
	if !bindJSON(c, &in) {
		return
	}
	goal, err := deps.Dashboard.AddGoal(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func GetGoalHandler(c *gin.Context, deps *Deps) {
	goal, err := deps.Dashboard.Goal(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func UpdateGoalHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.GoalPatch
	if !bindJSON(c, &patch) {
		return
	}
	goal, err := deps.Dashboard.UpdateGoal(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func DeleteGoalHandler(c *gin.Context, deps *Deps) {
	if err := deps.Dashboard.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type GoalProgressRequest struct {
	Current decimal.Decimal `json:"current"`
}

// UpdateGoalProgressHandler sets the goal's current amount and recomputes milestones and status.
func UpdateGoalProgressHandler(c *gin.Context, deps *Deps) {
	var req GoalProgressRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := deps.Dashboard.UpdateGoalProgress(c.Request.Context(), c.Param("id"), req.Current)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// --- Tasks ---

// ListTasksHandler accepts ?date=YYYY-MM-DD besides the content query and pagination.
func ListTasksHandler(c *gin.Context, deps *Deps) {
	tasks, err := deps.Dashboard.SearchTasks(c.QueryArray("content_query"))
	if err != nil {
		respondError(c, err)
		return
	}
	if date := c.Query("date"); date != "" {
		filtered := []models.Task{}
		for _, t := range tasks {
			if t.Date == date {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	paginate(c, tasks)
}

func CreateTaskHandler(c *gin.Context, deps *Deps) {
	var in dashboard.TaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := deps.Dashboard.AddTask(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func TodayTasksHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.TodayTasks())
}

func TaskStatsHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.TaskStats())
}

func UpdateTaskHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.TaskPatch
	if !bindJSON(c, &patch) {
		return
	}
	task, err := deps.Dashboard.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTaskHandler(c *gin.Context, deps *Deps) {
	if err := deps.Dashboard.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleTaskHandler advances the task through pending, in-progress and completed.
func ToggleTaskHandler(c *gin.Context, deps *Deps) {
	task, err := deps.Dashboard.ToggleTaskStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// --- Accounts ---

// ListAccountsHandler accepts ?type=sales|social besides the content query and pagination.
func ListAccountsHandler(c *gin.Context, deps *Deps) {
	accounts, err := deps.Dashboard.SearchAccounts(c.QueryArray("content_query"))
	if err != nil {
		respondError(c, err)
		return
	}
	if accountType := c.Query("type"); accountType != "" {
		filtered := []models.Account{}
		for _, a := range accounts {
			if a.Type == accountType {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}
	paginate(c, accounts)
}

func CreateAccountHandler(c *gin.Context, deps *Deps) {
	var in dashboard.AccountInput
	if !bindJSON(c, &in) {
		return
	}
	account, err := deps.Dashboard.AddAccount(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func UpdateAccountHandler(c *gin.Context, deps *Deps) {
	var patch dashboard.AccountPatch
	if !bindJSON(c, &patch) {
		return
	}
	account, err := deps.Dashboard.UpdateAccount(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func DeleteAccountHandler(c *gin.Context, deps *Deps) {
	if err := deps.Dashboard.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func AffiliateTrackerHandler(c *gin.Context, deps *Deps) {
	c.JSON(http.StatusOK, deps.Dashboard.AffiliateTrackerData())
}
