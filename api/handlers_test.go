package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"creatorhub/config"
	"creatorhub/dashboard"
	"creatorhub/db"
	"creatorhub/ideas"
	"creatorhub/models"
	"creatorhub/session"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// testJWTSecret is a fixed secret for generating tokens during tests.
const testJWTSecret = "test-integration-secret-key-needs-to-be-long-enough"

type testServer struct {
	router  *gin.Engine
	cfg     *config.Config
	session *session.Session
	remote  *syncbridge.MemoryRemote
}

// setupTestServer wires the full router over a file store in a temp dir and an
// in-memory sync remote. The session clock is fixed at 2024-06-15 12:00 UTC.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.DbFilePath = filepath.Join(t.TempDir(), "test_api_db.json")
	cfg.SaveInterval = 10 * time.Millisecond
	cfg.EnableBackup = false
	cfg.JwtSecret = testJWTSecret
	cfg.TokenLifetime = time.Hour
	cfg.BcryptCost = 4

	store, err := db.NewFileStore(cfg)
	require.NoError(t, err, "Failed to initialize test store")
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: Error closing test store: %v", err)
		}
	})

	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }

	remote := syncbridge.NewMemoryRemote()
	bridge := syncbridge.New(remote, store, time.Second).WithClock(clock)
	sess := session.New(store, bridge, session.WithClock(clock), session.WithHasher(utils.NewBcryptHasher(cfg.BcryptCost)))
	dash := dashboard.New(sess, store, dashboard.WithGrowthEstimator(dashboard.GrowthFunc(func(models.Account) float64 { return 4.2 })))

	router := SetupRouter(&Deps{
		Config:    cfg,
		Session:   sess,
		Dashboard: dash,
		Ideas:     ideas.NewService(dash, nil),
	})
	return &testServer{router: router, cfg: cfg, session: sess, remote: remote}
}

// performRequest executes an HTTP request against the test router.
// It sets Content-Type to application/json for non-GET requests with a body,
// and the Authorization header when token is provided.
func performRequest(router *gin.Engine, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, path, body)
	if err != nil {
		panic(fmt.Sprintf("Failed to create request: %v", err))
	}
	if body != nil && method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func marshalJSONBody(t *testing.T, data interface{}) *bytes.Buffer {
	bodyBytes, err := json.Marshal(data)
	require.NoError(t, err, "Failed to marshal JSON body for request")
	return bytes.NewBuffer(bodyBytes)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

// registerAndLogin creates a profile and logs it in, returning its token.
func registerAndLogin(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	payload := gin.H{"username": username, "password": password, "displayName": "Creator " + username}
	rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, payload), "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return login(t, router, username, password)
}

func login(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	rr := performRequest(router, http.MethodPost, "/auth/login", marshalJSONBody(t, gin.H{"username": username, "password": password}), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[LoginResponse](t, rr)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router

	t.Run("Register Success", func(t *testing.T) {
		payload := gin.H{"username": "Alice", "password": "secret", "displayName": "Alice A"}
		rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, payload), "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		assert.Equal(t, "alice", gjson.Get(rr.Body.String(), "username").String())
		assert.Equal(t, "Alice A", gjson.Get(rr.Body.String(), "displayName").String())
		assert.False(t, gjson.Get(rr.Body.String(), "password").Exists(), "password hash must not be returned")
		_, loggedIn := srv.session.CurrentUser()
		assert.False(t, loggedIn, "registering does not log in")
	})

	t.Run("Register Duplicate Username", func(t *testing.T) {
		payload := gin.H{"username": "ALICE", "password": "other", "displayName": "Someone"}
		rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, payload), "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Register Missing Fields", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, gin.H{"username": "bob"}), "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Register Short Password", func(t *testing.T) {
		payload := gin.H{"username": "bob", "password": "abc", "displayName": "Bob"}
		rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, payload), "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Register Closed", func(t *testing.T) {
		gs := srv.session.GlobalSettings()
		gs.AllowUserRegistration = false
		require.NoError(t, srv.session.SetGlobalSettings(gs))
		defer func() {
			gs.AllowUserRegistration = true
			require.NoError(t, srv.session.SetGlobalSettings(gs))
		}()

		payload := gin.H{"username": "carol", "password": "secret", "displayName": "Carol"}
		rr := performRequest(router, http.MethodPost, "/auth/register", marshalJSONBody(t, payload), "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	var token string
	t.Run("Login Success", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/auth/login", marshalJSONBody(t, gin.H{"username": "alice", "password": "secret"}), "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeBody[LoginResponse](t, rr)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
		token = resp.Token

		claims, err := utils.ValidateJWT(token, srv.cfg)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
	})

	t.Run("Login Wrong Password", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/auth/login", marshalJSONBody(t, gin.H{"username": "alice", "password": "wrong"}), "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid username or password.", gjson.Get(rr.Body.String(), "error").String())
	})

	t.Run("Login Unknown User", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/auth/login", marshalJSONBody(t, gin.H{"username": "nobody", "password": "secret"}), "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Me", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/auth/me", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "alice", gjson.Get(rr.Body.String(), "username").String())
	})

	t.Run("Me Without Token", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Me With Garbage Token", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/auth/me", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Logout Ends Session", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/auth/logout", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = performRequest(router, http.MethodGet, "/auth/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "token outlives the session but is rejected")
	})
}

func TestSessionBinding(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router

	aliceToken := registerAndLogin(t, router, "alice", "secret")
	bobToken := registerAndLogin(t, router, "bob", "secret")

	rr := performRequest(router, http.MethodGet, "/auth/me", nil, aliceToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "only the current profile's token is accepted")

	rr = performRequest(router, http.MethodGet, "/auth/me", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bob", gjson.Get(rr.Body.String(), "username").String())
}

func TestGoalEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	newGoal := func(title, category string, target int) models.Goal {
		payload := gin.H{"title": title, "category": category, "target": target, "deadline": "2024-12-31"}
		rr := performRequest(router, http.MethodPost, "/goals", marshalJSONBody(t, payload), token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		return decodeBody[models.Goal](t, rr)
	}

	var goal models.Goal
	t.Run("Create", func(t *testing.T) {
		goal = newGoal("Emergency fund", "Financial", 1000)
		assert.NotEmpty(t, goal.ID)
		require.Len(t, goal.Milestones, 4)
		assert.True(t, decimal.NewFromInt(250).Equal(goal.Milestones[0].Amount))
		assert.True(t, decimal.NewFromInt(1000).Equal(goal.Milestones[3].Amount))
	})

	t.Run("Create Invalid", func(t *testing.T) {
		payload := gin.H{"title": "", "category": "Financial", "target": 0, "deadline": "2024-12-31"}
		rr := performRequest(router, http.MethodPost, "/goals", marshalJSONBody(t, payload), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Get", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/goals/"+goal.ID, nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Emergency fund", gjson.Get(rr.Body.String(), "title").String())
	})

	t.Run("Get Unknown", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/goals/missing", nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Progress", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/goals/"+goal.ID+"/progress", marshalJSONBody(t, gin.H{"current": 600}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		updated := decodeBody[models.Goal](t, rr)

		flags := make([]bool, len(updated.Milestones))
		for i, m := range updated.Milestones {
			flags[i] = m.Completed
		}
		assert.Equal(t, []bool{true, true, false, false}, flags)
		assert.True(t, decimal.NewFromInt(600).Equal(updated.Current))
	})

	t.Run("Update", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/goals/"+goal.ID, marshalJSONBody(t, gin.H{"title": "Rainy day fund"}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Rainy day fund", gjson.Get(rr.Body.String(), "title").String())
	})

	t.Run("List With Content Query And Pagination", func(t *testing.T) {
		newGoal("Grow channel", "Audience", 500)
		newGoal("Launch course", "Business", 2000)

		rr := performRequest(router, http.MethodGet, "/goals?limit=2&page=2", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		page := decodeBody[ListResponse[models.Goal]](t, rr)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Data, 1)

		q := url.Values{}
		q.Add("content_query", "target greaterThan 800")
		rr = performRequest(router, http.MethodGet, "/goals?"+q.Encode(), nil, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		filtered := decodeBody[ListResponse[models.Goal]](t, rr)
		require.Equal(t, 2, filtered.Total)

		q = url.Values{}
		q.Add("content_query", "title startsWith-insensitive grow")
		rr = performRequest(router, http.MethodGet, "/goals?"+q.Encode(), nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		filtered = decodeBody[ListResponse[models.Goal]](t, rr)
		require.Len(t, filtered.Data, 1)
		assert.Equal(t, "Grow channel", filtered.Data[0].Title)
	})

	t.Run("List Bad Query", func(t *testing.T) {
		q := url.Values{}
		q.Add("content_query", "title like grow")
		rr := performRequest(router, http.MethodGet, "/goals?"+q.Encode(), nil, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("List Bad Pagination", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/goals?page=0", nil, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		rr = performRequest(router, http.MethodGet, "/goals?limit=101", nil, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rr := performRequest(router, http.MethodDelete, "/goals/"+goal.ID, nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = performRequest(router, http.MethodDelete, "/goals/"+goal.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTaskEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	create := func(title, date string) models.Task {
		payload := gin.H{"title": title, "time": "09:00", "date": date, "priority": "high", "category": "content"}
		rr := performRequest(router, http.MethodPost, "/tasks", marshalJSONBody(t, payload), token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		return decodeBody[models.Task](t, rr)
	}

	today := create("Record video", "2024-06-15")
	create("Edit video", "2024-06-16")
	assert.Equal(t, models.TaskPending, today.Status)

	t.Run("Stale Date Rejected", func(t *testing.T) {
		payload := gin.H{"title": "Old", "time": "09:00", "date": "2024-06-01", "priority": "low", "category": "content"}
		rr := performRequest(router, http.MethodPost, "/tasks", marshalJSONBody(t, payload), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Toggle Cycles Status", func(t *testing.T) {
		var statuses []string
		for i := 0; i < 3; i++ {
			rr := performRequest(router, http.MethodPost, "/tasks/"+today.ID+"/toggle", nil, token)
			require.Equal(t, http.StatusOK, rr.Code)
			statuses = append(statuses, gjson.Get(rr.Body.String(), "status").String())
		}
		assert.Equal(t, []string{models.TaskInProgress, models.TaskCompleted, models.TaskPending}, statuses)
	})

	t.Run("Filter By Date", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/tasks?date=2024-06-16", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		page := decodeBody[ListResponse[models.Task]](t, rr)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Edit video", page.Data[0].Title)
	})

	t.Run("Today And Stats", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/tasks/today", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, gjson.Parse(rr.Body.String()).Array(), 1)

		rr = performRequest(router, http.MethodGet, "/tasks/stats", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		stats := decodeBody[dashboard.TaskStats](t, rr)
		assert.Equal(t, 2, stats.TotalTasks)
		assert.Equal(t, 1, stats.TodayTasks)
	})

	t.Run("Update And Delete", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/tasks/"+today.ID, marshalJSONBody(t, gin.H{"status": "completed"}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, models.TaskCompleted, gjson.Get(rr.Body.String(), "status").String())

		rr = performRequest(router, http.MethodPut, "/tasks/"+today.ID, marshalJSONBody(t, gin.H{"status": "someday"}), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = performRequest(router, http.MethodDelete, "/tasks/"+today.ID, nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestAccountEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	payload := gin.H{"name": "Hotmart", "type": "sales", "platform": "Hotmart", "username": "me", "email": "me@example.com", "earnings": 2000}
	rr := performRequest(router, http.MethodPost, "/accounts", marshalJSONBody(t, payload), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	account := decodeBody[models.Account](t, rr)

	payload = gin.H{"name": "YouTube", "type": "social", "platform": "YouTube", "username": "me", "email": "me@example.com", "followers": 1200}
	rr = performRequest(router, http.MethodPost, "/accounts", marshalJSONBody(t, payload), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	t.Run("Filter By Type", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/accounts?type=social", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		page := decodeBody[ListResponse[models.Account]](t, rr)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "YouTube", page.Data[0].Name)
	})

	t.Run("Tracker", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/accounts/tracker", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		rows := gjson.Parse(rr.Body.String()).Array()
		require.Len(t, rows, 1, "only active sales accounts are tracked")
		assert.Equal(t, "Hotmart", rows[0].Get("name").String())
	})

	t.Run("Invalid Email", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/accounts/"+account.ID, marshalJSONBody(t, gin.H{"email": "nope"}), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rr := performRequest(router, http.MethodDelete, "/accounts/"+account.ID, nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestEarningEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	for _, amount := range []int{500, 300} {
		payload := gin.H{"date": "2024-06-15", "amount": amount, "source": "Hotmart"}
		rr := performRequest(router, http.MethodPost, "/earnings", marshalJSONBody(t, payload), token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	t.Run("Invalid Amount", func(t *testing.T) {
		payload := gin.H{"date": "2024-06-15", "amount": -5, "source": "Hotmart"}
		rr := performRequest(router, http.MethodPost, "/earnings", marshalJSONBody(t, payload), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Overview", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/earnings/overview", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		overview := decodeBody[dashboard.EarningsOverview](t, rr)
		assert.True(t, decimal.NewFromInt(800).Equal(overview.TodayTotal), "today total %s", overview.TodayTotal)
		assert.True(t, decimal.NewFromInt(800).Equal(overview.MonthTotal), "month total %s", overview.MonthTotal)
	})

	t.Run("Monthly", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/earnings/monthly/2024-06", nil, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		stats := decodeBody[models.MonthlyStats](t, rr)
		assert.True(t, decimal.NewFromInt(800).Equal(stats.TotalEarnings))
		assert.Len(t, stats.DailyEarnings, 2)

		rr = performRequest(router, http.MethodGet, "/earnings/monthly/2023-01", nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("List By Month", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/earnings?month=2024-06", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(2), gjson.Get(rr.Body.String(), "total").Int())

		rr = performRequest(router, http.MethodGet, "/earnings?month=2024-05", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(0), gjson.Get(rr.Body.String(), "total").Int())
	})

	t.Run("Affiliates", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/earnings/affiliates", marshalJSONBody(t, gin.H{"count": 7}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, int64(7), gjson.Get(rr.Body.String(), "activeAffiliates").Int())

		rr = performRequest(router, http.MethodPut, "/earnings/affiliates", marshalJSONBody(t, gin.H{"count": -1}), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDataEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	payload := gin.H{"title": "Emergency fund", "category": "Financial", "target": 1000, "deadline": "2024-12-31"}
	rr := performRequest(router, http.MethodPost, "/goals", marshalJSONBody(t, payload), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var exported string
	t.Run("Export", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/data/export", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "creator-hub-backup-2024-06-15.json")
		exported = rr.Body.String()
		assert.Equal(t, int64(1), gjson.Get(exported, "goals.#").Int())
	})

	t.Run("Backups", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/data/backups", nil, token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		key := gjson.Get(rr.Body.String(), "key").String()
		require.NotEmpty(t, key)

		rr = performRequest(router, http.MethodGet, "/data/backups", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, key, gjson.Get(rr.Body.String(), "0.key").String())

		rr = performRequest(router, http.MethodPost, "/data/reset", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(0), gjson.Get(rr.Body.String(), "goals.#").Int())

		rr = performRequest(router, http.MethodPost, "/data/backups/"+url.PathEscape(key)+"/restore", nil, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, int64(1), gjson.Get(rr.Body.String(), "goals.#").Int())

		rr = performRequest(router, http.MethodPost, "/data/backups/nope/restore", nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Import", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/data/reset", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = performRequest(router, http.MethodPost, "/data/import", strings.NewReader(exported), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Emergency fund", gjson.Get(rr.Body.String(), "goals.0.title").String())

		rr = performRequest(router, http.MethodPost, "/data/import", strings.NewReader("{not json"), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = performRequest(router, http.MethodGet, "/data", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(1), gjson.Get(rr.Body.String(), "goals.#").Int(), "failed import leaves the document alone")
	})

	t.Run("Validate And Stats", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/data/validate", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, gjson.Get(rr.Body.String(), "valid").Bool())

		rr = performRequest(router, http.MethodGet, "/stats", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(1), gjson.Get(rr.Body.String(), "totalGoals").Int())
	})
}

func TestSettingsEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	t.Run("Patch Ignores Maintained Fields", func(t *testing.T) {
		body := `{"bio":"Hello","monthlyRevenue":999999,"lastAccess":"2001-01-01T00:00:00Z"}`
		rr := performRequest(router, http.MethodPatch, "/settings", strings.NewReader(body), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		settings := decodeBody[models.Settings](t, rr)
		assert.Equal(t, "Hello", settings.Bio)
		assert.True(t, settings.MonthlyRevenue.IsZero())
		assert.NotEqual(t, 2001, settings.LastAccess.Year())
	})

	t.Run("Patch Not An Object", func(t *testing.T) {
		rr := performRequest(router, http.MethodPatch, "/settings", strings.NewReader(`[1,2]`), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Profile Renames User", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/settings/profile", marshalJSONBody(t, gin.H{"displayName": "New Name"}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = performRequest(router, http.MethodGet, "/auth/me", nil, token)
		assert.Equal(t, "New Name", gjson.Get(rr.Body.String(), "displayName").String())
	})

	t.Run("Language", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/settings/language", marshalJSONBody(t, gin.H{"language": "pt-BR"}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "pt", gjson.Get(rr.Body.String(), "language").String())

		rr = performRequest(router, http.MethodPut, "/settings/language", marshalJSONBody(t, gin.H{"language": "xx-invalid-!!"}), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Dark Mode", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/settings/dark-mode", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		first := gjson.Get(rr.Body.String(), "darkMode").Bool()

		rr = performRequest(router, http.MethodPost, "/settings/dark-mode", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, !first, gjson.Get(rr.Body.String(), "darkMode").Bool())
	})

	t.Run("Global", func(t *testing.T) {
		payload := gin.H{"defaultLanguage": "pt-BR", "allowUserRegistration": true, "cloudSyncEnabled": false}
		rr := performRequest(router, http.MethodPut, "/settings/global", marshalJSONBody(t, payload), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "pt", gjson.Get(rr.Body.String(), "defaultLanguage").String())

		rr = performRequest(router, http.MethodGet, "/settings/global", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, gjson.Get(rr.Body.String(), "cloudSyncEnabled").Bool())
	})
}

func TestIdeaEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	request := gin.H{"topic": "Fitness", "region": "Brasil", "productType": "Curso"}
	rr := performRequest(router, http.MethodPost, "/ideas/products", marshalJSONBody(t, request), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	generated := decodeBody[[]models.ProductIdea](t, rr)
	assert.Len(t, generated, 3)

	rr = performRequest(router, http.MethodGet, "/ideas/products?topic=Fitness&region=Brasil&productType=Curso", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, gjson.Parse(rr.Body.String()).Array(), 3)

	rr = performRequest(router, http.MethodGet, "/ideas/products?topic=Pets&region=Brasil&productType=Curso", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, gjson.Parse(rr.Body.String()).Array())

	rr = performRequest(router, http.MethodPost, "/ideas/kits", marshalJSONBody(t, gin.H{"productName": "Ebook", "topic": "Marketing Digital"}), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, gjson.Parse(rr.Body.String()).Array(), 2)

	rr = performRequest(router, http.MethodPost, "/ideas/trending", marshalJSONBody(t, gin.H{"topic": "Fitness"}), token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSyncEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	t.Run("Disabled By Default", func(t *testing.T) {
		rr := performRequest(router, http.MethodGet, "/sync/status", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, gjson.Get(rr.Body.String(), "isEnabled").Bool())
		assert.NotEmpty(t, gjson.Get(rr.Body.String(), "deviceId").String())

		rr = performRequest(router, http.MethodPost, "/sync/force", nil, token)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Enable Pushes", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/sync", marshalJSONBody(t, gin.H{"enabled": true}), token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeBody[ToggleSyncResponse](t, rr)
		assert.Empty(t, resp.Warning)
		assert.True(t, resp.Status.IsEnabled)
		assert.True(t, resp.Status.IsOnline)
		assert.True(t, resp.Status.Synced)

		exists, err := srv.remote.Exists(context.Background(), "creator")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Force While Offline", func(t *testing.T) {
		srv.remote.SetOffline(true)
		defer srv.remote.SetOffline(false)

		rr := performRequest(router, http.MethodPost, "/sync/force", nil, token)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		rr = performRequest(router, http.MethodPut, "/sync", marshalJSONBody(t, gin.H{"enabled": true}), token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, gjson.Get(rr.Body.String(), "warning").String(), "failed initial push is reported, not fatal")
	})

	t.Run("Force Online", func(t *testing.T) {
		rr := performRequest(router, http.MethodPost, "/sync/force", nil, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, gjson.Get(rr.Body.String(), "synced").Bool())
	})

	t.Run("Missing Enabled", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/sync", marshalJSONBody(t, gin.H{}), token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Disable", func(t *testing.T) {
		rr := performRequest(router, http.MethodPut, "/sync", marshalJSONBody(t, gin.H{"enabled": false}), token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, gjson.Get(rr.Body.String(), "status.isEnabled").Bool())

		rr = performRequest(router, http.MethodPost, "/sync/force", nil, token)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestDeleteMe(t *testing.T) {
	srv := setupTestServer(t)
	router := srv.router
	token := registerAndLogin(t, router, "creator", "secret")

	rr := performRequest(router, http.MethodDelete, "/auth/me", nil, token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = performRequest(router, http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = performRequest(router, http.MethodPost, "/auth/login", marshalJSONBody(t, gin.H{"username": "creator", "password": "secret"}), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
