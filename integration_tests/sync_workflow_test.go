package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"creatorhub/api"
	"creatorhub/config"
	"creatorhub/dashboard"
	"creatorhub/db"
	"creatorhub/ideas"
	"creatorhub/mirror"
	"creatorhub/session"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testJwtSecret = "a-very-secure-secret-for-testing-only"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type deviceClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *deviceClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// device is one dashboard installation with its own storage, served over HTTP.
type device struct {
	server *httptest.Server
}

// startDevice brings up a dashboard installation whose sync remote is the mirror at mirrorURL.
func startDevice(t *testing.T, mirrorURL string, start time.Time) *device {
	t.Helper()

	cfg := config.Default()
	cfg.DbFilePath = filepath.Join(t.TempDir(), "device.json")
	cfg.SaveInterval = 10 * time.Millisecond
	cfg.EnableBackup = false
	cfg.JwtSecret = testJwtSecret
	cfg.BcryptCost = 4
	cfg.RemoteKind = config.RemoteHTTP
	cfg.RemoteURL = mirrorURL

	store, err := db.NewFileStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	remote, err := syncbridge.RemoteFromConfig(cfg)
	require.NoError(t, err)

	clock := &deviceClock{t: start}
	bridge := syncbridge.New(remote, store, 2*time.Second).WithClock(clock.Now)
	sess := session.New(store, bridge, session.WithClock(clock.Now), session.WithHasher(utils.NewBcryptHasher(cfg.BcryptCost)))
	dash := dashboard.New(sess, store)

	server := httptest.NewServer(api.SetupRouter(&api.Deps{
		Config:    cfg,
		Session:   sess,
		Dashboard: dash,
		Ideas:     ideas.NewService(dash, nil),
	}))
	t.Cleanup(server.Close)
	return &device{server: server}
}

// do sends a JSON request and returns the status code and body.
func (d *device) do(t *testing.T, method, path string, payload any, token string) (int, string) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, d.server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func (d *device) login(t *testing.T, username, password string) string {
	t.Helper()
	code, body := d.do(t, http.MethodPost, "/auth/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, code, body)
	token := gjson.Get(body, "token").String()
	require.NotEmpty(t, token)
	return token
}

// TestTwoDeviceSyncWorkflow registers a profile on one device, adopts it on a second
// device through the mirror and checks that the newest document wins on login.
func TestTwoDeviceSyncWorkflow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backing := syncbridge.NewMemoryRemote()
	mirrorServer := httptest.NewServer(mirror.NewRouter(backing))
	defer mirrorServer.Close()

	noon := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	laptop := startDevice(t, mirrorServer.URL, noon)
	phone := startDevice(t, mirrorServer.URL, noon.Add(time.Hour))

	// --- Step 1: register with sync on the laptop ---
	code, body := laptop.do(t, http.MethodPost, "/auth/register", gin.H{
		"username": "Creator", "password": "secret", "displayName": "The Creator", "enableSync": true,
	}, "")
	require.Equal(t, http.StatusCreated, code, body)
	require.True(t, gjson.Get(body, "cloudSync").Bool())

	code, body = phone.do(t, http.MethodPost, "/auth/register", gin.H{
		"username": "creator", "password": "other", "displayName": "Impostor", "enableSync": true,
	}, "")
	require.Equal(t, http.StatusConflict, code, "username is taken on the mirror: %s", body)

	// --- Step 2: add a goal on the laptop; the save is mirrored ---
	laptopToken := laptop.login(t, "creator", "secret")
	code, body = laptop.do(t, http.MethodPost, "/goals", gin.H{
		"title": "Emergency fund", "category": "Financial", "target": 1000, "deadline": "2024-12-31",
	}, laptopToken)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = laptop.do(t, http.MethodGet, "/sync/status", nil, laptopToken)
	require.Equal(t, http.StatusOK, code)
	require.True(t, gjson.Get(body, "isEnabled").Bool())
	require.True(t, gjson.Get(body, "isOnline").Bool())
	require.True(t, gjson.Get(body, "synced").Bool())

	// --- Step 3: the phone adopts the profile from the mirror ---
	code, _ = phone.do(t, http.MethodPost, "/auth/login", gin.H{"username": "creator", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, code)

	phoneToken := phone.login(t, "creator", "secret")
	code, body = phone.do(t, http.MethodGet, "/goals", nil, phoneToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(1), gjson.Get(body, "total").Int())
	require.Equal(t, "Emergency fund", gjson.Get(body, "data.0.title").String())

	// --- Step 4: a later edit on the phone wins at the laptop's next login ---
	code, body = phone.do(t, http.MethodPost, "/tasks", gin.H{
		"title": "Record intro", "time": "10:00", "date": "2024-06-15", "priority": "high", "category": "content",
	}, phoneToken)
	require.Equal(t, http.StatusCreated, code, body)

	code, _ = laptop.do(t, http.MethodPost, "/auth/logout", nil, laptopToken)
	require.Equal(t, http.StatusOK, code)
	laptopToken = laptop.login(t, "creator", "secret")

	code, body = laptop.do(t, http.MethodGet, "/tasks", nil, laptopToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Record intro", gjson.Get(body, "data.0.title").String(), "laptop adopts the newer phone document")

	// --- Step 5: an unreachable mirror surfaces as 503 but local work continues ---
	backing.SetOffline(true)
	code, _ = phone.do(t, http.MethodPost, "/sync/force", nil, phoneToken)
	require.Equal(t, http.StatusServiceUnavailable, code)

	code, body = phone.do(t, http.MethodPost, "/earnings", gin.H{"date": "2024-06-15", "amount": 120, "source": "Hotmart"}, phoneToken)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = phone.do(t, http.MethodGet, "/sync/status", nil, phoneToken)
	require.Equal(t, http.StatusOK, code)
	require.False(t, gjson.Get(body, "isOnline").Bool())
	require.False(t, gjson.Get(body, "synced").Bool())

	backing.SetOffline(false)
	code, body = phone.do(t, http.MethodPost, "/sync/force", nil, phoneToken)
	require.Equal(t, http.StatusOK, code, body)
	require.True(t, gjson.Get(body, "synced").Bool())

	payload, err := backing.Get(context.Background(), "creator")
	require.NoError(t, err)
	require.Len(t, payload.UserData.DailyEarnings, 1)
}
