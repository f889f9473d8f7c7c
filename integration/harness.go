package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kasuganosora/tilepathd/api/rest"
	"github.com/kasuganosora/tilepathd/audit"
	"github.com/kasuganosora/tilepathd/cache"
	"github.com/kasuganosora/tilepathd/config"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/resource"
	"github.com/kasuganosora/tilepathd/scheduler"
	"github.com/kasuganosora/tilepathd/testutil"
)

const (
	ClientID = "integration-client"
	APIKey   = "integration-api-key"
	AdminKey = "integration-admin-key"
)

// TestServer wraps a real HTTP server with all service subsystems wired
// together.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	Nav    *nav.Navigator
	Server *httptest.Server
	URL    string
}

// NewTestServer creates a fully wired service instance for integration
// testing. It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	return newInstance(t, db, c, pubsub)
}

// NewTestCluster creates two instances sharing the same database, cache and
// pub/sub, the way two replicas behind a load balancer would.
func NewTestCluster(t *testing.T) (*TestServer, *TestServer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	return newInstance(t, db, c, pubsub), newInstance(t, db, c, pubsub)
}

func newInstance(t *testing.T, db *gorm.DB, c cache.Cache, pubsub cache.PubSub) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	hash, err := bcrypt.GenerateFromPassword([]byte(APIKey), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		Server: config.ServerConfig{AdminKey: AdminKey},
		Security: config.SecurityConfig{
			JWTSecret:      "integration-test-secret",
			JWTTTL:         time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 2000,
			Clients:        []config.APIClient{{ID: ClientID, KeyHash: string(hash)}},
		},
		Pathfind: config.PathfindConfig{
			PathCacheTTL:  time.Minute,
			HotRoutesSize: 100,
		},
	}

	navigator := nav.New(c, pubsub, logger, nav.Options{
		PathCacheTTL:  cfg.Pathfind.PathCacheTTL,
		HotRoutesSize: cfg.Pathfind.HotRoutesSize,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, navigator.WatchUpdates(ctx, rest.DBMapSource(db)))

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop() })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	router := rest.NewRouter(rest.Deps{
		Cfg:    cfg,
		DB:     db,
		Cache:  c,
		Nav:    navigator,
		Audit:  auditSvc,
		Sched:  sched,
		Logger: logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &TestServer{
		DB:     db,
		Cache:  c,
		PubSub: pubsub,
		Nav:    navigator,
		Server: srv,
		URL:    srv.URL,
	}
}

// Login obtains a token for the integration client.
func (s *TestServer) Login(t *testing.T) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	code := s.Do(t, http.MethodPost, "/api/auth/token", "", map[string]string{
		"client_id": ClientID,
		"api_key":   APIKey,
	}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// Do sends one JSON request and decodes the JSON response into out (which
// may be nil). It returns the HTTP status code.
func (s *TestServer) Do(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// Admin sends a request carrying the admin key.
func (s *TestServer) Admin(t *testing.T, method, path string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", AdminKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// SampleMap builds a w x h map document with the given wall tiles blocked.
func SampleMap(id, w, h int, walls ...[2]int) *resource.TileMap {
	m := &resource.TileMap{
		ID:        id,
		Name:      "integration",
		Width:     w,
		Height:    h,
		Collision: make([]int, w*h),
	}
	for _, wall := range walls {
		m.Collision[wall[1]*w+wall[0]] = resource.BlockAll
	}
	return m
}
