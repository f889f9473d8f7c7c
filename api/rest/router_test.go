package rest_test

import (
	"bytes"
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
	"github.com/kasuganosora/tilepathd/config"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/resource"
	"github.com/kasuganosora/tilepathd/scheduler"
	"github.com/kasuganosora/tilepathd/testutil"
)

const (
	testClientID = "mapper"
	testAPIKey   = "super-secret-key"
	testAdminKey = "admin-key"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	nav    *nav.Navigator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAPIKey), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{AdminKey: testAdminKey},
		Security: config.SecurityConfig{
			JWTSecret:      "test-secret",
			JWTTTL:         time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			Clients: []config.APIClient{
				{ID: testClientID, KeyHash: string(hash)},
			},
		},
	}

	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	n := nav.New(c, ps, logger, nav.Options{PathCacheTTL: time.Minute})
	require.NoError(t, n.RegisterMap(testMap(1)))

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop() })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	router := rest.NewRouter(rest.Deps{
		Cfg:    cfg,
		DB:     db,
		Cache:  c,
		Nav:    n,
		Audit:  auditSvc,
		Sched:  sched,
		Logger: logger,
	})
	return &testServer{router: router, db: db, nav: n}
}

// testMap is a 4x4 open map with a wall at (1,1).
func testMap(id int) *resource.TileMap {
	m := &resource.TileMap{
		ID:        id,
		Name:      "test",
		Width:     4,
		Height:    4,
		Collision: make([]int, 16),
	}
	m.Collision[1*4+1] = resource.BlockAll
	return m
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/token", "", gin.H{
		"client_id": testClientID,
		"api_key":   testAPIKey,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
