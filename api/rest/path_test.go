package rest_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tilepathd/model"
	"github.com/kasuganosora/tilepathd/nav"
)

func pathReq(mapID, fx, fy, tx, ty int) gin.H {
	return gin.H{
		"map_id": mapID,
		"from":   gin.H{"x": fx, "y": fy},
		"to":     gin.H{"x": tx, "y": ty},
	}
}

func TestPathFind_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/path", "", pathReq(1, 0, 0, 3, 0))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPathFind_ReturnsPath(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/path", token, pathReq(1, 0, 0, 3, 0))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res nav.Result
	decode(t, w, &res)
	assert.True(t, res.Found)
	assert.False(t, res.Cached)
	assert.Len(t, res.Path, 4)
	assert.Equal(t, 3.0, res.Cost)

	// same query again comes from cache
	w = s.do(t, http.MethodPost, "/api/path", token, pathReq(1, 0, 0, 3, 0))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.True(t, res.Cached)
}

func TestPathFind_UnreachableGoal(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	// (1,1) is a wall, nothing can step onto it
	w := s.do(t, http.MethodPost, "/api/path", token, pathReq(1, 0, 0, 1, 1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res nav.Result
	decode(t, w, &res)
	assert.False(t, res.Found)
	assert.Empty(t, res.Path)
}

func TestPathFind_OffMapCoordinates(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/path", token, pathReq(1, 0, 0, 99, 99))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathFind_UnknownMap(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/path", token, pathReq(42, 0, 0, 1, 0))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPathFind_UnknownHeuristic(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	body := pathReq(1, 0, 0, 3, 0)
	body["heuristic"] = "teleport"
	w := s.do(t, http.MethodPost, "/api/path", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathFind_WritesAudit(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/path", token, pathReq(1, 0, 0, 2, 0))
	require.Equal(t, http.StatusOK, w.Code)

	// audit rows are written in batches on a 2s ticker
	require.Eventually(t, func() bool {
		var n int64
		s.db.Model(&model.PathAudit{}).Count(&n)
		return n == 1
	}, 5*time.Second, 100*time.Millisecond)

	var row model.PathAudit
	require.NoError(t, s.db.First(&row).Error)
	assert.Equal(t, testClientID, row.ClientID)
	assert.Equal(t, 1, row.MapID)
	assert.Equal(t, 3, row.PathLen)
	assert.NotEmpty(t, row.TraceID)
}
