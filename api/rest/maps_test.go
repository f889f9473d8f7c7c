package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tilepathd/model"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/resource"
)

func TestMaps_List(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/maps", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Maps []nav.MapInfo `json:"maps"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Maps, 1)
	assert.Equal(t, 1, resp.Maps[0].ID)
	assert.Equal(t, 4, resp.Maps[0].Width)
}

func TestMaps_Get(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/maps/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc resource.TileMap
	decode(t, w, &doc)
	assert.Equal(t, 1, doc.ID)
	assert.Len(t, doc.Collision, 16)

	w = s.do(t, http.MethodGet, "/api/maps/42", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaps_Update(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	doc := testMap(2)
	doc.Name = "uploaded"

	// auth required
	w := s.do(t, http.MethodPut, "/api/maps/2", "", doc)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/maps/2", token, doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// map is queryable right away
	got, err := s.nav.MapByID(2)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", got.Name)

	// record persisted with the uploader's identity
	var rec model.MapRecord
	require.NoError(t, s.db.First(&rec, "id = ?", 2).Error)
	assert.Equal(t, "uploaded", rec.Name)
	assert.Equal(t, 1, rec.Revision)
	assert.Equal(t, testClientID, rec.UpdatedBy)

	// second upload bumps the revision
	w = s.do(t, http.MethodPut, "/api/maps/2", token, doc)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.db.First(&rec, "id = ?", 2).Error)
	assert.Equal(t, 2, rec.Revision)
}

func TestMaps_Update_URLWinsOverBody(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	doc := testMap(7) // body says 7, URL says 3
	w := s.do(t, http.MethodPut, "/api/maps/3", token, doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := s.nav.MapByID(3)
	assert.NoError(t, err)
	_, err = s.nav.MapByID(7)
	assert.Error(t, err)
}

func TestMaps_Update_RejectsInvalidDocument(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	doc := testMap(2)
	doc.Collision = doc.Collision[:5]
	w := s.do(t, http.MethodPut, "/api/maps/2", token, doc)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
