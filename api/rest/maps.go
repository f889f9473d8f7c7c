package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	mw "github.com/kasuganosora/tilepathd/middleware"
	"github.com/kasuganosora/tilepathd/model"
	"github.com/kasuganosora/tilepathd/nav"
	"github.com/kasuganosora/tilepathd/resource"
)

// MapsHandler serves map documents and accepts map updates.
type MapsHandler struct {
	db     *gorm.DB
	nav    *nav.Navigator
	logger *zap.Logger
}

// NewMapsHandler creates a MapsHandler.
func NewMapsHandler(db *gorm.DB, n *nav.Navigator, logger *zap.Logger) *MapsHandler {
	return &MapsHandler{db: db, nav: n, logger: logger}
}

// List handles GET /api/maps.
func (h *MapsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"maps": h.nav.Maps()})
}

// Get handles GET /api/maps/:id, returning the full map document.
func (h *MapsHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad map id"})
		return
	}
	doc, err := h.nav.MapByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "map not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update handles PUT /api/maps/:id. The body is a full tile map document;
// the URL's ID wins over the body's. The record is persisted with a bumped
// revision and every instance is notified to recompile.
func (h *MapsHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad map id"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	doc, err := resource.ParseMap(raw)
	if err == nil && doc.ID != id {
		doc.ID = id
		// re-validate with the authoritative ID, then re-encode so the
		// stored document matches what the navigator compiles
		err = doc.Validate()
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID := mw.GetClientID(c)
	newRev := 1
	rec := model.MapRecord{}
	dbErr := h.db.First(&rec, "id = ?", id).Error
	switch {
	case errors.Is(dbErr, gorm.ErrRecordNotFound):
		rec = model.MapRecord{
			ID:        id,
			Name:      doc.Name,
			Width:     doc.Width,
			Height:    doc.Height,
			Document:  datatypes.JSON(mustJSON(doc)),
			Revision:  newRev,
			UpdatedBy: clientID,
		}
		dbErr = h.db.Create(&rec).Error
	case dbErr == nil:
		newRev = rec.Revision + 1
		dbErr = h.db.Model(&rec).Updates(map[string]interface{}{
			"name":       doc.Name,
			"width":      doc.Width,
			"height":     doc.Height,
			"document":   datatypes.JSON(mustJSON(doc)),
			"revision":   newRev,
			"updated_by": clientID,
		}).Error
	}
	if dbErr != nil {
		h.logger.Error("map save failed", zap.Int("map_id", id), zap.Error(dbErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	if err := h.nav.RegisterMap(doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compile error"})
		return
	}
	if err := h.nav.NotifyMapUpdated(c.Request.Context(), id); err != nil {
		h.logger.Warn("map update publish failed", zap.Int("map_id", id), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "revision": newRev})
}

// DBMapSource adapts the maps table into a nav.MapSource so update
// notifications reload the stored document.
func DBMapSource(db *gorm.DB) nav.MapSource {
	return func(ctx context.Context, mapID int) (*resource.TileMap, error) {
		var rec model.MapRecord
		err := db.WithContext(ctx).First(&rec, "id = ?", mapID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return resource.ParseMap(rec.Document)
	}
}

func mustJSON(doc *resource.TileMap) []byte {
	// documents reaching this point already round-tripped through ParseMap
	raw, _ := json.Marshal(doc)
	return raw
}
