package model

import (
	"time"

	"gorm.io/datatypes"
)

// MapRecord persists an uploaded tile map document. Document is the raw
// TileMap JSON as accepted by resource.ParseMap; Width/Height/Name are
// denormalized for listing without decoding the document.
type MapRecord struct {
	ID        int            `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	Width     int            `gorm:"not null" json:"width"`
	Height    int            `gorm:"not null" json:"height"`
	Document  datatypes.JSON `json:"document"`
	Revision  int            `gorm:"default:1" json:"revision"`
	UpdatedBy string         `gorm:"size:64" json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MapRecord) TableName() string { return "maps" }
