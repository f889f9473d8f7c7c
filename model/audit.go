package model

import (
	"time"

	"gorm.io/datatypes"
)

// PathAudit records one path request and its outcome.
type PathAudit struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_path_audit_trace;size:36;not null" json:"trace_id"`
	ClientID   string         `gorm:"index:idx_path_audit_client;size:64" json:"client_id"`
	MapID      int            `gorm:"index:idx_path_audit_map" json:"map_id"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Heuristic  string         `gorm:"size:16" json:"heuristic"`
	PathLen    int            `json:"path_len"`
	Cost       float64        `json:"cost"`
	Cached     bool           `json:"cached"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_path_audit_created;autoCreateTime:milli" json:"created_at"`
}

func (PathAudit) TableName() string { return "path_audits" }
