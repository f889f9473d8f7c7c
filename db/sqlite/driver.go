package sqlite

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by a SQLite file. WAL mode keeps map
// uploads from blocking concurrent path-audit writes; the busy timeout
// covers the remaining writer contention.
func Open(path string) (*gorm.DB, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	return open(dsn)
}

var memSeq atomic.Int64

// OpenMemory creates a fresh named in-memory database. cache=shared keeps
// GORM's pooled connections on the same database; the unique name keeps
// separate Opens (and therefore tests) isolated from each other.
func OpenMemory() (*gorm.DB, error) {
	return open(fmt.Sprintf("file:mem%d?mode=memory&cache=shared", memSeq.Add(1)))
}

func open(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
