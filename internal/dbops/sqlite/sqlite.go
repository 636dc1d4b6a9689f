// Package sqlite wires the embedded file-based backend (mattn/go-sqlite3)
// into the dbops abstraction, for the "embedded file-based engine"
// deployment mode of spec.md §4.4.
package sqlite

import (
	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/dbops/sqladapter"
	"github.com/tibia/querymanager/internal/session"
)

// New builds the dbops abstraction over an already-open SQLite session.
func New(s *session.SQLiteSession) *dbops.Base {
	db := s.DB()
	adapter := sqladapter.New(db)
	beginner := &sqladapter.Beginner{DB: db}
	return dbops.NewBase(adapter, beginner, "sqlite3")
}
