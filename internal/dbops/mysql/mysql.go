// Package mysql wires the second networked SQL-server backend
// (go-sql-driver/mysql) into the dbops abstraction.
package mysql

import (
	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/dbops/sqladapter"
	"github.com/tibia/querymanager/internal/session"
)

// New builds the dbops abstraction over an already-open MySQL session.
func New(s *session.MySQLSession) *dbops.Base {
	db := s.DB()
	adapter := sqladapter.New(db)
	beginner := &sqladapter.Beginner{DB: db}
	return dbops.NewBase(adapter, beginner, "mysql")
}
