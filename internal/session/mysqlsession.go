package session

import (
	_ "github.com/go-sql-driver/mysql"
)

// MySQLSession is a second networked backend variant (alongside
// PGSession), proving the Session/dbops interfaces are genuinely
// driver-agnostic rather than accidentally Postgres-shaped. Grounded on
// mickamy-sql-tap/go.mod and the mevdschee-tqdbproxy manifest.
type MySQLSession struct {
	*sqlSession
}

// NewMySQLSession opens a MySQL connection for dsn
// (e.g. "user:pass@tcp(host:3306)/dbname").
func NewMySQLSession(dsn string) (*MySQLSession, error) {
	s, err := newSQLSession("mysql", dsn, 1<<30)
	if err != nil {
		return nil, err
	}
	return &MySQLSession{sqlSession: s}, nil
}
