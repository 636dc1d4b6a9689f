package session

import (
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSession is the embedded file-based backend named in spec.md §1 and
// §4.7, grounded on the ha1tch-aulsql/mevdschee-tqdbproxy manifests that
// pair an embedded sqlite3 path with networked SQL backends behind one
// driver-agnostic surface. MaxConcurrency is 1: spec.md §4.4's "1 for a
// file-backed engine that serializes writes".
type SQLiteSession struct {
	*sqlSession
}

// NewSQLiteSession opens (or creates) the sqlite3 database file at path.
func NewSQLiteSession(path string) (*SQLiteSession, error) {
	s, err := newSQLSession("sqlite3", path, 1)
	if err != nil {
		return nil, err
	}
	return &SQLiteSession{sqlSession: s}, nil
}
