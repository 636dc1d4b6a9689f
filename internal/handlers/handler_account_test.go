package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/frame"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

func TestCheckAccountPasswordSuccess(t *testing.T) {
	hash := mustHash(t, "secret")
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = hash
				*dest[3].(*int64) = 0
				*dest[4].(*int32) = 0
				*dest[5].(*bool) = false
				*dest[6].(*int64) = 0
				*dest[7].(*int32) = 0
				return nil
			}
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("alice")
	w.WriteString("secret")
	q := newTestQuery(t, protocol.OpCheckAccountPassword, 0, w.Bytes())

	require.NoError(t, CheckAccountPassword(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestCheckAccountPasswordWrong(t *testing.T) {
	hash := mustHash(t, "secret")
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = hash
				*dest[3].(*int64) = 0
				*dest[4].(*int32) = 0
				*dest[5].(*bool) = false
				*dest[6].(*int64) = 0
				*dest[7].(*int32) = 0
				return nil
			}
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("alice")
	w.WriteString("wrong")
	q := newTestQuery(t, protocol.OpCheckAccountPassword, 0, w.Bytes())

	require.NoError(t, CheckAccountPassword(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeInvalidCredentials, q.Code())
}

func TestGetAccountSummaryFound(t *testing.T) {
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = "hash"
				*dest[3].(*int64) = 1000
				*dest[4].(*int32) = 2
				*dest[5].(*bool) = false
				*dest[6].(*int64) = 0
				*dest[7].(*int32) = 0
				return nil
			}
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("alice")
	q := newTestQuery(t, protocol.OpGetAccountSummary, 0, w.Bytes())

	require.NoError(t, GetAccountSummary(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())

	r := responseReader(q)
	require.Equal(t, int64(7), r.ReadInt64())
	require.Equal(t, "alice", r.ReadString())
}

func TestGetAccountSummaryNotFound(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("nobody")
	q := newTestQuery(t, protocol.OpGetAccountSummary, 0, w.Bytes())

	require.NoError(t, GetAccountSummary(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeNotFound, q.Code())
}

func TestCreateAccountNewLogin(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("bob")
	w.WriteString("hunter2")
	q := newTestQuery(t, protocol.OpCreateAccount, 0, w.Bytes())

	require.NoError(t, CreateAccount(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestCreateAccountDuplicateLogin(t *testing.T) {
	fe := &fakeExecer{execErr: func(query string) error {
		return &fakeDriverErr{"UNIQUE constraint failed: accounts.login"}
	}}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteString("bob")
	w.WriteString("hunter2")
	q := newTestQuery(t, protocol.OpCreateAccount, 0, w.Bytes())

	require.NoError(t, CreateAccount(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeAlreadyExists, q.Code())
}

type fakeDriverErr struct{ msg string }

func (e *fakeDriverErr) Error() string { return e.msg }
