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

func TestAddBuddyNew(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteInt64(2)
	w.WriteString("Pal")
	q := newTestQuery(t, protocol.OpAddBuddy, 0, w.Bytes())

	require.NoError(t, AddBuddy(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestAddBuddyAlreadyExists(t *testing.T) {
	fe := &fakeExecer{execErr: func(query string) error {
		return &fakeDriverErr{"UNIQUE constraint failed: buddies.account_id, buddies.buddy_id"}
	}}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteInt64(2)
	w.WriteString("Pal")
	q := newTestQuery(t, protocol.OpAddBuddy, 0, w.Bytes())

	require.NoError(t, AddBuddy(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeAlreadyExists, q.Code())
}

func TestRemoveBuddySuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteInt64(2)
	q := newTestQuery(t, protocol.OpRemoveBuddy, 0, w.Bytes())

	require.NoError(t, RemoveBuddy(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}
