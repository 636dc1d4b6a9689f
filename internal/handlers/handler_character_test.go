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

func TestCreateCharacterSuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteUint32(2)
	w.WriteString("Knightly")
	w.WriteUint8(1)
	w.WriteUint16(0)
	q := newTestQuery(t, protocol.OpCreateCharacter, 2, w.Bytes())

	require.NoError(t, CreateCharacter(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestCreateCharacterNameTaken(t *testing.T) {
	fe := &fakeExecer{execErr: func(query string) error {
		return &fakeDriverErr{"UNIQUE constraint failed: characters.world_id, characters.name"}
	}}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteUint32(2)
	w.WriteString("Knightly")
	w.WriteUint8(1)
	w.WriteUint16(0)
	q := newTestQuery(t, protocol.OpCreateCharacter, 2, w.Bytes())

	require.NoError(t, CreateCharacter(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeNameTaken, q.Code())
}

func TestGetCharacterProfileFound(t *testing.T) {
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 9
				*dest[1].(*int64) = 1
				*dest[2].(*int32) = 2
				*dest[3].(*string) = "Knightly"
				*dest[4].(*uint8) = 1
				*dest[5].(*[]byte) = nil
				*dest[6].(*bool) = true
				*dest[7].(*bool) = false
				return nil
			}
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteUint32(2)
	w.WriteString("Knightly")
	q := newTestQuery(t, protocol.OpGetCharacterProfile, 0, w.Bytes())

	require.NoError(t, GetCharacterProfile(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())

	r := responseReader(q)
	require.Equal(t, int64(9), r.ReadInt64())
}

func TestGetCharacterProfileNotFound(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteUint32(2)
	w.WriteString("Nobody")
	q := newTestQuery(t, protocol.OpGetCharacterProfile, 0, w.Bytes())

	require.NoError(t, GetCharacterProfile(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeNotFound, q.Code())
}

func TestLoadPlayersReturnsCharacters(t *testing.T) {
	fe := &fakeQueryExecer{
		queryRows: [][]any{
			{int64(1), int64(5), int32(2), "Alpha", uint8(0), []byte(nil), false, false},
			{int64(2), int64(5), int32(2), "Beta", uint8(1), []byte(nil), true, false},
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteUint32(2)
	w.WriteInt64(5)
	q := newTestQuery(t, protocol.OpLoadPlayers, 2, w.Bytes())

	require.NoError(t, LoadPlayers(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())

	r := responseReader(q)
	require.Equal(t, uint16(2), r.ReadUint16())
}

func TestCreatePlayerListReplacesSnapshot(t *testing.T) {
	fe := &fakeExecer{}
	beginner := &fakeBeginner{tx: &fakeTx{}}
	db := dbops.NewBase(fe, beginner, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteUint32(2)
	w.WriteUint16(1)
	w.WriteInt64(9)
	w.WriteString("Knightly")
	w.WriteUint32(10)
	w.WriteUint32(1)
	q := newTestQuery(t, protocol.OpCreatePlayerList, 2, w.Bytes())

	require.NoError(t, CreatePlayerList(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
	require.True(t, beginner.tx.committed)
}

func TestLogCharacterDeathSuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(9)
	w.WriteString("a dragon")
	w.WriteInt64(1000)
	q := newTestQuery(t, protocol.OpLogCharacterDeath, 0, w.Bytes())

	require.NoError(t, LogCharacterDeath(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}
