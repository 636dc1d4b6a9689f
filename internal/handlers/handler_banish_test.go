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

func TestBanishAccountFirstOffense(t *testing.T) {
	var setBanishmentQuery string
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = "hash"
				*dest[3].(*int64) = 0
				*dest[4].(*int32) = 0
				*dest[5].(*bool) = false
				*dest[6].(*int64) = 0
				*dest[7].(*int32) = 0 // no prior banishments
				return nil
			}
		},
		execErr: func(query string) error {
			setBanishmentQuery = query
			return nil
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(7)
	w.WriteInt64(0)
	w.WriteBool(false)
	q := newTestQuery(t, protocol.OpBanishAccount, 0, w.Bytes())

	require.NoError(t, BanishAccount(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
	require.Contains(t, setBanishmentQuery, "banishments = banishments + 1")
}

func TestBanishAccountEscalatesOnSixthPriorBanishment(t *testing.T) {
	var setBanishmentQuery string
	fe := &fakeExecer{
		rowScan: func(query string, args ...any) func(dest ...any) error {
			return func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*string) = "alice"
				*dest[2].(*string) = "hash"
				*dest[3].(*int64) = 0
				*dest[4].(*int32) = 0
				*dest[5].(*bool) = false
				*dest[6].(*int64) = 0
				*dest[7].(*int32) = 6 // more than five prior banishments
				return nil
			}
		},
		execErr: func(query string) error {
			setBanishmentQuery = query
			return nil
		},
	}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(7)
	w.WriteInt64(7 * 86400) // caller-requested 7 days: doubled to 14, then raised to the 30-day floor
	w.WriteBool(false)
	q := newTestQuery(t, protocol.OpBanishAccount, 0, w.Bytes())

	require.NoError(t, BanishAccount(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
	require.Contains(t, setBanishmentQuery, "final_warning = ?")
}

func TestBanishAccountNotFound(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(7)
	w.WriteInt64(0)
	w.WriteBool(false)
	q := newTestQuery(t, protocol.OpBanishAccount, 0, w.Bytes())

	require.NoError(t, BanishAccount(context.Background(), q, db))
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeNotFound, q.Code())
}

func TestBanishIPSuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteUint32BE(0x7f000001)
	w.WriteString("abuse")
	w.WriteInt64(0)
	q := newTestQuery(t, protocol.OpBanishIP, 0, w.Bytes())

	require.NoError(t, BanishIP(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestSetNamelockSuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(42)
	w.WriteString("offensive name")
	q := newTestQuery(t, protocol.OpSetNamelock, 0, w.Bytes())

	require.NoError(t, SetNamelock(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}

func TestSetNotationIncrementsWarnings(t *testing.T) {
	fe := &fakeExecer{}
	beginner := &fakeBeginner{tx: &fakeTx{warnings: 2}}
	db := dbops.NewBase(fe, beginner, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(7)
	q := newTestQuery(t, protocol.OpSetNotation, 0, w.Bytes())

	require.NoError(t, SetNotation(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())

	r := responseReader(q)
	require.Equal(t, uint32(3), r.ReadUint32())
	require.False(t, r.Overflow())
}

func TestReportStatementSuccess(t *testing.T) {
	fe := &fakeExecer{}
	db := dbops.NewBase(fe, fe, "sqlite3")

	w := frame.NewWriter(make([]byte, 256))
	w.WriteInt64(1)
	w.WriteInt64(2)
	w.WriteString("gg ez")
	w.WriteString("spam")
	q := newTestQuery(t, protocol.OpReportStatement, 0, w.Bytes())

	require.NoError(t, ReportStatement(context.Background(), q, db))
	require.Equal(t, queryobj.StatusOk, q.Status())
}
