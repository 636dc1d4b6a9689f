// Package handlers implements the per-opcode business logic invoked by
// the worker pool, grounded on la2go/internal/gameserver's one-file-per-
// concern handler split (handler_clan.go, handler_friend.go, ...) and
// la2go/internal/login/handler.go's parse → operate → reply shape.
package handlers

import (
	"errors"
	"log/slog"

	"github.com/tibia/querymanager/internal/frame"
	"github.com/tibia/querymanager/internal/model"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// errTx is a sentinel a db.WithTx closure returns to abort the
// transaction after an inner operation already reported failure through
// its own (ok bool) return rather than an error value.
var errTx = errors.New("handlers: transaction step failed")

// reader opens a frame.Reader over the request bytes a connection
// goroutine wrote into q.Buf before handoff.
func reader(q *queryobj.Query) *frame.Reader {
	return frame.NewReader(q.Buf[:q.ReqLen])
}

// writer opens a frame.Writer over the full buffer — once the request has
// been entirely parsed, the response is free to overwrite it in place
// (spec.md §3: the same byte buffer serves both, "reused for both; never
// concurrently").
func writer(q *queryobj.Query) *frame.Writer {
	return frame.NewWriter(q.Buf)
}

// finishOK commits w's bytes as the response and marks the query Ok.
// Overflowing the shared buffer while writing a response is a sizing bug
// in QueryBufferSize, not a transient condition a retry fixes, so it
// panics rather than silently truncating — matching spec.md §4.5's "panics
// are reserved for invariants the code itself must uphold."
func finishOK(q *queryobj.Query, w *frame.Writer) {
	if w.Overflow() {
		panic("handlers: response overflowed QueryBufferSize")
	}
	q.RespLen = w.Len()
	q.SetStatus(queryobj.StatusOk)
}

// badRequest marks a query permanently failed because its request frame
// did not parse — no retry would help a handler interpret the same bytes
// differently, so this bypasses Pending.
func badRequest(q *queryobj.Query) {
	slog.Warn("malformed request", "opcode", q.Opcode.Name())
	q.SetStatus(queryobj.StatusFailed)
}

// fail marks a query Error(code), the handler's "this isn't what you
// asked for, but nothing is broken" outcome (spec.md §4.7's (ok=true,
// found=false) results route here).
func fail(q *queryobj.Query, code protocol.Code) {
	q.SetError(code)
}

func writeWorld(w *frame.Writer, wc model.WorldConfig) {
	w.WriteUint32(uint32(wc.ID))
	w.WriteString(wc.Name)
	w.WriteString(wc.Host)
	w.WriteUint16(wc.Port)
}

func writeAccount(w *frame.Writer, acc model.Account) {
	w.WriteInt64(acc.ID)
	w.WriteString(acc.Login)
	w.WriteInt64(acc.PremiumUntil)
	w.WriteUint32(uint32(acc.Warnings))
	w.WriteBool(acc.FinalWarning)
	w.WriteInt64(acc.BanishedUntil)
}

func writeCharacter(w *frame.Writer, ch model.Character) {
	w.WriteInt64(ch.ID)
	w.WriteInt64(ch.AccountID)
	w.WriteUint32(uint32(ch.WorldID))
	w.WriteString(ch.Name)
	w.WriteUint8(ch.Sex)
	w.WriteUint16(uint16(len(ch.Rights)))
	w.WriteBytes(ch.Rights)
	w.WriteBool(ch.Online)
	w.WriteBool(ch.Deleted)
}

func writePlayerListEntry(w *frame.Writer, e model.PlayerListEntry) {
	w.WriteInt64(e.CharacterID)
	w.WriteString(e.Name)
	w.WriteUint32(uint32(e.Level))
	w.WriteUint32(uint32(e.Vocation))
}

func writeKillEntry(w *frame.Writer, e model.KillEntry) {
	w.WriteInt64(e.CharacterID)
	w.WriteUint32(uint32(e.CreatureRaceID))
	w.WriteInt64(e.Count)
}

func writeHouseOwner(w *frame.Writer, o model.HouseOwner) {
	w.WriteUint32(uint32(o.HouseID))
	w.WriteInt64(o.AccountID)
	w.WriteInt64(o.CharacterID)
	w.WriteInt64(o.PaidUntil)
}

func writeAuction(w *frame.Writer, a model.Auction) {
	w.WriteUint32(uint32(a.HouseID))
	w.WriteInt64(a.BidderID)
	w.WriteInt64(a.Bid)
	w.WriteInt64(a.EndsAt)
}

// checkOverflow marks q Failed and returns false if r hit the end of the
// request buffer while parsing — callers return immediately in that case.
func checkOverflow(q *queryobj.Query, r *frame.Reader) bool {
	if r.Overflow() {
		badRequest(q)
		return false
	}
	return true
}
