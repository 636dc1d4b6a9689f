package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// BanishAccount applies the compound banishment policy (spec.md §4.6):
// duration/finalWarning are computed from the account's prior banishment
// count (not its GM-notation count, a separate signal — see
// dbops.SetBanishment), then persisted. A single-table update needs no
// transaction scope. Request: accountID int64, requestedDuration int64
// (seconds, 0 = default), elevateFinalWarning bool.
func BanishAccount(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	requestedDuration := r.ReadInt64()
	elevate := r.ReadBool()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, acc := db.GetAccountByID(ctx, accountID)
	if !ok {
		return nil
	}
	if !found {
		fail(q, protocol.CodeNotFound)
		return nil
	}

	duration, finalWarning := dbops.BanishmentOutcome(requestedDuration, int(acc.Banishments), elevate, acc.FinalWarning)
	until := int64(0)
	if duration != 0 {
		until = dbops.Now().Unix() + duration
	}
	if !db.SetBanishment(ctx, db, accountID, until, finalWarning) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// BanishIP bans an IP address outright, independent of any account.
// Request: ip uint32 (big-endian), reason string, expiresAt int64 (unix
// seconds, 0 = permanent).
func BanishIP(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	ip := r.ReadUint32BE()
	reason := r.ReadString()
	expiresAt := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.BanishIP(ctx, ip, reason, expiresAt) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// SetNamelock force-flags a character for a mandatory rename on next
// login. Request: characterID int64, reason string.
func SetNamelock(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	reason := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.SetNamelock(ctx, characterID, reason) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// SetNotation records a GM warning against an account without itself
// triggering a banishment decision (BanishAccount's compound policy counts
// banishments, not notations). Request: accountID int64. Response:
// the account's new warning total.
func SetNotation(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	var warnings int32
	txOK := db.WithTx(ctx, func(tx dbops.Execer) error {
		var addOK bool
		addOK, warnings = db.AddNotation(ctx, tx, accountID)
		if !addOK {
			return errTx
		}
		return nil
	})
	if !txOK {
		return nil
	}

	w := writer(q)
	w.WriteUint32(uint32(warnings))
	finishOK(q, w)
	return nil
}

// ReportStatement logs a chat statement flagged by another player.
// Request: reporterCharacterID int64, reportedCharacterID int64,
// statement string, reason string.
func ReportStatement(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	reporterCharacterID := r.ReadInt64()
	reportedCharacterID := r.ReadInt64()
	statement := r.ReadString()
	reason := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.ReportStatement(ctx, reporterCharacterID, reportedCharacterID, statement, reason) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}
