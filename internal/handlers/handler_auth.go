package handlers

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// LoginGame validates a game client's per-character login: the account
// must exist, own the named character on the requesting world, not be
// banished, and the supplied password must match. Request: accountID
// int64, charName string, password string, ip uint32. Response: the full
// character record.
func LoginGame(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	charName := r.ReadString()
	password := r.ReadString()
	ip := r.ReadUint32BE()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, acc := db.GetAccountByID(ctx, accountID)
	if !ok {
		return nil // Pending: retry
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		db.InsertLoginAttempt(ctx, accountID, ip, false)
		fail(q, protocol.CodeInvalidCredentials)
		return nil
	}
	if acc.BanishedUntil != 0 && acc.BanishedUntil > dbops.Now().Unix() {
		fail(q, protocol.CodeBanished)
		return nil
	}

	ok, found, ch := db.GetCharacterByName(ctx, q.WorldID, charName)
	if !ok {
		return nil
	}
	if !found || ch.AccountID != accountID {
		fail(q, protocol.CodeWorldMismatch)
		return nil
	}

	if !db.InsertLoginAttempt(ctx, accountID, ip, true) {
		return nil
	}
	if !db.UpdateLastServer(ctx, accountID, q.WorldID) {
		return nil
	}
	if !db.SetCharacterOnline(ctx, ch.ID, true) {
		return nil
	}

	w := writer(q)
	writeCharacter(w, ch)
	finishOK(q, w)
	return nil
}

// LoginAccount is the Login-role bootstrap credential check issued by the
// login server on its own behalf (distinct from the connection-level
// Login frame, which only selects a role/world). Request: login string,
// password string, ip uint32. Response: the account summary.
func LoginAccount(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	login := r.ReadString()
	password := r.ReadString()
	ip := r.ReadUint32BE()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, acc := db.GetAccountByLogin(ctx, login)
	if !ok {
		return nil
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		db.InsertLoginAttempt(ctx, acc.ID, ip, false)
		fail(q, protocol.CodeInvalidCredentials)
		return nil
	}
	if acc.BanishedUntil != 0 && acc.BanishedUntil > dbops.Now().Unix() {
		fail(q, protocol.CodeBanished)
		return nil
	}
	if !db.InsertLoginAttempt(ctx, acc.ID, ip, true) {
		return nil
	}

	w := writer(q)
	writeAccount(w, acc)
	finishOK(q, w)
	return nil
}
