package handlers

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// CheckAccountPassword is the Web-role credential check used by the
// website's login form; it never needs the ip/audit bookkeeping
// LoginAccount performs on the login server's behalf. Request: login
// string, password string. Response: empty body, status carries the
// result.
func CheckAccountPassword(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	login := r.ReadString()
	password := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, acc := db.GetAccountByLogin(ctx, login)
	if !ok {
		return nil
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		fail(q, protocol.CodeInvalidCredentials)
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// CreateAccount registers a new website account. Request: login string,
// password string (plaintext, hashed here before storage). Response:
// empty body; CodeAlreadyExists if the login is taken.
func CreateAccount(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	login := r.ReadString()
	password := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		badRequest(q)
		return nil
	}

	ok, created := db.CreateAccount(ctx, login, string(hash))
	if !ok {
		return nil
	}
	if !created {
		fail(q, protocol.CodeAlreadyExists)
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// GetAccountSummary returns the billing/standing fields a website account
// page displays. Request: login string. Response: the account record
// (password hash never serialized to the wire).
func GetAccountSummary(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	login := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, acc := db.GetAccountByLogin(ctx, login)
	if !ok {
		return nil
	}
	if !found {
		fail(q, protocol.CodeNotFound)
		return nil
	}

	w := writer(q)
	writeAccount(w, acc)
	finishOK(q, w)
	return nil
}
