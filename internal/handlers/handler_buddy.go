package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// AddBuddy inserts a buddy relation. Request: accountID int64, buddyID
// int64, buddyName string. CodeAlreadyExists if the pair is already
// buddied.
func AddBuddy(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	buddyID := r.ReadInt64()
	buddyName := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, created := db.AddBuddy(ctx, accountID, buddyID, buddyName)
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

// RemoveBuddy deletes a buddy relation. Request: accountID int64, buddyID
// int64.
func RemoveBuddy(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	buddyID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.RemoveBuddy(ctx, accountID, buddyID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}
