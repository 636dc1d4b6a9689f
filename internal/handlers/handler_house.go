package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/model"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// InsertHouses bulk-loads the static house table from world config.
// Request: count uint16, then that many (id int32, name string, town
// string, price int64) entries.
func InsertHouses(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	count := r.ReadUint16()
	houses := make([]model.House, 0, count)
	for i := uint16(0); i < count; i++ {
		var h model.House
		h.ID = int32(r.ReadUint32())
		h.Name = r.ReadString()
		h.Town = r.ReadString()
		h.Price = r.ReadInt64()
		houses = append(houses, h)
	}
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.InsertHouses(ctx, houses) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// InsertHouseOwner assigns an unowned house. Request: houseID int32,
// accountID int64, characterID int64, paidUntil int64.
func InsertHouseOwner(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	var o model.HouseOwner
	o.HouseID = int32(r.ReadUint32())
	o.AccountID = r.ReadInt64()
	o.CharacterID = r.ReadInt64()
	o.PaidUntil = r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.InsertHouseOwner(ctx, o) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// UpdateHouseOwner updates an existing ownership row, e.g. after a rent
// payment extends paidUntil. Same wire shape as InsertHouseOwner.
func UpdateHouseOwner(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	var o model.HouseOwner
	o.HouseID = int32(r.ReadUint32())
	o.AccountID = r.ReadInt64()
	o.CharacterID = r.ReadInt64()
	o.PaidUntil = r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.UpdateHouseOwner(ctx, o) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// DeleteHouseOwner clears ownership, e.g. on voluntary eviction. Request:
// houseID int32.
func DeleteHouseOwner(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	houseID := int32(r.ReadUint32())
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.DeleteHouseOwner(ctx, houseID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// GetHouseOwners lists every current house ownership row.
func GetHouseOwners(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	ok, owners := db.GetHouseOwners(ctx)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(owners)))
	for _, o := range owners {
		writeHouseOwner(w, o)
	}
	finishOK(q, w)
	return nil
}

// GetAuctions lists every in-progress house auction.
func GetAuctions(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	ok, auctions := db.GetAuctions(ctx)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(auctions)))
	for _, a := range auctions {
		writeAuction(w, a)
	}
	finishOK(q, w)
	return nil
}

// StartAuction opens a new auction on a vacated house. Request: houseID
// int32, minBid int64, endsAt int64.
func StartAuction(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	houseID := int32(r.ReadUint32())
	minBid := r.ReadInt64()
	endsAt := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.StartAuction(ctx, houseID, minBid, endsAt) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// FinishAuctions closes every auction whose end time has passed, awarding
// ownership to the highest bidder. Request: now int64. Response: uint16
// count followed by the closed auction records.
func FinishAuctions(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	now := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	var finished []model.Auction
	txOK := db.WithTx(ctx, func(tx dbops.Execer) error {
		var ok bool
		ok, finished = db.FinishAuctions(ctx, tx, now)
		if !ok {
			return errTx
		}
		return nil
	})
	if !txOK {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(finished)))
	for _, a := range finished {
		writeAuction(w, a)
	}
	finishOK(q, w)
	return nil
}

// TransferHouses moves every house an account owns to another account
// (e.g. on a guild leadership transfer). Request: fromAccountID int64,
// toAccountID int64.
func TransferHouses(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	fromAccountID := r.ReadInt64()
	toAccountID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.TransferHouses(ctx, fromAccountID, toAccountID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// CancelHouseTransfer is not implemented: spec.md §9 leaves open whether
// a pending transfer is tracked as a distinct flagged state or simply
// never persisted until a separate confirmation opcode commits it, and no
// table in this schema records an in-flight transfer to cancel.
func CancelHouseTransfer(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	fail(q, protocol.CodeNotImplemented)
	return nil
}

// EvictFreeAccounts clears ownership for houses whose paid_until has
// lapsed. Request: now int64.
func EvictFreeAccounts(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	now := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, _ := db.EvictFreeAccounts(ctx, now)
	if !ok {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// EvictExGuildLeaders clears house ownership for accounts no longer
// flagged as guild leaders. Request: count uint16, then that many int64
// account ids.
func EvictExGuildLeaders(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	count := r.ReadUint16()
	ids := make([]int64, 0, count)
	for i := uint16(0); i < count; i++ {
		ids = append(ids, r.ReadInt64())
	}
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.EvictExGuildLeaders(ctx, ids) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// ExcludeFromAuctions flags an account ineligible to bid. Request:
// accountID int64.
func ExcludeFromAuctions(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.ExcludeFromAuctions(ctx, accountID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}
