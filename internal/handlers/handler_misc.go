package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/queryobj"
)

// LogoutGame marks a character offline at the end of a game session.
// Request: characterID int64. Thin wrapper over DecrementIsOnline's
// single-character semantics, kept as a distinct opcode because a
// disconnect and an explicit logout are reported at different points in
// the game server's lifecycle even though they have identical effects
// here.
func LogoutGame(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.DecrementIsOnline(ctx, characterID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// DecrementIsOnline marks a single character offline, reported on a
// clean client disconnect. Request: characterID int64.
func DecrementIsOnline(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.DecrementIsOnline(ctx, characterID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// ClearIsOnline zeroes every online flag on a world, reported when a game
// server restarts uncleanly and cannot report individual disconnects.
// Request: worldID int32.
func ClearIsOnline(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	worldID := int32(r.ReadUint32())
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.ClearIsOnline(ctx, worldID) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// EvictDeletedCharacters hard-deletes characters whose deletion grace
// period has elapsed. Request: olderThan int64 (unix seconds cutoff).
func EvictDeletedCharacters(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	olderThan := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, _ := db.EvictDeletedCharacters(ctx, olderThan)
	if !ok {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// LogKilledCreatures upserts a kill counter for a character/creature
// pair. Request: characterID int64, creatureRaceID int32, count int64.
func LogKilledCreatures(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	creatureRaceID := int32(r.ReadUint32())
	count := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.LogKilledCreatures(ctx, characterID, creatureRaceID, count) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// GetKillStatistics returns every kill counter for a character. Request:
// characterID int64.
func GetKillStatistics(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, entries := db.GetKillStatistics(ctx, characterID)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(entries)))
	for _, e := range entries {
		writeKillEntry(w, e)
	}
	finishOK(q, w)
	return nil
}

// GetOnlineCharacters reads back the online-players snapshot
// CreatePlayerList wrote. Request: worldID int32 (0 = every world).
func GetOnlineCharacters(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	worldID := int32(r.ReadUint32())
	if !checkOverflow(q, r) {
		return nil
	}

	ok, entries := db.GetOnlineCharacters(ctx, worldID)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(entries)))
	for _, e := range entries {
		writePlayerListEntry(w, e)
	}
	finishOK(q, w)
	return nil
}
