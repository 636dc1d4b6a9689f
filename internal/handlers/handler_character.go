package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/model"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// CreateCharacter registers a new character on a world for an account.
// Request: accountID int64, worldID int32, name string, sex uint8, rights
// []byte (length-prefixed). Response: empty; CodeNameTaken if the name is
// already used on that world.
func CreateCharacter(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	accountID := r.ReadInt64()
	worldID := int32(r.ReadUint32())
	name := r.ReadString()
	sex := r.ReadUint8()
	rightsLen := r.ReadUint16()
	rights := r.ReadBytes(int(rightsLen))
	if !checkOverflow(q, r) {
		return nil
	}

	ch := model.Character{
		AccountID: accountID,
		WorldID:   worldID,
		Name:      name,
		Sex:       sex,
		Rights:    rights,
	}
	ok, created := db.CreateCharacter(ctx, ch)
	if !ok {
		return nil
	}
	if !created {
		fail(q, protocol.CodeNameTaken)
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// GetCharacterProfile returns the full character record by name within a
// world. Request: worldID int32, name string.
func GetCharacterProfile(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	worldID := int32(r.ReadUint32())
	name := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, ch := db.GetCharacterByName(ctx, worldID, name)
	if !ok {
		return nil
	}
	if !found {
		fail(q, protocol.CodeNotFound)
		return nil
	}

	w := writer(q)
	writeCharacter(w, ch)
	finishOK(q, w)
	return nil
}

// LoadPlayers returns every non-deleted character an account owns on a
// world. Request: worldID int32, accountID int64. Response: uint16 count
// followed by that many character records.
func LoadPlayers(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	worldID := int32(r.ReadUint32())
	accountID := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, chars := db.LoadPlayers(ctx, worldID, accountID)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(chars)))
	for _, ch := range chars {
		writeCharacter(w, ch)
	}
	finishOK(q, w)
	return nil
}

// CreatePlayerList replaces the online-players snapshot for a world, used
// by the game server to publish who is online so the web role never has
// to query a game server directly (spec.md's player_list table). Request:
// worldID int32, count uint16, then that many (characterID int64, name
// string, level int32, vocation int32) entries.
func CreatePlayerList(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	worldID := int32(r.ReadUint32())
	count := r.ReadUint16()
	entries := make([]model.PlayerListEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		var e model.PlayerListEntry
		e.CharacterID = r.ReadInt64()
		e.Name = r.ReadString()
		e.Level = int32(r.ReadUint32())
		e.Vocation = int32(r.ReadUint32())
		entries = append(entries, e)
	}
	if !checkOverflow(q, r) {
		return nil
	}

	var ok bool
	txOK := db.WithTx(ctx, func(tx dbops.Execer) error {
		if !db.CreatePlayerList(ctx, tx, worldID, entries) {
			ok = false
			return errTx
		}
		ok = true
		return nil
	})
	if !txOK || !ok {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}

// LogCharacterDeath records a death event. Request: characterID int64,
// killerName string, at int64 (unix seconds).
func LogCharacterDeath(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	characterID := r.ReadInt64()
	killerName := r.ReadString()
	at := r.ReadInt64()
	if !checkOverflow(q, r) {
		return nil
	}

	if !db.LogCharacterDeath(ctx, characterID, killerName, at) {
		return nil
	}

	w := writer(q)
	finishOK(q, w)
	return nil
}
