package handlers

import (
	"context"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// LoadWorldConfig loads a world's connection details by name. Request:
// name string.
func LoadWorldConfig(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	r := reader(q)
	name := r.ReadString()
	if !checkOverflow(q, r) {
		return nil
	}

	ok, found, world := db.LoadWorldConfig(ctx, name)
	if !ok {
		return nil
	}
	if !found {
		fail(q, protocol.CodeNotFound)
		return nil
	}

	w := writer(q)
	writeWorld(w, world)
	finishOK(q, w)
	return nil
}

// GetWorlds lists every configured world, the list a login server or the
// website presents for world selection.
func GetWorlds(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
	ok, worlds := db.GetWorlds(ctx)
	if !ok {
		return nil
	}

	w := writer(q)
	w.WriteUint16(uint16(len(worlds)))
	for _, wc := range worlds {
		writeWorld(w, wc)
	}
	finishOK(q, w)
	return nil
}
