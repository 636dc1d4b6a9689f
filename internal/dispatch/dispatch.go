// Package dispatch holds the static opcode → handler table, grounded on
// la2go/internal/login/handler.go's switch-based HandlePacket and
// gameserver/admin/commands's RegisterAll table-registration idiom.
package dispatch

import (
	"fmt"

	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/worker"
)

// Table is a static opcode → handler registry built once at startup. It
// implements worker.Dispatcher.
type Table struct {
	handlers map[protocol.Opcode]worker.Handler
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{handlers: make(map[protocol.Opcode]worker.Handler)}
}

// Register binds op to fn. Registering the same opcode twice is a
// programming error and panics at startup rather than silently
// overwriting, matching commands.RegisterAll's fail-fast registration.
func (t *Table) Register(op protocol.Opcode, fn worker.Handler) {
	if _, exists := t.handlers[op]; exists {
		panic(fmt.Sprintf("dispatch: opcode %s registered twice", op.Name()))
	}
	t.handlers[op] = fn
}

// Handler implements worker.Dispatcher.
func (t *Table) Handler(op protocol.Opcode) (worker.Handler, bool) {
	fn, ok := t.handlers[op]
	return fn, ok
}
