// Package plugins collects opcode handlers into self-registering modules,
// so the dispatch table is assembled from independent per-category files
// instead of one central switch statement.
package plugins

import (
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/wire"
)

// Module groups a related set of opcode handlers, one per handler category
// (source population, reporting, RTC, and so on).
type Module interface {
	Name() string
	Handlers() map[wire.Opcode]dispatch.HandlerFunc
}
