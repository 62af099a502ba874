package plugins

import (
	"fmt"
	"sync"

	"github.com/ntpcore/cmdmon/internal/dispatch"
)

var (
	mu       sync.RWMutex
	registry = map[string]Module{}
)

// Register adds m to the registry, keyed by its name. Handler files call
// this from an init() func so BuildTable sees every module without the
// entrypoint importing them individually by symbol.
func Register(m Module) {
	mu.Lock()
	defer mu.Unlock()
	registry[m.Name()] = m
}

// All returns every registered module, keyed by name.
func All() map[string]Module {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Get looks up a single registered module by name.
func Get(name string) (Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// BuildTable merges every registered module's handlers into a single
// dispatch.Table. It panics if two modules claim the same opcode, since
// that can only happen from a programming error in this codebase, never
// from anything a caller controls.
func BuildTable() dispatch.Table {
	mu.RLock()
	defer mu.RUnlock()

	table := make(dispatch.Table)
	for _, m := range registry {
		for op, h := range m.Handlers() {
			if _, exists := table[op]; exists {
				panic(fmt.Sprintf("plugins: opcode %d claimed by more than one module (module %q)", op, m.Name()))
			}
			table[op] = h
		}
	}
	return table
}
