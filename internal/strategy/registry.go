package strategy

import (
	"sync"

	"go.uber.org/zap"
)

// Registry maps strategy names to adapters. It is populated once during
// process startup and treated as read-only afterwards; lookups are safe
// under concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Adapter
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byName: make(map[string]Adapter),
		logger: logger,
	}
}

// Register stores an adapter by name. A name collision keeps the last
// write and logs a warning so the overwrite is observable.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, exists := r.byName[name]; exists {
		r.logger.Warn("strategy registered twice, keeping the newest",
			zap.String("strategy", name))
	} else {
		r.order = append(r.order, name)
	}
	r.byName[name] = a
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Names lists registered strategy names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// defaultRegistry is the process-wide registry. Registration after
// startup is unsupported.
var defaultRegistry = NewRegistry(nil)

// RegisterDefaults populates the process-wide registry with the built-in
// strategies. Call it once from main before any run starts.
func RegisterDefaults(logger *zap.Logger) {
	if logger != nil {
		defaultRegistry.logger = logger
	}
	defaultRegistry.Register(NewEMACrossover())
}

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }
