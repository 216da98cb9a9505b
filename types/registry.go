package types

import "sync"

// The registry maps Type Descriptors to the ids stored in type-valued slots.
// Id 0 marks an unset slot.
var registry struct {
	ids   map[*Type]uint32
	types []*Type
	once  sync.Once
	mu    sync.RWMutex
}

// Init registers the builtin scalar types so their ids are stable across runs.
// It is safe to call more than once.
func Init() {
	registry.once.Do(func() {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		if registry.ids == nil {
			registry.ids = make(map[*Type]uint32)
		}
		for _, t := range builtins {
			if t != nil {
				internLocked(t)
			}
		}
	})
}

// Intern returns the registry id of t, registering it on first use.
func Intern(t *Type) uint32 {
	Init()
	registry.mu.RLock()
	id, ok := registry.ids[t]
	registry.mu.RUnlock()
	if ok {
		return id
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	return internLocked(t)
}

func internLocked(t *Type) uint32 {
	if id, ok := registry.ids[t]; ok {
		return id
	}
	registry.types = append(registry.types, t)
	id := uint32(len(registry.types))
	registry.ids[t] = id
	return id
}

// Lookup returns the type registered under id.
func Lookup(id uint32) (*Type, bool) {
	Init()
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if id == 0 || int(id) > len(registry.types) {
		return nil, false
	}
	return registry.types[id-1], true
}
