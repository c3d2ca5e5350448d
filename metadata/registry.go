package metadata

import (
	"reflect"
	"sync"

	godao "github.com/vincent3i/godao"
)

// registry is the process-wide metadata cache. Derivation is pure and
// reproducible, so concurrent first-time registration of the same type is
// safe to race: the last write wins with an identical value.
type registry struct {
	mu     sync.RWMutex
	byName map[string]*Metadata
	byType map[reflect.Type]*Metadata
}

var global = &registry{
	byName: make(map[string]*Metadata),
	byType: make(map[reflect.Type]*Metadata),
}

// Register derives and caches metadata for the given entity values, which
// may be instances or pointers to instances. Registering an already known
// type is a no-op.
func Register(entities ...any) error {
	for _, e := range entities {
		t := reflect.TypeOf(e)
		if t == nil {
			return godao.NewMetadataError("<nil>", "cannot register nil entity")
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		global.mu.RLock()
		_, known := global.byType[t]
		global.mu.RUnlock()
		if known {
			continue
		}

		m, err := derive(t)
		if err != nil {
			return err
		}

		global.mu.Lock()
		global.byName[m.Name] = m
		global.byType[t] = m
		global.mu.Unlock()
	}
	return nil
}

// MustRegister is like Register but panics on mapping errors. Intended for
// package init blocks.
func MustRegister(entities ...any) {
	if err := Register(entities...); err != nil {
		panic(err)
	}
}

// Lookup returns the metadata registered under the given entity name.
func Lookup(name string) (*Metadata, error) {
	global.mu.RLock()
	m, ok := global.byName[name]
	global.mu.RUnlock()
	if !ok {
		return nil, godao.NewMetadataError(name, "")
	}
	return m, nil
}

// LookupEntity returns the metadata for a registered entity instance.
func LookupEntity(entity any) (*Metadata, error) {
	t := reflect.TypeOf(entity)
	if t == nil {
		return nil, godao.NewMetadataError("<nil>", "nil entity")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return lookupType(t)
}

func lookupType(t reflect.Type) (*Metadata, error) {
	global.mu.RLock()
	m, ok := global.byType[t]
	global.mu.RUnlock()
	if !ok {
		return nil, godao.NewMetadataError(t.Name(), "")
	}
	return m, nil
}
