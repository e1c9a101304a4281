/*
Package inspect is a registry of inspectors: functions which, given an object of a
particular type, return a structural description of it. The coercion layer
consults the registry for roles which use inspection when an object does not
know how to convert itself into an expression.

Inspectors are registered either for a concrete type or for an interface type;
an interface inspector applies to every type which implements the interface.
*/
package inspect

import (
	"fmt"
	"reflect"
	"sync"
)

// Inspector returns a description of v, or false if it declines to describe
// it.
type Inspector func(v interface{}) (interface{}, bool)

type Registry struct {
	mutex      sync.RWMutex
	inspectors map[reflect.Type]Inspector
	ifaces     []reflect.Type
	cache      map[reflect.Type]Inspector
}

var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		inspectors: map[reflect.Type]Inspector{},
		cache:      map[reflect.Type]Inspector{},
	}
}

// Register adds an inspector for typ; registering a type twice is a
// programming error.
func (reg *Registry) Register(typ reflect.Type, fn Inspector) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if _, ok := reg.inspectors[typ]; ok {
		panic(fmt.Sprintf("inspect: inspector redefined: %s", typ))
	}
	reg.inspectors[typ] = fn
	if typ.Kind() == reflect.Interface {
		reg.ifaces = append(reg.ifaces, typ)
	}
	reg.cache = map[reflect.Type]Inspector{}
}

func (reg *Registry) lookup(typ reflect.Type) Inspector {
	if fn, ok := reg.inspectors[typ]; ok {
		return fn
	}
	if typ.Kind() == reflect.Ptr {
		if fn, ok := reg.inspectors[typ.Elem()]; ok {
			return fn
		}
	}
	for _, iface := range reg.ifaces {
		if typ.Implements(iface) {
			return reg.inspectors[iface]
		}
	}
	return nil
}

func (reg *Registry) inspector(typ reflect.Type) Inspector {
	reg.mutex.RLock()
	fn, found := reg.cache[typ]
	reg.mutex.RUnlock()
	if found {
		return fn
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	fn = reg.lookup(typ)
	reg.cache[typ] = fn
	return fn
}

// Inspect returns the description of v from the inspector registered for
// its type; it returns false if there is no inspector or the inspector
// declines.
func (reg *Registry) Inspect(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}

	fn := reg.inspector(reflect.TypeOf(v))
	if fn == nil {
		return nil, false
	}
	return fn(v)
}

func Register(typ reflect.Type, fn Inspector) {
	Default.Register(typ, fn)
}

func Inspect(v interface{}) (interface{}, bool) {
	return Default.Inspect(v)
}
