package lotuscalc

import (
	"sort"
	"strings"
	"sync"
)

// Function implements a formula function. Arguments arrive already
// evaluated; range arguments are array values. Functions return their
// result as a Value and signal failure by returning an error Value.
type Function func(ctx *CallContext, args []Value) Value

// FunctionRegistry maps upper-cased function names to implementations.
// Lookup is case-insensitive. Safe for concurrent use.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]Function)}
}

// DefaultRegistry returns a registry with every builtin function installed.
// Later categories win name collisions, so the statistical SUM replaces the
// basic math one.
func DefaultRegistry() *FunctionRegistry {
	r := NewFunctionRegistry()
	r.RegisterAll(mathFunctions())
	r.RegisterAll(statisticalFunctions())
	r.RegisterAll(stringFunctions())
	r.RegisterAll(logicalFunctions())
	r.RegisterAll(lookupFunctions())
	r.RegisterAll(datetimeFunctions())
	r.RegisterAll(infoFunctions())
	r.RegisterAll(financialFunctions())
	r.RegisterAll(databaseFunctions())
	return r
}

// Register adds or replaces a function under the given name.
func (r *FunctionRegistry) Register(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[strings.ToUpper(name)] = fn
}

// RegisterAll adds every function in the map.
func (r *FunctionRegistry) RegisterAll(funcs map[string]Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range funcs {
		r.funcs[strings.ToUpper(name)] = fn
	}
}

// Get looks up a function by name, ignoring case.
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[strings.ToUpper(name)]
	return fn, ok
}

// Exists reports whether a function is registered under the name.
func (r *FunctionRegistry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all registered function names, sorted.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
