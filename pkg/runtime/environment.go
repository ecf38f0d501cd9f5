package runtime

import "sort"

// Environment is a persistent mapping from names to values. A snapshot is
// never mutated: Bind returns a new snapshot chained onto the receiver, so
// every earlier snapshot stays valid and unaffected by later extensions.
// Statement execution threads snapshots forward explicitly.
type Environment struct {
	values    map[string]Value
	parent    *Environment
	protected map[string]struct{}
}

// NewEnvironment creates an empty root snapshot.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Parent exposes the snapshot this one extends (nil at the root).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Bind returns a new snapshot in which name resolves to value. The binding
// shadows any earlier binding of the same name; callers enforce write-once
// declaration rules before binding.
func (e *Environment) Bind(name string, value Value) *Environment {
	return &Environment{
		values: map[string]Value{name: value},
		parent: e,
	}
}

// BindProtected is Bind for built-in names: the binding can never be replaced
// by assignment in any later snapshot.
func (e *Environment) BindProtected(name string, value Value) *Environment {
	return &Environment{
		values:    map[string]Value{name: value},
		parent:    e,
		protected: map[string]struct{}{name: {}},
	}
}

// Get resolves a name against the snapshot chain, newest binding first.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// IsBound reports whether name has any active binding in this snapshot.
func (e *Environment) IsBound(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// IsProtected reports whether name was bound as a built-in.
func (e *Environment) IsProtected(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.protected[name]; ok {
			return true
		}
	}
	return false
}

// Keys returns the visible binding names in sorted order (useful for
// determinism in tests).
func (e *Environment) Keys() []string {
	seen := make(map[string]struct{})
	for env := e; env != nil; env = env.parent {
		for k := range env.values {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot flattens the visible bindings into a plain map, newest wins.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value)
	var walk func(env *Environment)
	walk = func(env *Environment) {
		if env == nil {
			return
		}
		walk(env.parent)
		for k, v := range env.values {
			out[k] = v
		}
	}
	walk(e)
	return out
}
