package rgpu

// uniformEntry is one (name, value) row of a pass's uniform store.
type uniformEntry struct {
	Name  string
	Value Value
}

// UniformStore implements the spec §3 "two views: hash by name for
// O(1) lookup and ordered name array for deterministic bind order"
// uniform store, with upsert-with-preserved-first-insertion-order
// semantics (spec §4.1 config_uniforms).
type UniformStore struct {
	index map[string]int
	order []uniformEntry
}

// Upsert sets name to v. If name already exists, its value is
// overwritten but its position in bind order is preserved (spec §4.1,
// §8 "Uniform ordering").
func (u *UniformStore) Upsert(name string, v Value) {
	if u.index == nil {
		u.index = make(map[string]int)
	}
	if i, ok := u.index[name]; ok {
		u.order[i].Value = v
		return
	}
	u.index[name] = len(u.order)
	u.order = append(u.order, uniformEntry{Name: name, Value: v})
}

// Lookup returns the value bound to name and whether it was found.
func (u *UniformStore) Lookup(name string) (Value, bool) {
	i, ok := u.index[name]
	if !ok {
		return Value{}, false
	}
	return u.order[i].Value, true
}

// Ordered returns the uniforms in first-insertion order (spec §4.3
// "Bind uniforms in ordered sequence").
func (u *UniformStore) Ordered() []uniformEntry {
	return u.order
}
