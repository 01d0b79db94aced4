package internal

// orderedMap is an insertion-ordered mapping.
// Setting an existing key replaces its value and keeps its original position.
type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: make(map[string]V)}
}

// set stores v under key and reports whether key was already present.
func (m *orderedMap[V]) set(key string, v V) bool {
	_, exists := m.values[key]
	if !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return exists
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[V]) has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *orderedMap[V]) len() int {
	return len(m.keys)
}

// list returns the values in insertion order.
func (m *orderedMap[V]) list() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// names returns a copy of the keys in insertion order.
func (m *orderedMap[V]) names() []string {
	return append([]string(nil), m.keys...)
}
