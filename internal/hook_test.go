package internal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHook struct {
	spec HookSpec
}

func (h stubHook) Spec() HookSpec                { return h.spec }
func (h stubHook) RunHook(*App, []*Bundle) error { return nil }

func names(hooks []Hook) []string {
	out := make([]string, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, h.Spec().Name)
	}
	return out
}

func TestOrderHooks(t *testing.T) {
	t.Parallel()

	t.Run("default hooks", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks(DefaultHooks())
		require.NoError(t, err)
		assert.Equal(t, []string{"config", "extensions", "services", "routes", "bundle_routes", "static"}, names(got))
	})

	t.Run("priority breaks ties", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "late", Priority: 50}},
			stubHook{HookSpec{Name: "early", Priority: 10}},
			stubHook{HookSpec{Name: "middle", Priority: 30}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"early", "middle", "late"}, names(got))
	})

	t.Run("extreme priorities", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "last", Priority: math.MaxInt}},
			stubHook{HookSpec{Name: "zero"}},
			stubHook{HookSpec{Name: "first", Priority: math.MinInt}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "zero", "last"}, names(got))
	})

	t.Run("equal priority keeps install order", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "b"}},
			stubHook{HookSpec{Name: "a"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, names(got))
	})

	t.Run("run after overrides priority", func(t *testing.T) {
		t.Parallel()
		hooks := append(DefaultHooks(), stubHook{HookSpec{Name: "commands", Priority: 0, RunAfter: []string{"routes"}}})
		got, err := orderHooks(hooks)
		require.NoError(t, err)
		assert.Equal(t, []string{"config", "extensions", "services", "routes", "commands", "bundle_routes", "static"}, names(got))
	})

	t.Run("run before overrides priority", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "a", Priority: 1}},
			stubHook{HookSpec{Name: "b", Priority: 2, RunBefore: []string{"a"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, names(got))
	})

	t.Run("unknown constraints are ignored", func(t *testing.T) {
		t.Parallel()
		got, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "a", RunAfter: []string{"missing"}, RunBefore: []string{"gone"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, names(got))
	})

	t.Run("conflicting constraints", func(t *testing.T) {
		t.Parallel()
		_, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "a", RunAfter: []string{"b"}}},
			stubHook{HookSpec{Name: "b", RunAfter: []string{"a"}}},
		})
		require.ErrorIs(t, err, ErrCircularDependency)
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		_, err := orderHooks([]Hook{
			stubHook{HookSpec{Name: "a"}},
			stubHook{HookSpec{Name: "a"}},
		})
		require.ErrorIs(t, err, ErrDuplicateHook)
	})
}

type namedThing struct {
	key   string
	owner string
}

func thingCollector() Collector[namedThing] {
	return Collector[namedThing]{
		CollectFromBundle: func(b *Bundle) ([]namedThing, error) {
			var out []namedThing
			for _, e := range b.Extensions {
				out = append(out, namedThing{key: e.Name, owner: b.Name()})
			}
			return out, nil
		},
		TypeCheck: func(n namedThing) bool { return n.key != "skip" },
		KeyName:   func(n namedThing) string { return n.key },
	}
}

func TestCollector(t *testing.T) {
	t.Parallel()

	t.Run("derived bundle overrides its parent", func(t *testing.T) {
		t.Parallel()
		a := &Bundle{Type: "ABundle", Module: "a", Extensions: []ExtensionEntry{{Name: "x"}, {Name: "y"}}}
		b := &Bundle{Type: "BBundle", Module: "b", Parent: a, Extensions: []ExtensionEntry{{Name: "y"}, {Name: "z"}, {Name: "skip"}}}

		got, err := thingCollector().Collect([]*Bundle{b})
		require.NoError(t, err)
		assert.Equal(t, []namedThing{
			{key: "x", owner: "a_bundle"},
			{key: "y", owner: "b_bundle"},
			{key: "z", owner: "b_bundle"},
		}, got)
	})

	t.Run("later bundles override earlier ones", func(t *testing.T) {
		t.Parallel()
		first := &Bundle{Type: "FirstBundle", Module: "first", Extensions: []ExtensionEntry{{Name: "db"}}}
		second := &Bundle{Type: "SecondBundle", Module: "second", Extensions: []ExtensionEntry{{Name: "db"}, {Name: "mail"}}}

		got, err := thingCollector().Collect([]*Bundle{first, second})
		require.NoError(t, err)
		assert.Equal(t, []namedThing{
			{key: "db", owner: "second_bundle"},
			{key: "mail", owner: "second_bundle"},
		}, got)
	})

	t.Run("shared parent is visited once", func(t *testing.T) {
		t.Parallel()
		base := &Bundle{Type: "BaseBundle", Module: "base", Extensions: []ExtensionEntry{{Name: "db"}}}
		left := &Bundle{Type: "LeftBundle", Module: "left", Parent: base, Extensions: []ExtensionEntry{{Name: "db"}}}
		right := &Bundle{Type: "RightBundle", Module: "right", Parent: base}

		got, err := thingCollector().Collect([]*Bundle{left, right})
		require.NoError(t, err)
		assert.Equal(t, []namedThing{{key: "db", owner: "left_bundle"}}, got)
	})

	t.Run("collection error names the bundle", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		c := Collector[int]{
			CollectFromBundle: func(*Bundle) ([]int, error) { return nil, boom },
			KeyName:           func(int) string { return "" },
		}
		_, err := c.Collect([]*Bundle{{Type: "BadBundle", Module: "bad"}})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "BadBundle(bad)")
	})
}

func TestOrderedMap(t *testing.T) {
	t.Parallel()

	m := newOrderedMap[int]()
	assert.False(t, m.set("a", 1))
	assert.False(t, m.set("b", 2))
	assert.True(t, m.set("a", 3))

	assert.Equal(t, []string{"a", "b"}, m.names())
	assert.Equal(t, []int{3, 2}, m.list())
	assert.Equal(t, 2, m.len())
	assert.True(t, m.has("b"))
	assert.False(t, m.has("c"))

	v, ok := m.get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
