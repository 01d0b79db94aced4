package internal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/unchained/internal"
)

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []internal.Node
		want  []string
	}{
		{
			name: "independent nodes keep declaration order",
			nodes: []internal.Node{
				{Name: "a"}, {Name: "b"}, {Name: "c"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "dependencies come first",
			nodes: []internal.Node{
				{Name: "security", Dependencies: []string{"db", "session"}},
				{Name: "session"},
				{Name: "db"},
			},
			want: []string{"db", "session", "security"},
		},
		{
			name: "chain",
			nodes: []internal.Node{
				{Name: "c", Dependencies: []string{"b"}},
				{Name: "b", Dependencies: []string{"a"}},
				{Name: "a"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "shared dependency resolved once",
			nodes: []internal.Node{
				{Name: "mail", Dependencies: []string{"db"}},
				{Name: "auth", Dependencies: []string{"db"}},
				{Name: "db"},
			},
			want: []string{"db", "mail", "auth"},
		},
		{
			name: "redeclared node keeps position and takes last dependencies",
			nodes: []internal.Node{
				{Name: "a", Dependencies: []string{"c"}},
				{Name: "b"},
				{Name: "c"},
				{Name: "a"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := internal.ResolveOrder(tt.nodes, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOrderErrors(t *testing.T) {
	t.Parallel()

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()
		_, err := internal.ResolveOrder([]internal.Node{
			{Name: "a", Dependencies: []string{"b"}},
			{Name: "b", Dependencies: []string{"a"}},
		}, nil)
		require.ErrorIs(t, err, internal.ErrCircularDependency)

		var depErr *internal.DependencyError
		require.True(t, errors.As(err, &depErr))
		assert.Equal(t, "b", depErr.Node)
		assert.Equal(t, "a", depErr.Dependency)
		assert.Contains(t, err.Error(), "circular dependency")
	})

	t.Run("self dependency", func(t *testing.T) {
		t.Parallel()
		_, err := internal.ResolveOrder([]internal.Node{
			{Name: "a", Dependencies: []string{"a"}},
		}, nil)
		require.ErrorIs(t, err, internal.ErrCircularDependency)
	})

	t.Run("missing dependency", func(t *testing.T) {
		t.Parallel()
		_, err := internal.ResolveOrder([]internal.Node{
			{Name: "security", Dependencies: []string{"db"}},
		}, nil)
		require.ErrorIs(t, err, internal.ErrMissingDependency)

		var depErr *internal.DependencyError
		require.True(t, errors.As(err, &depErr))
		assert.Equal(t, "security", depErr.Node)
		assert.Equal(t, "db", depErr.Dependency)
	})

	t.Run("external dependency is accepted", func(t *testing.T) {
		t.Parallel()
		got, err := internal.ResolveOrder([]internal.Node{
			{Name: "security", Dependencies: []string{"db"}},
		}, func(name string) bool { return name == "db" })
		require.NoError(t, err)
		assert.Equal(t, []string{"security"}, got)
	})
}
