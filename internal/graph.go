package internal

// rootNode is the synthetic vertex that depends on every declared node,
// giving the traversal a single starting point.
const rootNode = "__root__"

// Node is a named entry together with the names it depends on.
type Node struct {
	Name         string
	Dependencies []string
}

type vertex struct {
	name       string
	declared   []string
	dependents []*vertex
}

// ResolveOrder returns node names ordered so that every node appears after
// all of its dependencies.
//
// A dependency that is not among nodes is accepted only when external
// reports it as already satisfied (for example, registered by an earlier
// hook run); otherwise resolution fails with a *DependencyError wrapping
// ErrMissingDependency. A cycle fails with ErrCircularDependency naming
// the two nodes in conflict. Nodes declared twice keep their first position
// and their last dependency list.
func ResolveOrder(nodes []Node, external func(name string) bool) ([]string, error) {
	byName := make(map[string]*vertex, len(nodes)+1)
	ordered := make([]*vertex, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := byName[n.Name]; ok {
			v.declared = n.Dependencies
			continue
		}
		v := &vertex{name: n.Name, declared: n.Dependencies}
		byName[n.Name] = v
		ordered = append(ordered, v)
	}

	root := &vertex{name: rootNode, dependents: ordered}

	for _, v := range ordered {
		for _, dep := range v.declared {
			target, ok := byName[dep]
			if !ok {
				if external != nil && external(dep) {
					continue
				}
				return nil, &DependencyError{Err: ErrMissingDependency, Node: v.name, Dependency: dep}
			}
			v.dependents = append(v.dependents, target)
		}
	}

	r := &resolver{
		resolvedSet: make(map[*vertex]bool, len(ordered)+1),
		unresolved:  make(map[*vertex]bool, len(ordered)+1),
	}
	if err := r.resolve(root); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(ordered))
	for _, v := range r.resolved {
		if v != root {
			order = append(order, v.name)
		}
	}
	return order, nil
}

// resolver performs the depth-first walk. unresolved holds the vertices on
// the active recursion path; meeting one of them again means a cycle.
type resolver struct {
	resolved    []*vertex
	resolvedSet map[*vertex]bool
	unresolved  map[*vertex]bool
}

func (r *resolver) resolve(v *vertex) error {
	r.unresolved[v] = true
	for _, dep := range v.dependents {
		if r.resolvedSet[dep] {
			continue
		}
		if r.unresolved[dep] {
			return &DependencyError{Err: ErrCircularDependency, Node: v.name, Dependency: dep.name}
		}
		if err := r.resolve(dep); err != nil {
			return err
		}
	}
	r.resolved = append(r.resolved, v)
	r.resolvedSet[v] = true
	delete(r.unresolved, v)
	return nil
}
