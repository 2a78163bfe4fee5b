package parsercommon

// Walk traverses the tree rooted at node depth-first in source order, calling
// visit with each node and its depth below node. Children of a node are
// skipped when visit returns false. Assertions are visited right after the
// step or offset owning them, one level deeper. Nodes may be passed either as
// values or as pointers.
func Walk(node AstNode, visit func(node AstNode, depth int) bool) {
	walk(node, 0, visit)
}

func walk(node AstNode, depth int, visit func(AstNode, int) bool) {
	if node == nil || !visit(node, depth) {
		return
	}
	children(node, depth+1, visit)
}

func children(node AstNode, depth int, visit func(AstNode, int) bool) {
	switch n := node.(type) {
	case Fragment:
		children(&n, depth, visit)
	case Path:
		children(&n, depth, visit)
	case LocalPath:
		children(&n, depth, visit)
	case Range:
		children(&n, depth, visit)
	case Step:
		children(&n, depth, visit)
	case *Fragment:
		walk(&n.Path, depth, visit)
		if n.Range != nil {
			walk(n.Range, depth, visit)
		}
	case *Path:
		walk(&n.Step, depth, visit)
		walk(&n.LocalPath, depth, visit)
	case *LocalPath:
		for i := range n.Steps {
			walk(&n.Steps[i], depth, visit)
		}
		if n.Tail != nil {
			walk(n.Tail, depth, visit)
		}
	case *RedirectedPath:
		if n.Target != nil {
			walk(n.Target, depth, visit)
		}
	case *Range:
		walk(&n.Start, depth, visit)
		walk(&n.End, depth, visit)
	case *Step:
		if n.Assertion != nil {
			visit(n.Assertion, depth)
		}
	case Offset:
		if a := n.OffsetAssertion(); a != nil {
			visit(a, depth)
		}
	}
}
