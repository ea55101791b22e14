package agon

import (
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// keepNode is one level of the keep-tree built from a set of dotted
// paths (spec §4.8): a node with no children was requested as a bare
// leaf ("a"), so its whole value survives untouched; a node with
// children was also requested more specifically ("a.b"), so only the
// named children survive and the bare leaf request is overridden.
type keepNode struct {
	children map[string]*keepNode
}

func buildKeepTree(keepPaths []string) map[string]*keepNode {
	root := map[string]*keepNode{}
	for _, path := range keepPaths {
		cur := root
		for _, seg := range strings.Split(path, ".") {
			if seg == "" {
				continue
			}
			node, ok := cur[seg]
			if !ok {
				node = &keepNode{children: map[string]*keepNode{}}
				cur[seg] = node
			}
			cur = node.children
		}
	}
	return root
}

// ProjectData keeps, in every object of data (recursively), only the
// fields named by keepPaths (dotted, e.g. "user.name"). Non-object
// elements of an array are preserved as-is; arrays are projected
// element-wise, not recursed into when an element is itself an array
// (spec §4.8).
func ProjectData(data []Value, keepPaths []string) []Value {
	tree := buildKeepTree(keepPaths)
	out := make([]Value, len(data))
	for i, v := range data {
		out[i] = projectValue(v, tree)
	}
	return out
}

func projectValue(v Value, tree map[string]*keepNode) Value {
	switch v.Kind {
	case avalue.KindObject:
		out := NewObject()
		for _, k := range v.Obj.Keys() {
			node, ok := tree[k]
			if !ok {
				continue
			}
			fv, _ := v.Obj.Get(k)
			if len(node.children) == 0 {
				out.Set(k, fv)
				continue
			}
			out.Set(k, projectValue(fv, node.children))
		}
		return ObjectVal(out)
	case avalue.KindArray:
		elems := make([]Value, len(v.Array))
		for i, e := range v.Array {
			if e.Kind == avalue.KindObject {
				elems[i] = projectValue(e, tree)
			} else {
				elems[i] = e
			}
		}
		return Array(elems)
	default:
		return v
	}
}
