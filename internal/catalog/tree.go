// Package catalog holds the category tree and offer selection used by the product catalog.
package catalog

import (
	"github.com/hotelprocure/procure/internal/entity"
)

// Tree is an arena of category nodes with parent/child index lookups.
// Product counts are recomputed on every call.
type Tree struct {
	nodes []node
	index map[int64]int
	roots []int
}

type node struct {
	id       int64
	name     string
	icon     string
	direct   int
	children []int
}

// Summary is a category with its recursive product count and subtree.
type Summary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon,omitempty"`
	ProductCount int       `json:"productCount"`
	Children     []Summary `json:"children"`
}

// NewTree builds a tree from categories in insertion order. direct maps a category id
// to the number of products assigned to it. Categories whose parent is unknown become
// roots, and a parent link that would close a cycle is dropped.
func NewTree(categories []*entity.Category, direct map[int64]int) *Tree {
	t := &Tree{
		nodes: make([]node, 0, len(categories)),
		index: make(map[int64]int, len(categories)),
	}
	for _, c := range categories {
		if c == nil {
			continue
		}
		if _, dup := t.index[c.ID]; dup {
			continue
		}
		t.index[c.ID] = len(t.nodes)
		t.nodes = append(t.nodes, node{id: c.ID, name: c.Name, icon: c.Icon, direct: direct[c.ID]})
	}

	parents := make(map[int]int, len(categories))
	for _, c := range categories {
		if c == nil || c.ParentID == nil {
			continue
		}
		child := t.index[c.ID]
		parent, ok := t.index[*c.ParentID]
		if !ok || t.reaches(parents, parent, child) {
			continue
		}
		parents[child] = parent
	}

	for i := range t.nodes {
		if parent, ok := parents[i]; ok {
			t.nodes[parent].children = append(t.nodes[parent].children, i)
			continue
		}
		t.roots = append(t.roots, i)
	}
	return t
}

// reaches reports whether walking up from `from` arrives at `target`.
func (t *Tree) reaches(parents map[int]int, from, target int) bool {
	for cur, ok := from, true; ok; cur, ok = parents[cur] {
		if cur == target {
			return true
		}
	}
	return false
}

// Has reports whether the category exists.
func (t *Tree) Has(id int64) bool {
	_, ok := t.index[id]
	return ok
}

// ProductCount returns direct products of the category plus those of all descendants.
func (t *Tree) ProductCount(id int64) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	return t.count(i), true
}

func (t *Tree) count(i int) int {
	n := t.nodes[i]
	total := n.direct
	for _, child := range n.children {
		total += t.count(child)
	}
	return total
}

// DescendantIDs returns id followed by every descendant id, depth-first with siblings in
// insertion order. An unknown id yields just itself.
func (t *Tree) DescendantIDs(id int64) []int64 {
	i, ok := t.index[id]
	if !ok {
		return []int64{id}
	}
	ids := make([]int64, 0, 8)
	var walk func(int)
	walk = func(i int) {
		ids = append(ids, t.nodes[i].id)
		for _, child := range t.nodes[i].children {
			walk(child)
		}
	}
	walk(i)
	return ids
}

// Roots returns the full tree with aggregated counts for every node.
func (t *Tree) Roots() []Summary {
	out := make([]Summary, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, t.summary(r))
	}
	return out
}

func (t *Tree) summary(i int) Summary {
	n := t.nodes[i]
	s := Summary{
		ID:           n.id,
		Name:         n.name,
		Icon:         n.icon,
		ProductCount: n.direct,
		Children:     make([]Summary, 0, len(n.children)),
	}
	for _, child := range n.children {
		cs := t.summary(child)
		s.ProductCount += cs.ProductCount
		s.Children = append(s.Children, cs)
	}
	return s
}
