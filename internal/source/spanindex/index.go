// Package spanindex maps source positions to the innermost value registered
// for a span that covers them.
package spanindex

import (
	"github.com/sirkon/rbtree"

	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Index holds spans of one file. Spans must nest: two spans either are disjoint
// or one encloses the other.
type Index[V any] struct {
	tree *rbtree.Tree[*span[V]]
	size int
}

type span[V any] struct {
	start    source.Position
	end      source.Position
	value    V
	children *rbtree.Tree[*span[V]]
}

// Cmp orders spans by position and reports 0 for any overlap. Overlaps are then
// resolved into containment by attach.
func (s *span[V]) Cmp(other *span[V]) int {
	if s.end.Compare(&other.start) < 0 {
		return -1
	}
	if s.start.Compare(&other.end) > 0 {
		return 1
	}
	return 0
}

func (s *span[V]) encloses(other *span[V]) bool {
	return s.start.Compare(&other.start) <= 0 && s.end.Compare(&other.end) >= 0
}

// New creates an empty index.
func New[V any]() *Index[V] {
	return &Index[V]{tree: rbtree.New[*span[V]]()}
}

// Len returns the number of registered spans.
func (x *Index[V]) Len() int {
	return x.size
}

// Add registers value for loc. Synthetic locations are ignored. Partially
// overlapping spans and duplicates keep the first registration. Enclosing
// spans should be added before the spans they enclose.
func (x *Index[V]) Add(loc *source.Location, value V) bool {
	if loc.IsSynthetic() {
		return false
	}
	s := &span[V]{start: *loc.Start, end: *loc.End, value: value}
	if !attach(x.tree, s) {
		return false
	}
	x.size++
	return true
}

func attach[V any](t *rbtree.Tree[*span[V]], s *span[V]) bool {
	r := t.InsertReturn(s)
	if r == s {
		return true
	}

	switch {
	case r.encloses(s) && s.encloses(r):
		return false
	case s.encloses(r):
		// s takes over the tree slot of r, r moves below s
		old := *r
		*r = *s
		if r.children == nil {
			r.children = rbtree.New[*span[V]]()
		}
		return attach(r.children, &old)
	case r.encloses(s):
		if r.children == nil {
			r.children = rbtree.New[*span[V]]()
		}
		return attach(r.children, s)
	}
	return false
}

// At returns the value of the innermost span covering pos.
func (x *Index[V]) At(pos source.Position) (V, bool) {
	point := &span[V]{start: pos, end: pos}
	var (
		found V
		ok    bool
	)
	t := x.tree
	for t != nil {
		s := search(t, point)
		if s == nil {
			break
		}
		found, ok = s.value, true
		t = s.children
	}
	return found, ok
}

// search walks t in span order up to the first span at or past point.
func search[V any](t *rbtree.Tree[*span[V]], point *span[V]) *span[V] {
	for s := range t.Iter() {
		switch s.Cmp(point) {
		case 0:
			return s
		case 1:
			return nil
		}
	}
	return nil
}
