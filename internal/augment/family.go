// Package augment derives neighbor links for every node of a finished tree.
package augment

import "github.com/gnolang/canvasfmt/internal/ast"

// Links are the neighbors of one node.
type Links struct {
	Parent     ast.NodeID
	Prev       ast.NodeID
	Next       ast.NodeID
	FirstChild ast.NodeID
	LastChild  ast.NodeID
	// Slot is the list of Parent that holds the node.
	Slot ast.Slot
}

// Family is a read-only side table of Links indexed by NodeID.
type Family struct {
	links []Links
}

var none = Links{
	Parent:     ast.NoNode,
	Prev:       ast.NoNode,
	Next:       ast.NoNode,
	FirstChild: ast.NoNode,
	LastChild:  ast.NoNode,
}

// Build computes the family links of every node in tree.
func Build(tree *ast.Tree) *Family {
	f := &Family{links: make([]Links, tree.Len())}
	for i := range f.links {
		f.links[i] = none
	}
	tree.Walk(tree.Root, func(id, parent ast.NodeID, slot ast.Slot) bool {
		l := &f.links[id]
		l.Parent = parent
		l.Slot = slot

		children := tree.Node(id).Children
		if len(children) > 0 {
			l.FirstChild = children[0]
			l.LastChild = children[len(children)-1]
		}
		for _, s := range ast.Slots {
			list := tree.List(id, s)
			for i, c := range list {
				if i > 0 {
					f.links[c].Prev = list[i-1]
				}
				if i < len(list)-1 {
					f.links[c].Next = list[i+1]
				}
			}
		}
		return true
	})
	return f
}

// Of returns the links of id.
func (f *Family) Of(id ast.NodeID) Links {
	if id == ast.NoNode {
		return none
	}
	return f.links[id]
}

func (f *Family) Parent(id ast.NodeID) ast.NodeID     { return f.Of(id).Parent }
func (f *Family) Prev(id ast.NodeID) ast.NodeID       { return f.Of(id).Prev }
func (f *Family) Next(id ast.NodeID) ast.NodeID       { return f.Of(id).Next }
func (f *Family) FirstChild(id ast.NodeID) ast.NodeID { return f.Of(id).FirstChild }
func (f *Family) LastChild(id ast.NodeID) ast.NodeID  { return f.Of(id).LastChild }
func (f *Family) Slot(id ast.NodeID) ast.Slot         { return f.Of(id).Slot }
