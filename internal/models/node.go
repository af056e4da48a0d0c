package models

// GradeNode is a course, section or item in the markbook tree.
// Nodes live for a single recalculation pass.
type GradeNode struct {
	Name        string
	Depth       Depth
	Position    int
	Mark        Value
	Denominator Value
	Weight      Value
	Hidden      bool
	Source      string
	Children    []*GradeNode
}

func NewGradeNode(position int, depth Depth, row Row) *GradeNode {
	return &GradeNode{
		Name:        row.Name,
		Depth:       depth,
		Position:    position,
		Mark:        ParseValue(row.Mark),
		Denominator: ParseValue(row.Denominator),
		Weight:      ParseValue(row.Weight),
		Hidden:      row.Hidden,
		Source:      row.Source,
	}
}

func (n *GradeNode) Leaf() bool {
	return len(n.Children) == 0
}

// Walk visits n and its descendants depth-first in display order.
func (n *GradeNode) Walk(fn func(*GradeNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
