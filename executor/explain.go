package executor

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/vegasq/sqlcore/planner/physical"
)

// ExplainNode is the explain view of one physical operator
type ExplainNode struct {
	Name     string           `json:"name"`
	Params   []physical.Param `json:"params,omitempty"`
	Children []*ExplainNode   `json:"children,omitempty"`
}

// describe builds the explain tree of p
func describe(p physical.PhysicalPlan) *ExplainNode {
	d := p.Describe()
	n := &ExplainNode{Name: d.Name, Params: d.Params}
	for _, child := range p.Children() {
		n.Children = append(n.Children, describe(child))
	}
	return n
}

func (n *ExplainNode) label() string {
	if len(n.Params) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Params))
	for i, p := range n.Params {
		parts[i] = p.Key + "=" + p.Value
	}
	return n.Name + " (" + strings.Join(parts, ", ") + ")"
}

func (n *ExplainNode) tree(root treeprint.Tree) treeprint.Tree {
	var branch treeprint.Tree
	if root == nil {
		branch = treeprint.NewWithRoot(n.label())
	} else {
		branch = root.AddBranch(n.label())
	}
	for _, child := range n.Children {
		child.tree(branch)
	}
	return branch
}

// String renders the tree with one operator per line
func (n *ExplainNode) String() string {
	return n.tree(nil).String()
}

// ExplainResponse holds both views of a planned query
type ExplainResponse struct {
	// Logical is the optimized logical plan
	Logical string `json:"logical"`
	// Physical is the operator tree an execution would run
	Physical *ExplainNode `json:"physical"`
}

func (r *ExplainResponse) String() string {
	return "logical:\n" + r.Logical + "physical:\n" + r.Physical.String()
}
