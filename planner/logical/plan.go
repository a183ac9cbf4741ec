// Package logical defines the logical plan: an immutable, backend-independent
// tree describing what a query computes.
package logical

import (
	"strings"

	"github.com/vegasq/sqlcore/expression"
)

// LogicalPlan is a node of the logical plan tree. Nodes never change after
// construction; ReplaceChildren returns a new node.
type LogicalPlan interface {
	// Children returns the input nodes
	Children() []LogicalPlan
	// ReplaceChildren returns a copy of the node over new inputs
	ReplaceChildren(children []LogicalPlan) LogicalPlan
	// Schema returns the columns the node produces
	Schema() expression.Schema
	// String describes the node without its children
	String() string

	logicalPlan()
}

// Format renders the whole tree, one node per line, children indented
func Format(p LogicalPlan) string {
	var sb strings.Builder
	format(&sb, p, 0)
	return sb.String()
}

func format(sb *strings.Builder, p LogicalPlan, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(p.String())
	sb.WriteByte('\n')
	for _, c := range p.Children() {
		format(sb, c, depth+1)
	}
}

// Equal reports whether two trees describe the same computation
func Equal(a, b LogicalPlan) bool {
	return Format(a) == Format(b)
}

// Walk calls fn on every node, parents first
func Walk(p LogicalPlan, fn func(LogicalPlan)) {
	fn(p)
	for _, c := range p.Children() {
		Walk(c, fn)
	}
}

func joinExprs(exprs []expression.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func schemaOf(exprs []expression.Expression) expression.Schema {
	schema := make(expression.Schema, len(exprs))
	for i, e := range exprs {
		schema[i] = expression.Column{Name: expression.OutputName(e), Type: e.Type()}
	}
	return schema
}
