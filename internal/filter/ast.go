package filter

import "fmt"

// CompareOp is one of the SCIM filter attribute operators.
type CompareOp string

const (
	OpEqual              CompareOp = "eq"
	OpNotEqual           CompareOp = "ne"
	OpContains           CompareOp = "co"
	OpStartsWith         CompareOp = "sw"
	OpEndsWith           CompareOp = "ew"
	OpGreaterThan        CompareOp = "gt"
	OpGreaterThanOrEqual CompareOp = "ge"
	OpLessThan           CompareOp = "lt"
	OpLessThanOrEqual    CompareOp = "le"
	OpPresent            CompareOp = "pr"
)

// AttrPath identifies an attribute, optionally schema-URN qualified and
// optionally carrying a dotted sub-attribute (e.g. "name.givenName" or
// "urn:ietf:params:scim:schemas:core:2.0:User:userName").
type AttrPath struct {
	Schema        string // URN prefix, "" if absent
	AttributeName string
	SubAttr       string // dotted sub-attribute directly on AttrPath, "" if absent
}

// URI returns the schema URN prefix, or "" if the path was not
// URN-qualified.
func (p AttrPath) URI() string {
	return p.Schema
}

// SubAttributeName returns the dotted sub-attribute name, or "" if absent.
func (p AttrPath) SubAttributeName() string {
	return p.SubAttr
}

func (p AttrPath) String() string {
	s := p.AttributeName
	if p.Schema != "" {
		s = p.Schema + ":" + s
	}
	if p.SubAttr != "" {
		s += "." + p.SubAttr
	}
	return s
}

// Expression is a node of a parsed filter AST.
type Expression interface {
	exprNode()
	String() string
}

// AttrExpr is a leaf comparison: `path op value` or `path pr`.
type AttrExpr struct {
	Path  AttrPath
	Op    CompareOp
	Value interface{} // nil for Op == OpPresent
}

func (AttrExpr) exprNode() {}
func (e AttrExpr) String() string {
	if e.Op == OpPresent {
		return fmt.Sprintf("%s pr", e.Path)
	}
	return fmt.Sprintf("%s %s %v", e.Path, e.Op, e.Value)
}

// NotExpr negates its operand.
type NotExpr struct {
	Expr Expression
}

func (NotExpr) exprNode() {}
func (e NotExpr) String() string {
	return fmt.Sprintf("not (%s)", e.Expr)
}

// LogicalOp is "and" or "or".
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
)

// LogicalExpr combines two sub-expressions.
type LogicalExpr struct {
	Left  Expression
	Op    LogicalOp
	Right Expression
}

func (LogicalExpr) exprNode() {}
func (e LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// ValuePathExpr is the `attr[subExpr]` form: matches if any element of the
// multi-valued attribute at Path satisfies Sub.
type ValuePathExpr struct {
	Path AttrPath
	Sub  Expression
}

func (ValuePathExpr) exprNode() {}
func (e ValuePathExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Path, e.Sub)
}

// Path is a parsed PATCH attribute path (spec §3, §4.3): `attr`,
// `attr.sub`, `attr[filter]`, or `attr[filter].sub`.
type Path struct {
	AttributePath AttrPath
	ValueFilter   Expression // non-nil for the bracketed forms
	SubAttribute  *string    // non-nil for `attr[filter].sub`
}

// SubAttributeName returns the bracket-trailing sub-attribute name, or ""
// if this path has none (it may still carry one on AttributePath itself
// for the unbracketed `attr.sub` form).
func (p Path) SubAttributeName() string {
	if p.SubAttribute == nil {
		return ""
	}
	return *p.SubAttribute
}

func (p Path) String() string {
	s := p.AttributePath.AttributeName
	if p.AttributePath.Schema != "" {
		s = p.AttributePath.Schema + ":" + s
	}
	if p.ValueFilter != nil {
		s += fmt.Sprintf("[%s]", p.ValueFilter)
	}
	if p.AttributePath.SubAttr != "" {
		s += "." + p.AttributePath.SubAttr
	}
	if p.SubAttribute != nil {
		s += "." + *p.SubAttribute
	}
	return s
}
