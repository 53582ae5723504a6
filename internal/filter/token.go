package filter

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdentifier
	tokString
	tokNumber
	tokBool
	tokNull
	tokAnd
	tokOr
	tokNot
	tokCompareOp
	tokPresentOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokDot
)

type token struct {
	kind tokenKind
	text string
	// column is the 1-based column of the first rune of the token, used to
	// report InvalidFilter errors with useful positions (spec §4.3).
	column int
}

func (t token) String() string {
	return fmt.Sprintf("%q@%d", t.text, t.column)
}

var compareOps = map[string]bool{
	"eq": true, "ne": true, "co": true, "sw": true,
	"ew": true, "gt": true, "ge": true, "lt": true, "le": true,
}
