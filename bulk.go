package scim

import (
	"regexp"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// bulkOperation is a single entry of a Bulk request's Operations array
// (spec §4.6).
type bulkOperation struct {
	Method  string
	Path    string
	BulkID  string
	Data    interface{}
	Version string
}

// bulkRequest is the parsed body of "POST /Bulk" (spec §4.6).
type bulkRequest struct {
	Schemas      []string
	FailOnErrors int
	Operations   []bulkOperation
}

// bulkOperationResult is one entry of a BulkResponse's Operations array.
type bulkOperationResult struct {
	Method   string
	BulkID   string
	Location string
	Status   string
	Response map[string]interface{}
}

var bulkIDRefPattern = regexp.MustCompile(`bulkId:([^"'\s/\]]+)`)

// bulkGraph resolves the execution order of a Bulk request's operations by
// the bulkId forward references each one's Path/Data may contain (spec
// §4.6): "the processor builds a dependency graph and executes in
// topological order; cycles fail the entire bulk with InvalidSyntax."
type bulkGraph struct {
	order []int
}

// referencedBulkIDs returns every `bulkId:XYZ` token found in op's Path and
// (stringified) Data.
func referencedBulkIDs(op bulkOperation, raw string) []string {
	text := op.Path + " " + raw
	matches := bulkIDRefPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// topoSortBulk orders ops so that every operation referencing another
// operation's bulkId runs after it. rawData supplies the marshaled form of
// each operation's Data (the caller already has it for substitution) so
// this function does not need to re-encode it.
func topoSortBulk(ops []bulkOperation, rawData []string) ([]int, *errors.ScimError) {
	n := len(ops)
	bulkIDToIndex := make(map[string]int, n)
	for i, op := range ops {
		if op.BulkID != "" {
			bulkIDToIndex[op.BulkID] = i
		}
	}

	deps := make([][]int, n)
	for i, op := range ops {
		for _, ref := range referencedBulkIDs(op, rawData[i]) {
			if j, ok := bulkIDToIndex[ref]; ok && j != i {
				deps[i] = append(deps[i], j)
			}
			// Unknown references are not a graph-construction error; they
			// fail only the referencing operation, at substitution time.
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	order := make([]int, 0, n)

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		for _, j := range deps[i] {
			switch color[j] {
			case gray:
				return false // cycle
			case white:
				if !visit(j) {
					return false
				}
			}
		}
		color[i] = black
		order = append(order, i)
		return true
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			if !visit(i) {
				err := errors.ScimError{
					ScimType: errors.TypeInvalidSyntax,
					Detail:   errors.ScimErrorInvalidSyntax.Detail + " Bulk operations contain a circular bulkId reference.",
					Status:   400,
				}
				return nil, &err
			}
		}
	}

	return order, nil
}

// substituteString replaces every `bulkId:XYZ` token in s with its
// resolved id, appending XYZ to *missing when no resolution is on record
// yet (spec §4.6: "forward references to unknown bulkIds fail that single
// operation with InvalidValue").
func substituteString(s string, resolved map[string]string, missing *[]string) string {
	return bulkIDRefPattern.ReplaceAllStringFunc(s, func(tok string) string {
		m := bulkIDRefPattern.FindStringSubmatch(tok)
		id, ok := resolved[m[1]]
		if !ok {
			*missing = append(*missing, m[1])
			return tok
		}
		return id
	})
}

// substituteValue walks a decoded JSON value, rewriting bulkId references
// found in every string leaf.
func substituteValue(v interface{}, resolved map[string]string, missing *[]string) interface{} {
	switch t := v.(type) {
	case string:
		return substituteString(t, resolved, missing)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, vv := range t {
			out[k] = substituteValue(vv, resolved, missing)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, vv := range t {
			out[i] = substituteValue(vv, resolved, missing)
		}
		return out
	default:
		return v
	}
}
