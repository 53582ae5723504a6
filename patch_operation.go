package scim

import "github.com/nielsvanzon/SCIM-SDK/internal/filter"

// PATCH operation kinds, RFC 7644 §3.5.2.
const (
	PatchOperationAdd     = "add"
	PatchOperationReplace = "replace"
	PatchOperationRemove  = "remove"
)

// PatchOperation is a single, already-validated entry of a PatchRequest. Path
// is nil for the "no path" forms of add/replace (spec §4.4).
type PatchOperation struct {
	Op    string
	Path  *filter.Path
	Value interface{}
}

// PatchRequest is a parsed and validated RFC 7644 §3.5.2 PATCH body.
type PatchRequest struct {
	Schemas    []string
	Operations []PatchOperation
}
