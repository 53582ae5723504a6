package schema

import (
	"strings"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// Projection controls which attributes survive response-direction
// filtering (spec §4.2 item 6): at most one of Attributes or
// ExcludedAttributes may be set, each a dotted-path list, and
// RequestFields names the attributes the client explicitly supplied in
// its request body (consulted for `returned=request`).
type Projection struct {
	Attributes         []string
	ExcludedAttributes []string
	RequestFields      map[string]bool
}

func (p Projection) includes(name string) bool {
	if len(p.Attributes) == 0 {
		return true
	}
	for _, a := range p.Attributes {
		if strings.EqualFold(a, name) || strings.HasPrefix(strings.ToLower(a), strings.ToLower(name)+".") {
			return true
		}
	}
	return false
}

func (p Projection) excludes(name string) bool {
	for _, a := range p.ExcludedAttributes {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

func (p Projection) requested(name string) bool {
	if len(p.Attributes) > 0 {
		return p.includes(name)
	}
	return p.RequestFields[strings.ToLower(name)]
}

// FilterReturned applies the "returned" policy and the attributes/
// excludedAttributes projection to an already-validated response document,
// dropping attributes per spec §4.2 item 6 and failing if a required
// attribute that the "returned" policy and projection keep is absent or
// null in the document (spec §4.2 item 4). A required attribute dropped by
// the projection does not fail.
func (s Schema) FilterReturned(resource map[string]interface{}, proj Projection) (map[string]interface{}, *errors.ScimError) {
	out := make(map[string]interface{})
	for _, attr := range s.Attributes {
		val, present := lookupFold(resource, attr.name)

		keep := false
		switch attr.returned {
		case attributeReturnedNever:
			keep = false
		case attributeReturnedAlways:
			keep = true
		case attributeReturnedRequest:
			keep = proj.requested(attr.name)
		default: // attributeReturnedDefault
			keep = proj.includes(attr.name) && !proj.excludes(attr.name)
		}

		if !keep || !present || val == nil {
			if attr.required && attr.returned != attributeReturnedNever && keep {
				err := errors.ScimError{
					ScimType: errors.TypeInvalidValue,
					Detail:   errors.ScimErrorInvalidValue.Detail + " Required attribute missing from response: " + attr.name,
					Status:   500,
				}
				return nil, &err
			}
			continue
		}

		out[attr.name] = val
	}
	return out, nil
}

func lookupFold(m map[string]interface{}, name string) (interface{}, bool) {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// StripWriteOnly removes every writeOnly attribute from a response
// document; writeOnly attributes are never emitted (spec §4.2 item 5).
func (s Schema) StripWriteOnly(resource map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(resource))
	for k, v := range resource {
		out[k] = v
	}
	for _, attr := range s.Attributes {
		if attr.mutability == attributeMutabilityWriteOnly {
			delete(out, attr.name)
			for k := range out {
				if strings.EqualFold(k, attr.name) {
					delete(out, k)
				}
			}
		}
	}
	return out
}
