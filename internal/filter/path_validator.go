package filter

import (
	"strings"

	"github.com/nielsvanzon/SCIM-SDK/schema"
)

// PathValidator checks a parsed PATCH path against a resource's schema
// (and its extensions), confirming every named attribute and sub-attribute
// actually exists before the path is used to mutate a document.
type PathValidator struct {
	raw        string
	path       Path
	mainSchema schema.Schema
	extensions []schema.Schema
	parseErr   error
}

// NewPathValidator parses rawPath and binds it to mainSchema and any schema
// extensions, mirroring the shape consumed by resource_type.go's
// validatePatch.
func NewPathValidator(rawPath string, mainSchema schema.Schema, extensions ...schema.Schema) (*PathValidator, error) {
	v := &PathValidator{raw: rawPath, mainSchema: mainSchema, extensions: extensions}
	if strings.TrimSpace(rawPath) == "" {
		return v, nil
	}
	path, err := ParsePath(rawPath)
	if err != nil {
		v.parseErr = err
		return v, err
	}
	v.path = path
	return v, nil
}

// Path returns the parsed path. Only meaningful once Validate has
// succeeded (or the raw path was empty).
func (v *PathValidator) Path() Path {
	return v.path
}

func (v *PathValidator) schemaFor(uri string) (schema.Schema, bool) {
	if uri == "" || strings.EqualFold(uri, v.mainSchema.ID) {
		return v.mainSchema, true
	}
	for _, ext := range v.extensions {
		if strings.EqualFold(uri, ext.ID) {
			return ext, true
		}
	}
	return schema.Schema{}, false
}

// Validate confirms the path's attribute (and sub-attribute, if any) is
// defined by the bound schema/extensions.
func (v *PathValidator) Validate() error {
	if v.parseErr != nil {
		return v.parseErr
	}
	if strings.TrimSpace(v.raw) == "" {
		return nil
	}

	s, ok := v.schemaFor(v.path.AttributePath.URI())
	if !ok {
		return &SyntaxError{Msg: "unknown schema for path " + v.raw}
	}

	attr, ok := s.Attributes.ContainsAttribute(v.path.AttributePath.AttributeName)
	if !ok {
		return &SyntaxError{Msg: "unknown attribute " + v.path.AttributePath.AttributeName + " in path " + v.raw}
	}

	subName := v.path.AttributePath.SubAttributeName()
	if subName == "" {
		subName = v.path.SubAttributeName()
	}
	if subName != "" {
		if _, ok := attr.SubAttributes().ContainsAttribute(subName); !ok {
			return &SyntaxError{Msg: "unknown sub-attribute " + subName + " on " + attr.Name()}
		}
	}

	if v.path.ValueFilter != nil {
		if !attr.MultiValued() && !attr.HasSubAttributes() {
			return &SyntaxError{Msg: "value filter applied to non-multiValued attribute " + attr.Name()}
		}
	}

	return nil
}
