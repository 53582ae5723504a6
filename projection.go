package scim

import (
	"net/http"
	"strings"

	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/schema"
)

// projectionFromQuery reads the "attributes"/"excludedAttributes" query
// parameters (spec §4.5): comma-separated dotted paths, mutually exclusive.
func projectionFromQuery(r *http.Request) schema.Projection {
	attrs := splitCommaList(r.URL.Query().Get("attributes"))
	excluded := splitCommaList(r.URL.Query().Get("excludedAttributes"))
	return schema.Projection{Attributes: attrs, ExcludedAttributes: excluded}
}

func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// projectionConflict reports the InvalidSyntax error spec §4.5 requires when
// both "attributes" and "excludedAttributes" are set.
func projectionConflict(r *http.Request) *errors.ScimError {
	if r.URL.Query().Get("attributes") != "" && r.URL.Query().Get("excludedAttributes") != "" {
		err := errors.ScimError{
			ScimType: errors.TypeInvalidSyntax,
			Detail:   errors.ScimErrorInvalidSyntax.Detail + " \"attributes\" and \"excludedAttributes\" are mutually exclusive.",
			Status:   400,
		}
		return &err
	}
	return nil
}

// filterResponse applies spec §4.2 item 6 and item 7-adjacent extension
// handling to a full resource document: the main schema's "returned" policy
// and attribute projection, then the same per extension, each confined to
// its own URN-keyed sub-object, and finally writeOnly stripping.
func (t ResourceType) filterResponse(doc map[string]interface{}, proj schema.Projection) (map[string]interface{}, *errors.ScimError) {
	main := t.schemaWithCommon()

	reqFields := make(map[string]bool, len(doc))
	for k := range doc {
		reqFields[strings.ToLower(k)] = true
	}
	proj.RequestFields = reqFields

	filtered, scimErr := main.FilterReturned(doc, proj)
	if scimErr != nil {
		return nil, scimErr
	}
	filtered = main.StripWriteOnly(filtered)

	for _, ext := range t.SchemaExtensions {
		raw, ok := doc[ext.Schema.ID]
		if !ok {
			continue
		}
		extDoc, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		extFiltered, scimErr := ext.Schema.FilterReturned(extDoc, proj)
		if scimErr != nil {
			return nil, scimErr
		}
		filtered[ext.Schema.ID] = ext.Schema.StripWriteOnly(extFiltered)
	}

	// schemas/id/meta are always present regardless of projection; the
	// dispatcher, not the schema's "returned" policy, owns them.
	filtered["schemas"] = doc["schemas"]
	filtered["id"] = doc["id"]
	filtered["meta"] = doc["meta"]
	if v, ok := doc["externalId"]; ok {
		filtered["externalId"] = v
	}
	return filtered, nil
}
