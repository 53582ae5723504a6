package scim

import (
	"fmt"
	"strings"
)

// document assembles the final wire-format resource map: the resource's
// schemas (main schema plus any extension URNs actually present),
// server-assigned id/externalId, server-owned meta, and every other
// attribute (spec §3: "the meta is server-owned; clients may not set it;
// the dispatcher overwrites it on every response").
func (t ResourceType) document(res Resource, baseURL string) map[string]interface{} {
	schemas := []string{t.Schema.ID}
	out := make(map[string]interface{}, len(res.Attributes)+4)

	for k, v := range res.Attributes {
		if k == t.Schema.ID {
			continue
		}
		isExtension := false
		for _, ext := range t.SchemaExtensions {
			if strings.EqualFold(k, ext.Schema.ID) {
				isExtension = true
				break
			}
		}
		if isExtension {
			if m, ok := v.(map[string]interface{}); ok && len(m) > 0 {
				schemas = append(schemas, k)
			}
		}
		out[k] = v
	}

	out["schemas"] = schemas
	out["id"] = res.ID
	if res.ExternalID.Present() {
		out["externalId"] = res.ExternalID.Value()
	}
	out["meta"] = t.metaMap(res, baseURL)
	return out
}

func (t ResourceType) metaMap(res Resource, baseURL string) map[string]interface{} {
	m := map[string]interface{}{
		"resourceType": t.Name,
		"location":     fmt.Sprintf("%s%s/%s", strings.TrimSuffix(baseURL, "/"), t.Endpoint, res.ID),
	}
	if res.Meta.Created != "" {
		m["created"] = res.Meta.Created
	}
	if res.Meta.LastModified != "" {
		m["lastModified"] = res.Meta.LastModified
	}
	if res.Meta.Version != "" {
		m["version"] = quoteETag(res.Meta.Version)
	}
	return m
}

// quoteETag wraps an opaque version token in the double quotes RFC 7232
// requires of an entity-tag, unless it is already quoted.
func quoteETag(version string) string {
	if strings.HasPrefix(version, `"`) && strings.HasSuffix(version, `"`) {
		return version
	}
	return `"` + version + `"`
}

func unquoteETag(etag string) string {
	return strings.Trim(strings.TrimSpace(etag), `"`)
}
