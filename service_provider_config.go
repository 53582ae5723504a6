package scim

import "github.com/nielsvanzon/SCIM-SDK/optional"

// defaultItemsPerPage is used when a ServiceProviderConfig's
// FilterMaxResults is left at its zero value.
const defaultItemsPerPage = 100

// FeatureFlag is the {"supported": bool} shape RFC 7643 §5 uses for every
// ServiceProviderConfig capability.
type FeatureFlag struct {
	Supported bool
}

func (f FeatureFlag) toMap() map[string]interface{} {
	return map[string]interface{}{"supported": f.Supported}
}

// ServiceProviderConfig is the process-wide configuration state described in
// spec §3: boolean feature flags plus numeric limits. The dispatcher reads it
// directly from the Server's Config field, which holds it by value, so
// concurrent reads need no locking.
type ServiceProviderConfig struct {
	DocumentationURI optional.String

	// Patch, Bulk, Filter, ChangePassword, Sort, and ETag are the feature
	// flags named in spec §3.
	Patch          FeatureFlag
	Bulk           FeatureFlag
	Filter         FeatureFlag
	ChangePassword FeatureFlag
	Sort           FeatureFlag
	ETag           FeatureFlag

	// FilterMaxResults is "filter.maxResults": the maximum page size the
	// server is willing to compute. 0 is treated as defaultItemsPerPage.
	FilterMaxResults int
	// BulkMaxOperations is "bulk.maxOperations": the maximum number of
	// operations accepted in a single Bulk request.
	BulkMaxOperations int
	// BulkMaxPayloadSize is "bulk.maxPayloadSize" in bytes.
	BulkMaxPayloadSize int

	AuthenticationSchemes []AuthenticationScheme
}

// AuthenticationScheme describes one of the authentication mechanisms the
// service provider supports (RFC 7643 §5).
type AuthenticationScheme struct {
	Type             string
	Name             string
	Description      string
	SpecURI          optional.String
	DocumentationURI optional.String
	Primary          bool
}

func (s AuthenticationScheme) toMap() map[string]interface{} {
	return map[string]interface{}{
		"type":             s.Type,
		"name":             s.Name,
		"description":      s.Description,
		"specUri":          s.SpecURI.Value(),
		"documentationUri": s.DocumentationURI.Value(),
		"primary":          s.Primary,
	}
}

func (c ServiceProviderConfig) getItemsPerPage() int {
	if c.FilterMaxResults <= 0 {
		return defaultItemsPerPage
	}
	return c.FilterMaxResults
}

func (c ServiceProviderConfig) getBulkMaxOperations() int {
	if c.BulkMaxOperations <= 0 {
		return 1000
	}
	return c.BulkMaxOperations
}

// ToMap renders the config as the RFC 7643 §5 ServiceProviderConfig
// resource, for the /ServiceProviderConfig discovery endpoint.
func (c ServiceProviderConfig) ToMap() map[string]interface{} {
	schemes := make([]map[string]interface{}, 0, len(c.AuthenticationSchemes))
	for _, s := range c.AuthenticationSchemes {
		schemes = append(schemes, s.toMap())
	}
	return map[string]interface{}{
		"schemas":               []string{"urn:ietf:params:scim:schemas:core:2.0:ServiceProviderConfig"},
		"documentationUri":      c.DocumentationURI.Value(),
		"patch":                 c.Patch.toMap(),
		"bulk":                  c.Bulk.toMap(),
		"filter":                c.Filter.toMap(),
		"changePassword":        c.ChangePassword.toMap(),
		"sort":                  c.Sort.toMap(),
		"etag":                  c.ETag.toMap(),
		"authenticationSchemes": schemes,
	}
}

// ConfigAccessor is a deferred callback resolving to the ServiceProvider's
// current configuration (design notes, "Suppliers of configuration"). A
// Server always has a concrete ServiceProviderConfig value, but handlers
// that need to consult it away from a request (e.g. at construction time)
// can depend on this narrower interface instead of the whole Server.
type ConfigAccessor interface {
	Config() ServiceProviderConfig
}
