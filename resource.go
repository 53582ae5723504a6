package scim

import "github.com/nielsvanzon/SCIM-SDK/optional"

// ResourceAttributes represents a list of attributes given to, or returned
// by, the various ResourceHandler methods. It is always the already
// request-validated document (spec §4.2): mutability stripping and type
// coercion have already happened by the time a handler sees one.
type ResourceAttributes map[string]interface{}

// ID returns the "id" attribute, or "" if absent.
func (ra ResourceAttributes) ID() string {
	id, _ := ra["id"].(string)
	return id
}

// ExternalID returns the "externalId" attribute.
func (ra ResourceAttributes) ExternalID() optional.String {
	id, ok := ra["externalId"].(string)
	if !ok {
		return optional.String{}
	}
	return optional.NewString(id)
}

// Resource is the value a ResourceHandler returns for a single resource: its
// server-assigned identity plus the attributes that make up its document.
// The dispatcher is responsible for stamping "meta" and "schemas" onto the
// final wire document (spec §3, "Resource document is server-owned").
type Resource struct {
	// ID is the server-assigned, resource-type-unique identifier.
	ID string
	// ExternalID is the caller-supplied identifier, echoed back unchanged.
	ExternalID optional.String
	// Attributes holds every other attribute of the resource.
	Attributes ResourceAttributes
	// Meta carries the parts of "meta" only the handler can know: when the
	// resource was created/modified and its current version/ETag. Location
	// and resourceType are filled in by the dispatcher.
	Meta Meta
}

// Meta is the handler-supplied subset of a resource's "meta" complex
// attribute (spec §3). RFC 3339 timestamps are passed as strings since the
// handler is the one that knows how its store represents them.
type Meta struct {
	Created      string
	LastModified string
	// Version is the resource's opaque ETag value (without surrounding
	// quotes), consulted by the dispatcher's ETag concurrency logic (spec
	// §4.5). An empty Version disables ETag handling for this resource.
	Version string
}
