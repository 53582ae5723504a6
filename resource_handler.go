package scim

import (
	"net/http"

	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
)

// ListRequestParams carries the already-parsed and clamped list/query
// parameters of a GET/.search request (spec §4.5).
type ListRequestParams struct {
	// Count is the requested page size, already clamped to the
	// ServiceProviderConfig's filter.maxResults.
	Count int
	// StartIndex is the 1-based offset of the first result, already
	// clamped to be >= 1.
	StartIndex int
	// Filter is the parsed filter expression, or nil if none was supplied.
	Filter filter.Expression
	// SortBy is the dotted attribute path to sort by, or "" for unsorted.
	SortBy string
	// SortOrder is "ascending" or "descending"; "" means unspecified
	// (handlers should treat it as ascending).
	SortOrder string
	// Attributes and ExcludedAttributes mirror the request's attribute
	// projection query parameters; handlers may use them to avoid loading
	// attributes that will be stripped anyway, but are not required to.
	Attributes         []string
	ExcludedAttributes []string
}

// PartialListResponse is a single page of a list/query operation: the
// resources for this page plus the total number of matches across all
// pages (spec §4.5).
type PartialListResponse struct {
	TotalResults int
	Resources    []Resource
}

// ResourceHandler connects the dispatcher to a provider-supplied backing
// store for one ResourceType (spec §6). Implementations are called
// concurrently for the same or different ids and are responsible for their
// own consistency; the core does no per-id locking (spec §5).
type ResourceHandler interface {
	// Create stores a new resource built from attributes and returns it
	// with its server-assigned id and meta populated.
	Create(r *http.Request, attributes ResourceAttributes) (Resource, error)
	// Get returns the resource identified by id.
	Get(r *http.Request, id string) (Resource, error)
	// GetAll returns one page of the resources matching params. Handlers
	// may ignore Filter/SortBy/SortOrder; the dispatcher falls back to an
	// in-memory pass when the returned page looks unfiltered/unsorted and
	// the total result set is small enough (spec §4.5).
	GetAll(r *http.Request, params ListRequestParams) (PartialListResponse, error)
	// Replace overwrites the resource identified by id with attributes and
	// returns the new state.
	Replace(r *http.Request, id string, attributes ResourceAttributes) (Resource, error)
	// Delete removes the resource identified by id.
	Delete(r *http.Request, id string) error
}

// RequestValidator is consulted after schema validation and before the
// handler call, and may add contextual errors a generic schema cannot know
// about, e.g. cross-resource uniqueness (spec §6).
type RequestValidator interface {
	Validate(r *http.Request, attributes ResourceAttributes) error
}

// RequestValidatorProvider is implemented by a ResourceHandler that wants to
// supply a RequestValidator. It is optional; a handler that does not
// implement it is treated as having no extra validation.
type RequestValidatorProvider interface {
	GetRequestValidator() RequestValidator
}

// PostConstructor is implemented by a ResourceHandler that wants a callback
// once its owning ResourceType has finished registration (spec §6).
type PostConstructor interface {
	PostConstruct(resourceType ResourceType)
}

func requestValidatorFor(h ResourceHandler) RequestValidator {
	if p, ok := h.(RequestValidatorProvider); ok {
		return p.GetRequestValidator()
	}
	return nil
}
