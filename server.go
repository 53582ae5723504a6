package scim

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"time"

	charmlog "charm.land/log/v2"

	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
	"github.com/nielsvanzon/SCIM-SDK/metrics"
	"github.com/nielsvanzon/SCIM-SDK/schema"
)

const (
	defaultStartIndex = 1
	fallbackCount     = 100
)

func getFilter(r *http.Request) (filter.Expression, error) {
	rawFilter := strings.TrimSpace(r.URL.Query().Get("filter"))
	decodedFilter, _ := url.QueryUnescape(rawFilter)
	if decodedFilter != "" {
		return filter.ParseFilter(decodedFilter)
	}
	return nil, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func getIntQueryParam(r *http.Request, key string, def int) (int, error) {
	strVal := r.URL.Query().Get(key)

	if strVal == "" {
		return def, nil
	}

	if intVal, err := strconv.Atoi(strVal); err == nil {
		return intVal, nil
	}

	return 0, fmt.Errorf("invalid query parameter, \"%s\" must be an integer", key)
}

func parseIdentifier(path, endpoint string) (string, error) {
	return url.PathUnescape(strings.TrimPrefix(path, endpoint+"/"))
}

// Server represents a SCIM server which implements the HTTP-based SCIM protocol that makes managing identities in multi-
// domain scenarios easier to support via a standardized service.
type Server struct {
	Config        ServiceProviderConfig
	Prefix        string
	ResourceTypes []ResourceType
	// BaseURL is prefixed onto every "meta.location" and "Location" header.
	// It defaults to "" (relative locations) when unset.
	BaseURL string
	// Logger receives one structured log line per executed Bulk operation
	// (method, path, bulkId). A nil Logger is treated as a discard logger;
	// nothing is logged.
	Logger *charmlog.Logger
	// Metrics, when set, is fed one observation per request (spec's
	// ambient-stack expansion): a requests_total counter and a
	// request_duration_seconds histogram, both labeled by resource and
	// method. A nil Metrics disables instrumentation entirely.
	Metrics *metrics.Metrics
}

// statusRecorder wraps a ResponseWriter to capture the status code written,
// for metrics purposes only.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// resourceLabel derives the metrics "resource" label from a request path
// already stripped of the server's Prefix: its first path segment, or
// "root" for "/".
func resourceLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "root"
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

func (s Server) baseURL(r *http.Request) string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + s.Prefix
}

// log emits a structured log line through s.Logger, falling back to a
// no-op when no logger was configured (charm.land/log/v2's zero value is
// not itself nil-safe as a *Logger, so the nil check happens here).
func (s Server) log(msg string, keyvals ...interface{}) {
	if s.Logger == nil {
		return
	}
	s.Logger.Info(msg, keyvals...)
}

// ServeHTTP dispatches the request to the handler whose pattern most closely matches the request URL, then records
// a metrics.Metrics observation (if s.Metrics is set) for the completed request.
func (s Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		s.dispatch(w, r)
		return
	}
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w}
	s.dispatch(rec, r)
	path := strings.TrimPrefix(r.URL.Path, s.Prefix)
	s.Metrics.Observe(resourceLabel(path), r.Method, rec.status, time.Since(start))
}

// dispatch is ServeHTTP's routing table, split out so metrics instrumentation can wrap it uniformly.
func (s Server) dispatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/scim+json")

	path := strings.TrimPrefix(r.URL.Path, s.Prefix)

	switch {
	case path == "/Me":
		errorHandler(w, r, &errors.ScimError{
			Status: http.StatusNotImplemented,
		})
		return
	case path == "/Schemas" && r.Method == http.MethodGet:
		s.schemasHandler(w, r)
		return
	case strings.HasPrefix(path, "/Schemas/") && r.Method == http.MethodGet:
		s.schemaHandler(w, r, strings.TrimPrefix(path, "/Schemas/"))
		return
	case path == "/ResourceTypes" && r.Method == http.MethodGet:
		s.resourceTypesHandler(w, r)
		return
	case strings.HasPrefix(path, "/ResourceTypes/") && r.Method == http.MethodGet:
		s.resourceTypeHandler(w, r, strings.TrimPrefix(path, "/ResourceTypes/"))
		return
	case path == "/ServiceProviderConfig":
		s.serviceProviderConfigHandler(w, r)
		return
	case path == "/Bulk" && r.Method == http.MethodPost:
		if !s.Config.Bulk.Supported {
			errorHandler(w, r, &errors.ScimErrorNotImplemented)
			return
		}
		s.bulkHandler(w, r)
		return
	case path == "/":
		// For Azure AD testing connectivity - it expects a 200 at the root
		w.WriteHeader(200)
		w.Write([]byte("OK"))
		return
	}

	for _, resourceType := range s.ResourceTypes {
		if path == resourceType.Endpoint {
			switch r.Method {
			case http.MethodPost:
				s.resourcePostHandler(w, r, resourceType)
				return
			case http.MethodGet:
				s.resourcesGetHandler(w, r, resourceType)
				return
			}
		}

		if path == resourceType.Endpoint+"/.search" && r.Method == http.MethodPost {
			s.resourcesSearchHandler(w, r, resourceType)
			return
		}

		if strings.HasPrefix(path, resourceType.Endpoint+"/") {
			id, err := parseIdentifier(path, resourceType.Endpoint)
			if err != nil {
				break
			}

			switch r.Method {
			case http.MethodGet:
				s.resourceGetHandler(w, r, id, resourceType)
				return
			case http.MethodPut:
				s.resourcePutHandler(w, r, id, resourceType)
				return
			case http.MethodPatch:
				s.resourcePatchHandler(w, r, id, resourceType)
				return
			case http.MethodDelete:
				s.resourceDeleteHandler(w, r, id, resourceType)
				return
			}
		}
	}

	errorHandler(w, r, &errors.ScimError{
		Detail: "Specified endpoint does not exist.",
		Status: http.StatusNotFound,
	})
}

// getSchema extracts the schemas from the resources types defined in the server with given id.
func (s Server) getSchema(id string, r *http.Request) schema.Schema {
	for _, resourceType := range s.ResourceTypes {
		if resourceType.Schema.ID == id {
			return resourceType.Schema
		}
		for _, extension := range resourceType.SchemaExtensions {
			if extension.Schema.ID == id {
				if extension.LoadDynamically {
					return extension.SchemaLoader.LoadSchema(r)
				} else {
					return extension.Schema
				}
			}
		}
	}
	return schema.Schema{}
}

// getSchemas extracts all the schemas from the resources types defined in the server. Duplicate IDs will be ignored.
func (s Server) getSchemas(r *http.Request) []schema.Schema {
	ids := make([]string, 0)
	schemas := make([]schema.Schema, 0)
	for _, resourceType := range s.ResourceTypes {
		if !contains(ids, resourceType.Schema.ID) {
			schemas = append(schemas, resourceType.Schema)
		}
		ids = append(ids, resourceType.Schema.ID)
		for _, extension := range resourceType.SchemaExtensions {
			if !contains(ids, extension.Schema.ID) {
				if extension.LoadDynamically {
					schemas = append(schemas, extension.SchemaLoader.LoadSchema(r))
				} else {
					schemas = append(schemas, extension.Schema)
				}
			}
			ids = append(ids, extension.Schema.ID)
		}
	}
	return schemas
}

func (s Server) parseRequestParams(r *http.Request) (ListRequestParams, *errors.ScimError) {
	invalidParams := make([]string, 0)

	defaultCount := s.Config.getItemsPerPage()
	count, countErr := getIntQueryParam(r, "count", defaultCount)
	if countErr != nil {
		invalidParams = append(invalidParams, "count")
	}
	if count > defaultCount {
		// Ensure the count isn't more then the allowable max.
		count = defaultCount
	}
	if count < 0 {
		// A negative value shall be interpreted as 0.
		count = 0
	}

	startIndex, indexErr := getIntQueryParam(r, "startIndex", defaultStartIndex)
	if indexErr != nil {
		invalidParams = append(invalidParams, "startIndex")
	}
	if startIndex < 1 {
		startIndex = defaultStartIndex
	}

	if len(invalidParams) > 1 {
		scimErr := errors.ScimErrorBadParams(invalidParams)
		return ListRequestParams{}, &scimErr
	}

	if scimErr := projectionConflict(r); scimErr != nil {
		return ListRequestParams{}, scimErr
	}

	if !s.Config.Filter.Supported && strings.TrimSpace(r.URL.Query().Get("filter")) != "" {
		err := errors.ScimErrorNotImplemented
		return ListRequestParams{}, &err
	}

	filterExpr, filterExprErr := getFilter(r)
	if filterExprErr != nil {
		return ListRequestParams{}, &errors.ScimErrorInvalidFilter
	}

	sortOrder := r.URL.Query().Get("sortOrder")
	if sortOrder != "" && sortOrder != "ascending" && sortOrder != "descending" {
		invalidParams = append(invalidParams, "sortOrder")
	}

	return ListRequestParams{
		Count:              count,
		Filter:             filterExpr,
		StartIndex:         startIndex,
		SortBy:             r.URL.Query().Get("sortBy"),
		SortOrder:          sortOrder,
		Attributes:         splitCommaList(r.URL.Query().Get("attributes")),
		ExcludedAttributes: splitCommaList(r.URL.Query().Get("excludedAttributes")),
	}, nil
}
