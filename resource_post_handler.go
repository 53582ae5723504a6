package scim

import (
	"io/ioutil"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// resourcePostHandler implements "POST /{endpoint}" (spec §4.5 routing
// table): validate the request document against the resource type's
// schema(s), run any RequestValidator, call the handler, then validate and
// project the response document before writing it back.
func (s Server) resourcePostHandler(w http.ResponseWriter, r *http.Request, resourceType ResourceType) {
	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
		return
	}

	attributes, scimErr := resourceType.validate(data, http.MethodPost, r)
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	if rv := requestValidatorFor(resourceType.Handler); rv != nil {
		if err := rv.Validate(r, attributes); err != nil {
			errorHandler(w, r, err)
			return
		}
	}

	created, err := resourceType.Handler.Create(r, attributes)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	s.writeResource(w, r, resourceType, created, http.StatusCreated)
}

// writeResource projects, validates (response direction), and writes a
// single resource document, setting Location and (when applicable) ETag.
func (s Server) writeResource(w http.ResponseWriter, r *http.Request, resourceType ResourceType, res Resource, status int) {
	doc := resourceType.document(res, s.baseURL(r))

	proj := projectionFromQuery(r)
	filtered, scimErr := resourceType.filterResponse(doc, proj)
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	w.Header().Set("Location", stringFromMap(filtered["meta"], "location"))
	if res.Meta.Version != "" {
		setETagHeader(w, res.Meta.Version)
	}
	w.WriteHeader(status)
	raw, err := json.Marshal(filtered)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInternalServer)
		return
	}
	w.Write(raw)
}

func stringFromMap(v interface{}, key string) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
