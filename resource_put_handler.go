package scim

import (
	"io/ioutil"
	"net/http"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// resourcePutHandler implements "PUT /{endpoint}/{id}" (spec §4.5): the
// whole resource is replaced, with immutable attributes checked against the
// stored version (spec §4.2 item 5) and ETag preconditions honored (spec
// §4.5).
func (s Server) resourcePutHandler(w http.ResponseWriter, r *http.Request, id string, resourceType ResourceType) {
	existing, err := resourceType.Handler.Get(r, id)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	if scimErr := s.checkPreconditions(r, existing.Meta.Version); scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
		return
	}

	attributes, scimErr := resourceType.validateReplace(data, existing.Attributes, r)
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

	replaced, err := resourceType.Handler.Replace(r, id, attributes)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	s.writeResource(w, r, resourceType, replaced, http.StatusOK)
}
