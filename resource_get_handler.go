package scim

import (
	"net/http"
)

// resourceGetHandler implements "GET /{endpoint}/{id}" (spec §4.5).
func (s Server) resourceGetHandler(w http.ResponseWriter, r *http.Request, id string, resourceType ResourceType) {
	res, err := resourceType.Handler.Get(r, id)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	if scimErr := s.checkPreconditions(r, res.Meta.Version); scimErr != nil {
		if scimErr.Status == http.StatusNotModified {
			setETagHeader(w, res.Meta.Version)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		errorHandler(w, r, scimErr)
		return
	}

	if scimErr := projectionConflict(r); scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	s.writeResource(w, r, resourceType, res, http.StatusOK)
}

// resourceDeleteHandler implements "DELETE /{endpoint}/{id}" (spec §4.5).
func (s Server) resourceDeleteHandler(w http.ResponseWriter, r *http.Request, id string, resourceType ResourceType) {
	if s.Config.ETag.Supported {
		if existing, err := resourceType.Handler.Get(r, id); err == nil {
			if scimErr := s.checkPreconditions(r, existing.Meta.Version); scimErr != nil {
				errorHandler(w, r, scimErr)
				return
			}
		}
	}

	if err := resourceType.Handler.Delete(r, id); err != nil {
		errorHandler(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
