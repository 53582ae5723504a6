package scim

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// asScimError normalizes any error returned by a handler or by the engine
// itself into a *errors.ScimError: ScimError values pass through unchanged,
// anything else maps to internalServerError (spec §7 "Unexpected exceptions
// map to internalServerError").
func asScimError(err error) *errors.ScimError {
	if err == nil {
		return nil
	}
	if scimErr, ok := err.(errors.ScimError); ok {
		return &scimErr
	}
	if scimErr, ok := err.(*errors.ScimError); ok {
		return scimErr
	}
	return &errors.ScimError{
		ScimType: errors.TypeInternalServerError,
		Detail:   err.Error(),
		Status:   http.StatusInternalServerError,
	}
}

// errorHandler writes a SCIM ErrorResponse body (RFC 7644 §3.12) for err,
// defaulting to a generic internalServerError when err carries no status.
func errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	scimErr := asScimError(err)
	if scimErr == nil {
		scimErr = &errors.ScimErrorInternalServer
	}
	status := scimErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/scim+json")
	w.WriteHeader(status)
	raw, marshalErr := json.Marshal(scimErr.Response())
	if marshalErr != nil {
		w.Write([]byte(`{"schemas":["urn:ietf:params:scim:api:messages:2.0:Error"],"status":"500","detail":"failed to marshal error"}`))
		return
	}
	w.Write(raw)
}
