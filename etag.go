package scim

import (
	"net/http"
	"strings"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// checkPreconditions implements the ETag concurrency rules of spec §4.5: if
// the ServiceProviderConfig advertises etag support and the resource carries
// a version, "If-Match"/"If-None-Match" are honored per RFC 7232. It returns
// a non-nil error when the request must be rejected (412) or short-circuited
// (304, signaled via ScimErrorNotModified).
func (s Server) checkPreconditions(r *http.Request, version string) *errors.ScimError {
	if !s.Config.ETag.Supported || version == "" {
		return nil
	}
	current := unquoteETag(version)

	if ifMatch := r.Header.Get("If-Match"); ifMatch != "" {
		if !etagMatchesAny(ifMatch, current) {
			err := errors.ScimErrorPreconditionFailed
			return &err
		}
	}
	if ifNoneMatch := r.Header.Get("If-None-Match"); ifNoneMatch != "" {
		if etagMatchesAny(ifNoneMatch, current) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				err := errors.ScimErrorNotModified
				return &err
			}
			err := errors.ScimErrorPreconditionFailed
			return &err
		}
	}
	return nil
}

func etagMatchesAny(header, current string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if unquoteETag(strings.TrimSpace(candidate)) == current {
			return true
		}
	}
	return false
}

func setETagHeader(w http.ResponseWriter, version string) {
	if version == "" {
		return
	}
	w.Header().Set("ETag", quoteETag(version))
}
