// Package errors defines the SCIM protocol error catalog (RFC 7644 §3.12)
// and the wire shape of a SCIM error response.
package errors

import "fmt"

// Localizer translates an error detail string into a caller's locale. It is
// consulted by ScimError.Error and by the response formatter; a nil
// Localizer (the default) leaves details untranslated.
type Localizer interface {
	Translate(key string, fallback string) string
}

// ActiveLocalizer is consulted when formatting error details for responses.
// It defaults to nil (no translation). Set it once at startup; it is read
// concurrently by request handlers and must not be mutated afterwards.
var ActiveLocalizer Localizer

// ScimError is the error type returned throughout the engine. It carries
// enough information to be marshaled directly into a SCIM ErrorResponse
// body (RFC 7644 §3.12).
type ScimError struct {
	// ScimType is the detail error keyword, e.g. "invalidFilter".
	ScimType string
	// Detail is a human-readable explanation.
	Detail string
	// Status is the associated HTTP status code.
	Status int
}

func (e ScimError) Error() string {
	detail := e.Detail
	if ActiveLocalizer != nil {
		detail = ActiveLocalizer.Translate(e.ScimType, detail)
	}
	return fmt.Sprintf("scim error: %s (%s)", detail, e.ScimType)
}

// Response returns the RFC 7644 §3.12 wire representation of the error.
func (e ScimError) Response() map[string]interface{} {
	detail := e.Detail
	if ActiveLocalizer != nil {
		detail = ActiveLocalizer.Translate(e.ScimType, detail)
	}
	body := map[string]interface{}{
		"schemas": []string{"urn:ietf:params:scim:api:messages:2.0:Error"},
		"status":  fmt.Sprintf("%d", e.Status),
		"detail":  detail,
	}
	// 5xx responses do not carry a scimType (spec §7).
	if e.ScimType != "" && e.Status < 500 {
		body["scimType"] = e.ScimType
	}
	return body
}

// scimType keywords, RFC 7644 §3.12.
const (
	TypeInvalidFilter        = "invalidFilter"
	TypeTooMany              = "tooMany"
	TypeUniqueness           = "uniqueness"
	TypeMutability           = "mutability"
	TypeInvalidSyntax        = "invalidSyntax"
	TypeInvalidPath          = "invalidPath"
	TypeNoTarget             = "noTarget"
	TypeInvalidValue         = "invalidValue"
	TypeInvalidVers          = "invalidVers"
	TypeSensitive            = "sensitive"
	TypeAuthenticationError  = "authenticationError"
	TypeForbidden            = "forbidden"
	TypeNotFound             = "notFound"
	TypeConflict             = "conflict"
	TypePreconditionFailed   = "preconditionFailed"
	TypeInternalServerError  = "internalServerError"
	TypeDuplicateAttribute   = "invalidValue" // duplicate attrs surface as invalidValue
	TypeAmbiguousAttribute   = "invalidPath"
	TypeInvalidSchema        = "invalidValue"
	TypeInvalidResourceType  = "invalidValue"
)

// Predefined errors mirroring the teacher's catalog, extended to the full
// scimType set named in spec §7.
var (
	ScimErrorInvalidSyntax = ScimError{
		ScimType: TypeInvalidSyntax,
		Detail:   "Request is unparsable, syntactically incorrect, or violates schema.",
		Status:   400,
	}
	ScimErrorInvalidFilter = ScimError{
		ScimType: TypeInvalidFilter,
		Detail:   "The specified filter syntax was invalid, or the specified attribute and filter comparison combination is not supported.",
		Status:   400,
	}
	ScimErrorTooMany = ScimError{
		ScimType: TypeTooMany,
		Detail:   "The specified filter yields more results than the server is willing to calculate or process.",
		Status:   400,
	}
	ScimErrorUniqueness = ScimError{
		ScimType: TypeUniqueness,
		Detail:   "One or more of the attribute values are already in use or are reserved.",
		Status:   409,
	}
	ScimErrorMutability = ScimError{
		ScimType: TypeMutability,
		Detail:   "The attempted modification is not compatible with the target attribute's mutability.",
		Status:   400,
	}
	ScimErrorInvalidPath = ScimError{
		ScimType: TypeInvalidPath,
		Detail:   "The 'path' attribute was invalid or malformed.",
		Status:   400,
	}
	ScimErrorNoTarget = ScimError{
		ScimType: TypeNoTarget,
		Detail:   "The specified 'path' did not yield an attribute or attribute value that could be the target of the operation.",
		Status:   400,
	}
	ScimErrorInvalidValue = ScimError{
		ScimType: TypeInvalidValue,
		Detail:   "A required value was missing, or the value specified was not compatible with the operation or attribute type.",
		Status:   400,
	}
	ScimErrorInvalidVersion = ScimError{
		ScimType: TypeInvalidVers,
		Detail:   "The specified SCIM protocol version is not supported.",
		Status:   400,
	}
	ScimErrorSensitive = ScimError{
		ScimType: TypeSensitive,
		Detail:   "The specified request cannot be completed, due to the passing of sensitive information in a request URI.",
		Status:   400,
	}
	ScimErrorDuplicateAttributeFound = ScimError{
		ScimType: TypeDuplicateAttribute,
		Detail:   "Duplicate attribute found.",
		Status:   400,
	}
	ScimErrorAuthentication = ScimError{
		ScimType: TypeAuthenticationError,
		Detail:   "Authentication failed.",
		Status:   401,
	}
	ScimErrorForbidden = ScimError{
		ScimType: TypeForbidden,
		Detail:   "The caller is not authorized to perform this operation.",
		Status:   403,
	}
	ScimErrorNotFound = ScimError{
		ScimType: TypeNotFound,
		Detail:   "Resource not found.",
		Status:   404,
	}
	ScimErrorConflict = ScimError{
		ScimType: TypeConflict,
		Detail:   "The request could not be completed due to a conflict with the current state of the resource.",
		Status:   409,
	}
	ScimErrorPreconditionFailed = ScimError{
		ScimType: TypePreconditionFailed,
		Detail:   "Failed to update. Resource changed on the server since the provided version.",
		Status:   412,
	}
	ScimErrorNotModified = ScimError{
		ScimType: "",
		Detail:   "Resource has not changed since the provided version.",
		Status:   304,
	}
	ScimErrorInternalServer = ScimError{
		ScimType: "",
		Detail:   "An internal server error occurred.",
		Status:   500,
	}
	ScimErrorNotImplemented = ScimError{
		ScimType: "",
		Detail:   "The requested operation is not implemented.",
		Status:   501,
	}
)

// ScimErrorBadParams builds an invalidSyntax error naming the offending
// query parameters.
func ScimErrorBadParams(params []string) ScimError {
	detail := "Invalid parameters:"
	for i, p := range params {
		if i > 0 {
			detail += ","
		}
		detail += " " + p
	}
	return ScimError{
		ScimType: TypeInvalidSyntax,
		Detail:   detail,
		Status:   400,
	}
}

// InvalidSchema reports a failure registering a Schema definition.
func InvalidSchema(detail string) ScimError {
	return ScimError{ScimType: TypeInvalidSchema, Detail: "Invalid schema: " + detail, Status: 400}
}

// InvalidResourceType reports a failure registering a ResourceType.
func InvalidResourceType(detail string) ScimError {
	return ScimError{ScimType: TypeInvalidResourceType, Detail: "Invalid resource type: " + detail, Status: 400}
}

// AmbiguousAttribute reports two schema extensions resolving the same
// dotted attribute path.
func AmbiguousAttribute(path string) ScimError {
	return ScimError{ScimType: TypeAmbiguousAttribute, Detail: "Ambiguous attribute path: " + path, Status: 400}
}
