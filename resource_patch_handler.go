package scim

import (
	"net/http"

	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
)

// resourcePatchHandler implements "PATCH /{endpoint}/{id}" (spec §4.4): the
// request body is validated and parsed into a PatchRequest, applied against
// the stored document by ApplyPatch, and the resulting document
// re-validated as a full resource against the PUT ruleset before being
// persisted through the handler's existing Replace method. ResourceHandler
// implementations never see PATCH semantics directly — the dispatcher owns
// patch application end to end.
func (s Server) resourcePatchHandler(w http.ResponseWriter, r *http.Request, id string, resourceType ResourceType) {
	existing, err := resourceType.Handler.Get(r, id)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	if scimErr := s.checkPreconditions(r, existing.Meta.Version); scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	patchReq, scimErr := resourceType.validatePatch(r)
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	patched, scimErr := ApplyPatch(map[string]interface{}(existing.Attributes), patchReq, resourceType.caseExactFor())
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	attributes, scimErr := resourceType.validateReplaceMap(patched, existing.Attributes, r)
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

// caseExactFor builds the filter.CaseExactFunc used to evaluate value
// filters (e.g. `emails[type eq "work"]`) against this resource type's main
// schema during PATCH application.
func (t ResourceType) caseExactFor() filter.CaseExactFunc {
	main := t.schemaWithCommon()
	return func(path filter.AttrPath) bool {
		attr, ok := main.Attributes.ContainsAttribute(path.AttributeName)
		if !ok {
			return false
		}
		if path.SubAttr != "" {
			if sub, ok := attr.SubAttributes().ContainsAttribute(path.SubAttr); ok {
				return sub.CaseExact()
			}
			return false
		}
		return attr.CaseExact()
	}
}
