package scim

import (
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
	"github.com/nielsvanzon/SCIM-SDK/schema"
)

// resourcesGetHandler implements "GET /{endpoint}" — list via query
// parameters (spec §4.5).
func (s Server) resourcesGetHandler(w http.ResponseWriter, r *http.Request, resourceType ResourceType) {
	params, scimErr := s.parseRequestParams(r)
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}
	s.listAndWrite(w, r, resourceType, params)
}

// resourcesSearchHandler implements "POST /{endpoint}/.search" — list via
// request body (spec §4.5 routing table).
func (s Server) resourcesSearchHandler(w http.ResponseWriter, r *http.Request, resourceType ResourceType) {
	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
		return
	}

	var body struct {
		Filter             string
		SortBy             string
		SortOrder          string
		StartIndex         int
		Count              int
		Attributes         []string
		ExcludedAttributes []string
	}
	if len(data) > 0 {
		if err := unmarshal(data, &body); err != nil {
			errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
			return
		}
	}

	if len(body.Attributes) > 0 && len(body.ExcludedAttributes) > 0 {
		err := errors.ScimError{
			ScimType: errors.TypeInvalidSyntax,
			Detail:   errors.ScimErrorInvalidSyntax.Detail + " \"attributes\" and \"excludedAttributes\" are mutually exclusive.",
			Status:   400,
		}
		errorHandler(w, r, &err)
		return
	}

	params := ListRequestParams{
		Count:              body.Count,
		StartIndex:         body.StartIndex,
		SortBy:             body.SortBy,
		SortOrder:          body.SortOrder,
		Attributes:         body.Attributes,
		ExcludedAttributes: body.ExcludedAttributes,
	}
	if params.Count <= 0 {
		params.Count = s.Config.getItemsPerPage()
	}
	if params.Count > s.Config.getItemsPerPage() {
		params.Count = s.Config.getItemsPerPage()
	}
	if params.StartIndex < 1 {
		params.StartIndex = defaultStartIndex
	}
	if body.Filter != "" {
		expr, err := filter.ParseFilter(body.Filter)
		if err != nil {
			errorHandler(w, r, &errors.ScimErrorInvalidFilter)
			return
		}
		params.Filter = expr
	}

	s.listAndWrite(w, r, resourceType, params)
}

func (s Server) listAndWrite(w http.ResponseWriter, r *http.Request, resourceType ResourceType, params ListRequestParams) {
	page, err := resourceType.Handler.GetAll(r, params)
	if err != nil {
		errorHandler(w, r, err)
		return
	}

	resources := page.Resources
	// Fallback filtering/sorting (spec §4.5): applied only when the
	// handler's result looks like it ignored Filter/SortBy (i.e. every
	// resource was returned) and the set is small enough to do in memory.
	if (params.Filter != nil || params.SortBy != "") && len(page.Resources) == page.TotalResults && page.TotalResults <= s.Config.getItemsPerPage() {
		resources = s.fallbackFilterSort(resourceType, resources, params)
		page.TotalResults = len(resources)
	}

	proj := schema.Projection{Attributes: params.Attributes, ExcludedAttributes: params.ExcludedAttributes}
	docs := make([]map[string]interface{}, 0, len(resources))
	for _, res := range resources {
		doc := resourceType.document(res, s.baseURL(r))
		filtered, scimErr := resourceType.filterResponse(doc, proj)
		if scimErr != nil {
			errorHandler(w, r, scimErr)
			return
		}
		docs = append(docs, filtered)
	}

	resp := listResponse{
		TotalResults: page.TotalResults,
		ItemsPerPage: len(docs),
		StartIndex:   params.StartIndex,
		Resources:    docs,
	}
	w.WriteHeader(http.StatusOK)
	raw, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		errorHandler(w, r, &errors.ScimErrorInternalServer)
		return
	}
	w.Write(raw)
}

func (s Server) fallbackFilterSort(resourceType ResourceType, resources []Resource, params ListRequestParams) []Resource {
	caseExactFor := resourceType.caseExactFor()

	out := make([]Resource, 0, len(resources))
	for _, res := range resources {
		if params.Filter != nil {
			doc := resourceType.document(res, "")
			if !filter.Evaluate(params.Filter, doc, caseExactFor) {
				continue
			}
		}
		out = append(out, res)
	}

	if params.SortBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			vi := sortKey(resourceType, out[i], params.SortBy)
			vj := sortKey(resourceType, out[j], params.SortBy)
			if params.SortOrder == "descending" {
				return vi > vj
			}
			return vi < vj
		})
	}
	return out
}

func sortKey(resourceType ResourceType, res Resource, path string) string {
	doc := resourceType.document(res, "")
	name := path
	if idx := strings.Index(path, "."); idx >= 0 {
		name = path[:idx]
	}
	val, ok := doc[name]
	if !ok {
		for k, v := range doc {
			if strings.EqualFold(k, name) {
				val, ok = v, true
				break
			}
		}
	}
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	raw, _ := json.Marshal(val)
	return string(raw)
}
