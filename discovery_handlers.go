package scim

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// schemasHandler implements "GET /Schemas" (spec §4.5 discovery endpoints).
func (s Server) schemasHandler(w http.ResponseWriter, r *http.Request) {
	schemas := s.getSchemas(r)
	docs := make([]map[string]interface{}, 0, len(schemas))
	for _, sch := range schemas {
		docs = append(docs, sch.ToMap())
	}
	s.writeListDoc(w, r, docs)
}

// schemaHandler implements "GET /Schemas/{id}".
func (s Server) schemaHandler(w http.ResponseWriter, r *http.Request, id string) {
	sch := s.getSchema(id, r)
	if sch.ID == "" {
		errorHandler(w, r, &errors.ScimErrorNotFound)
		return
	}
	s.writeDoc(w, r, sch.ToMap())
}

// resourceTypesHandler implements "GET /ResourceTypes".
func (s Server) resourceTypesHandler(w http.ResponseWriter, r *http.Request) {
	docs := make([]map[string]interface{}, 0, len(s.ResourceTypes))
	for _, rt := range s.ResourceTypes {
		docs = append(docs, rt.getRaw())
	}
	s.writeListDoc(w, r, docs)
}

// resourceTypeHandler implements "GET /ResourceTypes/{id}".
func (s Server) resourceTypeHandler(w http.ResponseWriter, r *http.Request, name string) {
	for _, rt := range s.ResourceTypes {
		if rt.Name == name || rt.ID.Value() == name {
			s.writeDoc(w, r, rt.getRaw())
			return
		}
	}
	errorHandler(w, r, &errors.ScimErrorNotFound)
}

// serviceProviderConfigHandler implements "GET /ServiceProviderConfig".
func (s Server) serviceProviderConfigHandler(w http.ResponseWriter, r *http.Request) {
	s.writeDoc(w, r, s.Config.ToMap())
}

func (s Server) writeDoc(w http.ResponseWriter, r *http.Request, doc map[string]interface{}) {
	raw, err := json.Marshal(doc)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInternalServer)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s Server) writeListDoc(w http.ResponseWriter, r *http.Request, docs []map[string]interface{}) {
	resp := listResponse{
		TotalResults: len(docs),
		ItemsPerPage: len(docs),
		StartIndex:   defaultStartIndex,
		Resources:    docs,
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInternalServer)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
