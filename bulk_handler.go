package scim

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

// bulkHandler implements "POST /Bulk" (spec §4.6): it resolves bulkId
// forward references into a topological execution order, then replays
// each operation through the dispatcher's routing table (dispatch, not the
// metrics-instrumented ServeHTTP), so every Bulk-wrapped operation gets
// exactly the validation, projection, and ETag handling a standalone
// request would.
func (s Server) bulkHandler(w http.ResponseWriter, r *http.Request) {
	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
		return
	}
	if max := s.Config.BulkMaxPayloadSize; max > 0 && len(data) > max {
		err := errors.ScimError{Status: http.StatusRequestEntityTooLarge, Detail: "Bulk request payload exceeds the server's maximum."}
		errorHandler(w, r, &err)
		return
	}

	var req bulkRequest
	if err := unmarshal(data, &req); err != nil {
		errorHandler(w, r, &errors.ScimErrorInvalidSyntax)
		return
	}
	if len(req.Operations) == 0 {
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Zero operations found in Bulk request body.",
			Status:   400,
		}
		errorHandler(w, r, &err)
		return
	}
	if max := s.Config.getBulkMaxOperations(); len(req.Operations) > max {
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Bulk request exceeds the server's maximum number of operations.",
			Status:   400,
		}
		errorHandler(w, r, &err)
		return
	}

	rawData := make([]string, len(req.Operations))
	for i, op := range req.Operations {
		raw, _ := json.Marshal(op.Data)
		rawData[i] = string(raw)
	}

	order, scimErr := topoSortBulk(req.Operations, rawData)
	if scimErr != nil {
		errorHandler(w, r, scimErr)
		return
	}

	resolved := make(map[string]string)
	resultsByIndex := make([]*bulkOperationResult, len(req.Operations))
	errCount := 0

	for _, idx := range order {
		if req.FailOnErrors > 0 && errCount >= req.FailOnErrors {
			break
		}
		op := req.Operations[idx]
		s.log("bulk operation", "method", op.Method, "path", op.Path, "bulkId", op.BulkID)

		var missing []string
		subPath := substituteString(op.Path, resolved, &missing)
		subData := substituteValue(op.Data, resolved, &missing)
		if len(missing) > 0 {
			errCount++
			scimErr := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Unresolved bulkId reference(s): " + strings.Join(missing, ", "),
				Status:   400,
			}
			resultsByIndex[idx] = &bulkOperationResult{
				Method:   op.Method,
				BulkID:   op.BulkID,
				Status:   strconv.Itoa(scimErr.Status),
				Response: scimErr.Response(),
			}
			continue
		}

		var bodyBytes []byte
		if subData != nil {
			bodyBytes, _ = json.Marshal(subData)
		}

		subReq := httptest.NewRequest(strings.ToUpper(op.Method), s.Prefix+subPath, bytes.NewReader(bodyBytes))
		subReq.Header.Set("Content-Type", "application/scim+json")
		if op.Version != "" {
			subReq.Header.Set("If-Match", op.Version)
		}
		rec := httptest.NewRecorder()
		s.dispatch(rec, subReq)

		status := rec.Code
		var respBody map[string]interface{}
		if rec.Body.Len() > 0 {
			_ = json.Unmarshal(rec.Body.Bytes(), &respBody)
		}

		result := &bulkOperationResult{
			Method:   op.Method,
			BulkID:   op.BulkID,
			Location: rec.Header().Get("Location"),
			Status:   strconv.Itoa(status),
		}
		if status >= 200 && status < 300 {
			if id, ok := respBody["id"].(string); ok && op.BulkID != "" {
				resolved[op.BulkID] = id
			}
		} else {
			errCount++
			result.Response = respBody
		}
		resultsByIndex[idx] = result
	}

	operations := make([]map[string]interface{}, 0, len(resultsByIndex))
	for _, res := range resultsByIndex {
		if res == nil {
			continue
		}
		operations = append(operations, res.toMap())
	}

	resp := map[string]interface{}{
		"schemas":    []string{"urn:ietf:params:scim:api:messages:2.0:BulkResponse"},
		"Operations": operations,
	}
	raw, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		errorHandler(w, r, &errors.ScimErrorInternalServer)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (r bulkOperationResult) toMap() map[string]interface{} {
	m := map[string]interface{}{"method": r.Method}
	if r.BulkID != "" {
		m["bulkId"] = r.BulkID
	}
	if r.Location != "" {
		m["location"] = r.Location
	}
	if r.Status != "" {
		m["status"] = r.Status
	}
	if r.Response != nil {
		m["response"] = r.Response
	}
	return m
}
