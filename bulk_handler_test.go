package scim_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scim "github.com/nielsvanzon/SCIM-SDK"
	"github.com/nielsvanzon/SCIM-SDK/examples/memstore"
	"github.com/nielsvanzon/SCIM-SDK/optional"
	"github.com/nielsvanzon/SCIM-SDK/schema"
)

func newTestServer() scim.Server {
	return scim.Server{
		Prefix: "",
		Config: scim.ServiceProviderConfig{
			Patch:             scim.FeatureFlag{Supported: true},
			Bulk:              scim.FeatureFlag{Supported: true},
			Filter:            scim.FeatureFlag{Supported: true},
			BulkMaxOperations: 100,
		},
		ResourceTypes: []scim.ResourceType{
			{
				ID:       optional.NewString("User"),
				Name:     "User",
				Endpoint: "/Users",
				Schema:   schema.UserBootstrapSchema(),
				Handler:  memstore.New(),
			},
			{
				ID:       optional.NewString("Group"),
				Name:     "Group",
				Endpoint: "/Groups",
				Schema:   schema.GroupBootstrapSchema(),
				Handler:  memstore.New(),
			},
		},
	}
}

func doRequest(t *testing.T, server scim.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/scim+json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestBulkHandlerResolvesForwardReferenceAcrossOperations(t *testing.T) {
	server := newTestServer()

	body := map[string]interface{}{
		"schemas":      []string{"urn:ietf:params:scim:api:messages:2.0:BulkRequest"},
		"failOnErrors": 1,
		"Operations": []map[string]interface{}{
			{
				"method": "POST",
				"path":   "/Groups",
				"bulkId": "group1",
				"data": map[string]interface{}{
					"schemas":     []string{"urn:ietf:params:scim:schemas:core:2.0:Group"},
					"displayName": "Tour Guides",
					"members": []map[string]interface{}{
						{"value": "bulkId:user1"},
					},
				},
			},
			{
				"method": "POST",
				"path":   "/Users",
				"bulkId": "user1",
				"data": map[string]interface{}{
					"schemas":  []string{"urn:ietf:params:scim:schemas:core:2.0:User"},
					"userName": "alice",
				},
			},
		},
	}

	rec := doRequest(t, server, http.MethodPost, "/Bulk", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	ops := resp["Operations"].([]interface{})
	require.Len(t, ops, 2)

	for _, raw := range ops {
		op := raw.(map[string]interface{})
		assert.Contains(t, []string{"201", "200"}, op["status"], "operation %+v should have succeeded", op)
	}
}

func TestBulkHandlerFailsSingleOperationOnUnresolvedReference(t *testing.T) {
	server := newTestServer()

	body := map[string]interface{}{
		"Operations": []map[string]interface{}{
			{
				"method": "POST",
				"path":   "/Groups",
				"bulkId": "group1",
				"data": map[string]interface{}{
					"schemas":     []string{"urn:ietf:params:scim:schemas:core:2.0:Group"},
					"displayName": "Ghost Members",
					"members": []map[string]interface{}{
						{"value": "bulkId:doesNotExist"},
					},
				},
			},
			{
				"method": "POST",
				"path":   "/Users",
				"bulkId": "user1",
				"data": map[string]interface{}{
					"schemas":  []string{"urn:ietf:params:scim:schemas:core:2.0:User"},
					"userName": "bob",
				},
			},
		},
	}

	rec := doRequest(t, server, http.MethodPost, "/Bulk", body)
	require.Equal(t, http.StatusOK, rec.Code, "an unresolved forward reference fails only its own operation, not the whole Bulk request")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ops := resp["Operations"].([]interface{})
	require.Len(t, ops, 2)

	var sawFailure, sawSuccess bool
	for _, raw := range ops {
		op := raw.(map[string]interface{})
		switch op["bulkId"] {
		case "group1":
			assert.Equal(t, "400", op["status"])
			sawFailure = true
		case "user1":
			assert.Equal(t, "201", op["status"])
			sawSuccess = true
		}
	}
	assert.True(t, sawFailure)
	assert.True(t, sawSuccess)
}

func TestBulkHandlerRejectsCircularBulkIDReferences(t *testing.T) {
	server := newTestServer()

	body := map[string]interface{}{
		"Operations": []map[string]interface{}{
			{
				"method": "POST",
				"path":   "/Users",
				"bulkId": "a",
				"data":   map[string]interface{}{"userName": "bulkId:b"},
			},
			{
				"method": "POST",
				"path":   "/Users",
				"bulkId": "b",
				"data":   map[string]interface{}{"userName": "bulkId:a"},
			},
		},
	}

	rec := doRequest(t, server, http.MethodPost, "/Bulk", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkHandlerRejectsEmptyOperations(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodPost, "/Bulk", map[string]interface{}{"Operations": []map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkHandlerRejectsTooManyOperations(t *testing.T) {
	server := newTestServer()
	server.Config.BulkMaxOperations = 1

	body := map[string]interface{}{
		"Operations": []map[string]interface{}{
			{"method": "POST", "path": "/Users", "data": map[string]interface{}{"userName": "a"}},
			{"method": "POST", "path": "/Users", "data": map[string]interface{}{"userName": "b"}},
		},
	}

	rec := doRequest(t, server, http.MethodPost, "/Bulk", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
