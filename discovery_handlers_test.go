package scim_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceProviderConfigHandler(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/ServiceProviderConfig", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "patch")
	assert.Contains(t, body, "bulk")
}

func TestResourceTypesHandlerListsEveryConfiguredResourceType(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/ResourceTypes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	resources := body["Resources"].([]interface{})
	assert.Len(t, resources, 2)
}

func TestResourceTypeHandlerReturnsNotFoundForUnknownName(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/ResourceTypes/Widgets", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemasHandlerListsResourceTypeSchemas(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/Schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	resources := body["Resources"].([]interface{})
	assert.GreaterOrEqual(t, len(resources), 2)
}

func TestSchemaHandlerReturnsNotFoundForUnknownID(t *testing.T) {
	server := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/Schemas/urn:does:not:exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
