package scim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
)

func noCaseExact(filter.AttrPath) bool { return false }

func TestApplyPatchAddNoPathScalarOverwrite(t *testing.T) {
	doc := map[string]interface{}{"userName": "bjensen", "active": true}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationAdd, Value: map[string]interface{}{"userName": "bjensen2"}},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	assert.Equal(t, "bjensen2", out["userName"])
	assert.Equal(t, "bjensen", doc["userName"], "ApplyPatch must not mutate the caller's document")
}

func TestApplyPatchAddNoPathArrayAppends(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationAdd, Value: map[string]interface{}{
			"emails": []interface{}{map[string]interface{}{"value": "b@example.com", "type": "home"}},
		}},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	emails := out["emails"].([]interface{})
	assert.Len(t, emails, 2)
}

func TestApplyPatchReplaceNoPathOverwritesArray(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationReplace, Value: map[string]interface{}{
			"emails": []interface{}{map[string]interface{}{"value": "b@example.com", "type": "home"}},
		}},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	emails := out["emails"].([]interface{})
	require.Len(t, emails, 1)
	assert.Equal(t, "b@example.com", emails[0].(map[string]interface{})["value"])
}

func TestApplyPatchAddWithPathAndSubAttribute(t *testing.T) {
	doc := map[string]interface{}{"name": map[string]interface{}{"givenName": "Babs"}}
	req := PatchRequest{Operations: []PatchOperation{
		{
			Op: PatchOperationAdd,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{AttributeName: "name", SubAttr: "familyName"},
			},
			Value: "Jensen",
		},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	name := out["name"].(map[string]interface{})
	assert.Equal(t, "Babs", name["givenName"])
	assert.Equal(t, "Jensen", name["familyName"])
}

func TestApplyPatchReplaceWithValueFilterOnMatchingElement(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
			map[string]interface{}{"value": "b@example.com", "type": "home"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{
			Op: PatchOperationReplace,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{AttributeName: "emails"},
				ValueFilter: filter.AttrExpr{
					Path:  filter.AttrPath{AttributeName: "type"},
					Op:    filter.OpEqual,
					Value: "work",
				},
			},
			Value: map[string]interface{}{"value": "new@example.com"},
		},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	emails := out["emails"].([]interface{})
	require.Len(t, emails, 2)
	assert.Equal(t, "new@example.com", emails[0].(map[string]interface{})["value"])
	assert.Equal(t, "work", emails[0].(map[string]interface{})["type"])
	assert.Equal(t, "b@example.com", emails[1].(map[string]interface{})["value"])
}

func TestApplyPatchReplaceWithValueFilterNoMatchReturnsNoTarget(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{
			Op: PatchOperationReplace,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{AttributeName: "emails"},
				ValueFilter: filter.AttrExpr{
					Path:  filter.AttrPath{AttributeName: "type"},
					Op:    filter.OpEqual,
					Value: "mobile",
				},
			},
			Value: map[string]interface{}{"value": "new@example.com"},
		},
	}}

	_, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.NotNil(t, scimErr)
	assert.Equal(t, errors.TypeNoTarget, scimErr.ScimType)
}

func TestApplyPatchRemoveWithValueFilter(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
			map[string]interface{}{"value": "b@example.com", "type": "home"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{
			Op: PatchOperationRemove,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{AttributeName: "emails"},
				ValueFilter: filter.AttrExpr{
					Path:  filter.AttrPath{AttributeName: "type"},
					Op:    filter.OpEqual,
					Value: "home",
				},
			},
		},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	emails := out["emails"].([]interface{})
	require.Len(t, emails, 1)
	assert.Equal(t, "work", emails[0].(map[string]interface{})["type"])
}

func TestApplyPatchRemoveNoPathIsInvalid(t *testing.T) {
	doc := map[string]interface{}{"userName": "bjensen"}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationRemove},
	}}

	_, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.NotNil(t, scimErr)
}

func TestApplyPatchRemovePlainAttribute(t *testing.T) {
	doc := map[string]interface{}{"userName": "bjensen", "nickName": "babs"}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationRemove, Path: &filter.Path{AttributePath: filter.AttrPath{AttributeName: "nickName"}}},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	_, present := out["nickName"]
	assert.False(t, present)
	assert.Equal(t, "bjensen", out["userName"])
}

func TestApplyPatchAtomicityOnMidSequenceFailure(t *testing.T) {
	doc := map[string]interface{}{
		"emails": []interface{}{
			map[string]interface{}{"value": "a@example.com", "type": "work"},
		},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{Op: PatchOperationAdd, Value: map[string]interface{}{"nickName": "babs"}},
		{
			Op: PatchOperationRemove,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{AttributeName: "emails"},
				ValueFilter: filter.AttrExpr{
					Path:  filter.AttrPath{AttributeName: "type"},
					Op:    filter.OpEqual,
					Value: "mobile",
				},
			},
		},
	}}

	_, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.NotNil(t, scimErr)
	_, present := doc["nickName"]
	assert.False(t, present, "a failed later operation must not leave earlier operations' effects visible on the caller's document")
}

func TestApplyPatchExtensionSchemaQualifiedPath(t *testing.T) {
	const enterpriseSchema = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	doc := map[string]interface{}{
		enterpriseSchema: map[string]interface{}{"employeeNumber": "1"},
	}
	req := PatchRequest{Operations: []PatchOperation{
		{
			Op: PatchOperationReplace,
			Path: &filter.Path{
				AttributePath: filter.AttrPath{Schema: enterpriseSchema, AttributeName: "employeeNumber"},
			},
			Value: "2",
		},
	}}

	out, scimErr := ApplyPatch(doc, req, noCaseExact)
	require.Nil(t, scimErr)
	ext := out[enterpriseSchema].(map[string]interface{})
	assert.Equal(t, "2", ext["employeeNumber"])
}
