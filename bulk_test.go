package scim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

func indexOf(order []int, target int) int {
	for pos, idx := range order {
		if idx == target {
			return pos
		}
	}
	return -1
}

func TestTopoSortBulkOrdersDependentsAfterTheirReferences(t *testing.T) {
	ops := []bulkOperation{
		{Method: "POST", Path: "/Groups", BulkID: "group1", Data: map[string]interface{}{
			"displayName": "Tour Guides",
			"members":     []interface{}{map[string]interface{}{"value": "bulkId:user1"}},
		}},
		{Method: "POST", Path: "/Users", BulkID: "user1", Data: map[string]interface{}{"userName": "alice"}},
	}
	rawData := []string{
		`{"displayName":"Tour Guides","members":[{"value":"bulkId:user1"}]}`,
		`{"userName":"alice"}`,
	}

	order, scimErr := topoSortBulk(ops, rawData)
	require.Nil(t, scimErr)
	require.Len(t, order, 2)
	assert.Less(t, indexOf(order, 1), indexOf(order, 0), "user1 (index 1) must execute before group1 (index 0), which references it")
}

func TestTopoSortBulkDetectsCycle(t *testing.T) {
	ops := []bulkOperation{
		{Method: "POST", Path: "/Users", BulkID: "a"},
		{Method: "POST", Path: "/Users", BulkID: "b"},
	}
	rawData := []string{
		`{"manager":"bulkId:b"}`,
		`{"manager":"bulkId:a"}`,
	}

	_, scimErr := topoSortBulk(ops, rawData)
	require.NotNil(t, scimErr)
	assert.Equal(t, errors.TypeInvalidSyntax, scimErr.ScimType)
}

func TestTopoSortBulkIgnoresUnknownReferencesAtOrderingTime(t *testing.T) {
	ops := []bulkOperation{
		{Method: "POST", Path: "/Users", BulkID: "a"},
	}
	rawData := []string{`{"manager":"bulkId:doesNotExist"}`}

	order, scimErr := topoSortBulk(ops, rawData)
	require.Nil(t, scimErr)
	assert.Equal(t, []int{0}, order)
}

func TestSubstituteStringResolvesKnownReference(t *testing.T) {
	resolved := map[string]string{"user1": "2819c223-7f76-453a-919d-413861904646"}
	var missing []string

	out := substituteString("/Users/bulkId:user1", resolved, &missing)
	assert.Equal(t, "/Users/2819c223-7f76-453a-919d-413861904646", out)
	assert.Empty(t, missing)
}

func TestSubstituteStringRecordsUnresolvedReference(t *testing.T) {
	resolved := map[string]string{}
	var missing []string

	out := substituteString("bulkId:ghost", resolved, &missing)
	assert.Equal(t, "bulkId:ghost", out, "unresolved tokens are left intact; the caller decides how to fail")
	assert.Equal(t, []string{"ghost"}, missing)
}

func TestSubstituteValueWalksNestedStructures(t *testing.T) {
	resolved := map[string]string{"user1": "abc-123"}
	var missing []string

	value := map[string]interface{}{
		"displayName": "Tour Guides",
		"members": []interface{}{
			map[string]interface{}{"value": "bulkId:user1"},
		},
	}

	out := substituteValue(value, resolved, &missing).(map[string]interface{})
	members := out["members"].([]interface{})
	assert.Equal(t, "abc-123", members[0].(map[string]interface{})["value"])
	assert.Empty(t, missing)
}
