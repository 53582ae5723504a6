package scim

import (
	"strings"

	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/internal/filter"
)

func noTargetError() *errors.ScimError {
	err := errors.ScimErrorNoTarget
	return &err
}

// deepClone copies a JSON-tree value (nested map[string]interface{} and
// []interface{}) so ApplyPatch can mutate its working copy freely without
// disturbing the caller's document — required for spec §4.4's atomicity
// invariant ("on any operation failure, the persisted resource equals its
// pre-PATCH state").
func deepClone(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = deepClone(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = deepClone(val)
		}
		return out
	default:
		return v
	}
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	return deepClone(doc).(map[string]interface{})
}

// findKey looks up name in m case-insensitively, returning the map's actual
// key and whether it was found.
func findKey(m map[string]interface{}, name string) (string, bool) {
	for k := range m {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return name, false
}

// navigateContainer resolves the map an AttrPath's attribute lives in:
// doc itself for an unqualified path, or the schema-URN-keyed extension
// sub-object for a qualified one, creating an empty extension object when
// create is true and none exists yet.
func navigateContainer(doc map[string]interface{}, ap filter.AttrPath, create bool) map[string]interface{} {
	if ap.Schema == "" {
		return doc
	}
	key, found := findKey(doc, ap.Schema)
	if !found {
		if !create {
			return map[string]interface{}{}
		}
		key = ap.Schema
	}
	ext, ok := doc[key].(map[string]interface{})
	if !ok {
		if !create {
			return map[string]interface{}{}
		}
		ext = map[string]interface{}{}
		doc[key] = ext
	}
	return ext
}

// ApplyPatch is the PATCH processor of spec §4.4: it applies every
// operation of req to doc, in declared order, and returns the resulting
// document. It never mutates doc; a failure returns doc's caller untouched
// (spec §4.4's atomicity invariant, spec §8 invariant 4).
func ApplyPatch(doc map[string]interface{}, req PatchRequest, caseExactFor filter.CaseExactFunc) (map[string]interface{}, *errors.ScimError) {
	current := cloneDoc(doc)
	for _, op := range req.Operations {
		next, scimErr := applyOperation(current, op, caseExactFor)
		if scimErr != nil {
			return nil, scimErr
		}
		current = next
	}
	return current, nil
}

func applyOperation(doc map[string]interface{}, op PatchOperation, caseExactFor filter.CaseExactFunc) (map[string]interface{}, *errors.ScimError) {
	switch op.Op {
	case PatchOperationAdd:
		return applyAddOrReplace(doc, op, false, caseExactFor)
	case PatchOperationReplace:
		return applyAddOrReplace(doc, op, true, caseExactFor)
	case PatchOperationRemove:
		return applyRemove(doc, op, caseExactFor)
	default:
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Unrecognized PATCH operation: " + op.Op,
			Status:   400,
		}
		return nil, &err
	}
}

// mergeScalarOrAppend implements the "scalars overwrite; multi-valued
// arrays are appended" rule shared by add-no-path and add-with-path (spec
// §4.4). replace callers pass overwrite=true to always overwrite instead.
func mergeScalarOrAppend(existing interface{}, incoming interface{}, exists, overwrite bool) interface{} {
	if !overwrite && exists {
		if arr, ok := existing.([]interface{}); ok {
			if more, ok := incoming.([]interface{}); ok {
				return append(append([]interface{}{}, arr...), more...)
			}
			return append(append([]interface{}{}, arr...), incoming)
		}
	}
	return incoming
}

func applyAddOrReplace(doc map[string]interface{}, op PatchOperation, overwrite bool, caseExactFor filter.CaseExactFunc) (map[string]interface{}, *errors.ScimError) {
	out := cloneDoc(doc)

	if op.Path == nil {
		valueMap, ok := op.Value.(map[string]interface{})
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " A PATCH " + op.Op + " without a path requires an object value.",
				Status:   400,
			}
			return nil, &err
		}
		for k, v := range valueMap {
			key, found := findKey(out, k)
			existing, exists := out[key]
			_ = found
			out[key] = mergeScalarOrAppend(existing, v, exists, overwrite)
		}
		return out, nil
	}

	container := navigateContainer(out, op.Path.AttributePath, true)
	key, found := findKey(container, op.Path.AttributePath.AttributeName)
	if !found {
		key = op.Path.AttributePath.AttributeName
	}

	if op.Path.ValueFilter != nil {
		arr, ok := container[key].([]interface{})
		if !ok {
			return nil, noTargetError()
		}
		matched := false
		subName := op.Path.SubAttributeName()
		for i, elem := range arr {
			m, ok := elem.(map[string]interface{})
			if !ok || !filter.Evaluate(op.Path.ValueFilter, m, caseExactFor) {
				continue
			}
			matched = true
			if subName == "" {
				if vm, ok := op.Value.(map[string]interface{}); ok {
					merged := cloneDoc(m)
					for k, v := range vm {
						mk, _ := findKey(merged, k)
						merged[mk] = v
					}
					arr[i] = merged
				} else {
					arr[i] = op.Value
				}
				continue
			}
			mk, _ := findKey(m, subName)
			m[mk] = op.Value
		}
		if !matched {
			return nil, noTargetError()
		}
		container[key] = arr
		return out, nil
	}

	subName := op.Path.AttributePath.SubAttr
	if subName != "" {
		sub, ok := container[key].(map[string]interface{})
		if !ok {
			sub = map[string]interface{}{}
		}
		subKey, _ := findKey(sub, subName)
		sub[subKey] = op.Value
		container[key] = sub
		return out, nil
	}

	existing, exists := container[key]
	container[key] = mergeScalarOrAppend(existing, op.Value, exists, overwrite)
	return out, nil
}

func applyRemove(doc map[string]interface{}, op PatchOperation, caseExactFor filter.CaseExactFunc) (map[string]interface{}, *errors.ScimError) {
	if op.Path == nil {
		err := errors.ScimError{
			ScimType: errors.TypeNoTarget,
			Detail:   errors.ScimErrorNoTarget.Detail + " \"remove\" requires a path.",
			Status:   400,
		}
		return nil, &err
	}

	out := cloneDoc(doc)
	container := navigateContainer(out, op.Path.AttributePath, false)
	key, found := findKey(container, op.Path.AttributePath.AttributeName)
	if !found {
		return out, nil
	}

	if op.Path.ValueFilter != nil {
		arr, ok := container[key].([]interface{})
		if !ok {
			return nil, noTargetError()
		}
		subName := op.Path.SubAttributeName()
		kept := make([]interface{}, 0, len(arr))
		matched := false
		for _, elem := range arr {
			m, ok := elem.(map[string]interface{})
			if ok && filter.Evaluate(op.Path.ValueFilter, m, caseExactFor) {
				matched = true
				if subName != "" {
					mc := cloneDoc(m)
					if k, ok := findKey(mc, subName); ok {
						delete(mc, k)
					}
					kept = append(kept, mc)
				}
				continue
			}
			kept = append(kept, elem)
		}
		if !matched {
			return nil, noTargetError()
		}
		container[key] = kept
		return out, nil
	}

	subName := op.Path.AttributePath.SubAttr
	if subName != "" {
		if sub, ok := container[key].(map[string]interface{}); ok {
			if k, ok := findKey(sub, subName); ok {
				delete(sub, k)
			}
		}
		return out, nil
	}

	delete(container, key)
	return out, nil
}
