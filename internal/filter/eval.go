package filter

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CaseExactFunc reports whether the attribute at path is declared
// caseExact, consulted by string comparisons. A nil func is treated as
// "never case exact".
type CaseExactFunc func(path AttrPath) bool

func resolveAttr(container map[string]interface{}, name string) (interface{}, bool) {
	for k, v := range container {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// resolveValue looks up path within resource, descending into a schema
// extension object first when path carries a URN prefix that names one.
func resolveValue(resource map[string]interface{}, path AttrPath) (interface{}, bool) {
	container := resource
	if path.Schema != "" {
		if ext, ok := resolveAttr(resource, path.Schema); ok {
			if extMap, ok := ext.(map[string]interface{}); ok {
				container = extMap
			}
		}
	}
	val, ok := resolveAttr(container, path.AttributeName)
	if !ok {
		return nil, false
	}
	if path.SubAttr != "" {
		sub, ok := val.(map[string]interface{})
		if !ok {
			return nil, false
		}
		return resolveAttr(sub, path.SubAttr)
	}
	return val, true
}

func toArray(val interface{}) []interface{} {
	if arr, ok := val.([]interface{}); ok {
		return arr
	}
	return []interface{}{val}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func valuesEqual(val, target interface{}, caseExact bool) bool {
	switch t := target.(type) {
	case string:
		s, ok := val.(string)
		if !ok {
			return false
		}
		if caseExact {
			return s == t
		}
		return strings.EqualFold(s, t)
	case bool:
		b, ok := val.(bool)
		return ok && b == t
	case nil:
		return val == nil
	default:
		f, ok := toFloat64(target)
		if !ok {
			return false
		}
		vf, ok := toFloat64(val)
		return ok && vf == f
	}
}

func compareOrdered(val, target interface{}, op CompareOp) bool {
	if vf, ok := toFloat64(val); ok {
		if tf, ok := toFloat64(target); ok {
			return applyOrder(cmpFloat(vf, tf), op)
		}
	}
	vs, ok1 := val.(string)
	ts, ok2 := target.(string)
	if ok1 && ok2 {
		return applyOrder(strings.Compare(vs, ts), op)
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyOrder(cmp int, op CompareOp) bool {
	switch op {
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterThanOrEqual:
		return cmp >= 0
	case OpLessThan:
		return cmp < 0
	case OpLessThanOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

func evalAttrExpr(e AttrExpr, resource map[string]interface{}, caseExactFor CaseExactFunc) bool {
	val, found := resolveValue(resource, e.Path)

	if e.Op == OpPresent {
		if !found || val == nil {
			return false
		}
		switch v := val.(type) {
		case string:
			return v != ""
		case []interface{}:
			return len(v) > 0
		default:
			return true
		}
	}

	if !found || val == nil {
		// Undefined attributes evaluate to false for every op except `ne`
		// (spec §4.3).
		return e.Op == OpNotEqual
	}

	caseExact := false
	if caseExactFor != nil {
		caseExact = caseExactFor(e.Path)
	}

	switch e.Op {
	case OpEqual:
		return valuesEqual(val, e.Value, caseExact)
	case OpNotEqual:
		return !valuesEqual(val, e.Value, caseExact)
	case OpContains, OpStartsWith, OpEndsWith:
		vs, ok1 := val.(string)
		es, ok2 := e.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		if !caseExact {
			vs = strings.ToLower(vs)
			es = strings.ToLower(es)
		}
		switch e.Op {
		case OpContains:
			return strings.Contains(vs, es)
		case OpStartsWith:
			return strings.HasPrefix(vs, es)
		case OpEndsWith:
			return strings.HasSuffix(vs, es)
		}
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return compareOrdered(val, e.Value, e.Op)
	}
	return false
}

// Evaluate runs expr against resource, returning whether it matches.
func Evaluate(expr Expression, resource map[string]interface{}, caseExactFor CaseExactFunc) bool {
	switch e := expr.(type) {
	case AttrExpr:
		return evalAttrExpr(e, resource, caseExactFor)
	case NotExpr:
		return !Evaluate(e.Expr, resource, caseExactFor)
	case LogicalExpr:
		if e.Op == LogicalAnd {
			return Evaluate(e.Left, resource, caseExactFor) && Evaluate(e.Right, resource, caseExactFor)
		}
		return Evaluate(e.Left, resource, caseExactFor) || Evaluate(e.Right, resource, caseExactFor)
	case ValuePathExpr:
		val, found := resolveValue(resource, e.Path)
		if !found {
			return false
		}
		for _, elem := range toArray(val) {
			if m, ok := elem.(map[string]interface{}); ok {
				if Evaluate(e.Sub, m, caseExactFor) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
