package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	datetime "github.com/di-wu/xsd-datetime"
	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/optional"
)

// jsonNumber aliases encoding/json.Number: goccy/go-json's decoder (used
// for wire (de)serialization elsewhere in this module) decodes numbers
// into the same concrete type when UseNumber is set, so attribute
// validation only needs to understand the one type.
type jsonNumber = json.Number

// CoreAttribute represents those attributes that sit at the top level of the JSON object together with the common
// attributes (such as the resource "id").
type CoreAttribute struct {
	canonicalValues []string
	caseExact       bool
	description     optional.String
	multiValued     bool
	mutability      attributeMutability
	name            string
	referenceTypes  []AttributeReferenceType
	required        bool
	returned        attributeReturned
	subAttributes   Attributes
	typ             attributeType
	uniqueness      attributeUniqueness
}

var validBooleanStrings = map[string]bool{"True": true, "False": false, "true": true, "false": false}

// ComplexCoreAttribute creates a complex attribute based on given parameters.
func ComplexCoreAttribute(params ComplexParams) CoreAttribute {
	checkAttributeName(params.Name)

	names := map[string]int{}
	var sa []CoreAttribute

	for i, a := range params.SubAttributes {
		name := strings.ToLower(a.name)
		if j, ok := names[name]; ok {
			panic(duplicateSubAttributeNameError(name, i, j))
		}
		names[name] = i

		sa = append(sa, CoreAttribute{
			canonicalValues: a.canonicalValues,
			caseExact:       a.caseExact,
			description:     a.description,
			multiValued:     a.multiValued,
			mutability:      a.mutability,
			name:            a.name,
			referenceTypes:  a.referenceTypes,
			required:        a.required,
			returned:        a.returned,
			typ:             a.typ,
			uniqueness:      a.uniqueness,
		})
	}

	return CoreAttribute{
		description:   params.Description,
		multiValued:   params.MultiValued,
		mutability:    params.Mutability.m,
		name:          params.Name,
		required:      params.Required,
		returned:      params.Returned.r,
		subAttributes: sa,
		typ:           attributeDataTypeComplex,
		uniqueness:    params.Uniqueness.u,
	}
}

// SimpleCoreAttribute creates a non-complex attribute based on given parameters.
func SimpleCoreAttribute(params SimpleParams) CoreAttribute {
	checkAttributeName(params.name)

	return CoreAttribute{
		canonicalValues: params.canonicalValues,
		caseExact:       params.caseExact,
		description:     params.description,
		multiValued:     params.multiValued,
		mutability:      params.mutability,
		name:            params.name,
		referenceTypes:  params.referenceTypes,
		required:        params.required,
		returned:        params.returned,
		typ:             params.typ,
		uniqueness:      params.uniqueness,
	}
}

// AttributeType returns the attribute type.
func (a CoreAttribute) AttributeType() string { return a.typ.String() }

// CanonicalValues returns the canonical values of the attribute.
func (a CoreAttribute) CanonicalValues() []string { return a.canonicalValues }

// CaseExact returns whether the attribute is case exact.
func (a CoreAttribute) CaseExact() bool { return a.caseExact }

// Description returns the description of the attribute.
func (a CoreAttribute) Description() string { return a.description.Value() }

// HasSubAttributes returns whether the attribute is complex and has sub attributes.
func (a CoreAttribute) HasSubAttributes() bool {
	return a.typ == attributeDataTypeComplex && len(a.subAttributes) != 0
}

// MultiValued returns whether the attribute is multi valued.
func (a CoreAttribute) MultiValued() bool { return a.multiValued }

// Mutability returns the mutability of the attribute.
func (a CoreAttribute) Mutability() string {
	raw, _ := a.mutability.MarshalJSON()
	return string(raw)
}

// Name returns the case insensitive name of the attribute.
func (a CoreAttribute) Name() string { return a.name }

// ReferenceTypes returns the reference types of the attribute.
func (a CoreAttribute) ReferenceTypes() []AttributeReferenceType { return a.referenceTypes }

// Required returns whether the attribute is required.
func (a CoreAttribute) Required() bool { return a.required }

// Returned returns when the attribute needs to be returned.
func (a CoreAttribute) Returned() string {
	raw, _ := a.returned.MarshalJSON()
	return string(raw)
}

// SubAttributes returns the sub attributes.
func (a CoreAttribute) SubAttributes() Attributes { return a.subAttributes }

// Uniqueness returns the attribute's uniqueness.
func (a CoreAttribute) Uniqueness() string {
	raw, _ := a.uniqueness.MarshalJSON()
	return string(raw)
}

func (a *CoreAttribute) getRawAttributes() map[string]interface{} {
	attributes := map[string]interface{}{
		"description": a.description.Value(),
		"multiValued": a.multiValued,
		"mutability":  a.mutability,
		"name":        a.name,
		"required":    a.required,
		"returned":    a.returned,
		"type":        a.typ,
	}

	if a.canonicalValues != nil {
		attributes["canonicalValues"] = a.canonicalValues
	}

	if a.referenceTypes != nil {
		attributes["referenceTypes"] = a.referenceTypes
	}

	if len(a.subAttributes) != 0 {
		rawSubAttributes := make([]map[string]interface{}, len(a.subAttributes))
		for i := range a.subAttributes {
			rawSubAttributes[i] = a.subAttributes[i].getRawAttributes()
		}
		attributes["subAttributes"] = rawSubAttributes
	}

	if a.typ != attributeDataTypeComplex && a.typ != attributeDataTypeBoolean {
		attributes["caseExact"] = a.caseExact
		attributes["uniqueness"] = a.uniqueness
	}

	return attributes
}

// validate applies the per-attribute request-direction rules of spec §4.2:
// type coercion, cardinality, canonical values, and required (evaluated
// AFTER mutability stripping, so a readOnly required attribute is never
// demanded from the client).
func (a CoreAttribute) validate(attribute interface{}) (interface{}, *errors.ScimError) {
	// readOnly: the attribute SHALL NOT be (re)defined by the client, and
	// is therefore never "required" from its perspective.
	if a.mutability == attributeMutabilityReadOnly {
		return nil, nil
	}

	if attribute == nil {
		if !a.required {
			return nil, nil
		}
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Attribute name: " + a.name,
			Status:   errors.ScimErrorInvalidValue.Status,
		}
		return nil, &err
	}

	if !a.multiValued {
		return a.validateSingular(attribute)
	}

	switch arr := attribute.(type) {
	case map[string]interface{}:
		if a.required && len(arr) == 0 {
			err := multiValuedEmptyError(a.name)
			return nil, &err
		}

		validMap := make(map[string]interface{}, len(arr))
		for k, v := range arr {
			for _, sub := range a.subAttributes {
				if !strings.EqualFold(sub.name, k) {
					continue
				}
				if _, scimErr := sub.validate(v); scimErr != nil {
					return nil, scimErr
				}
				validMap[sub.name] = v
			}
		}
		return validMap, nil

	case []interface{}:
		if a.required && len(arr) == 0 {
			err := multiValuedEmptyError(a.name)
			return nil, &err
		}

		attributes := make([]interface{}, len(arr))
		for i, ele := range arr {
			attr, scimErr := a.validateSingular(ele)
			if scimErr != nil {
				return nil, scimErr
			}
			attributes[i] = attr
		}
		return attributes, nil

	default:
		// A single value is lifted into a one-element array, per the
		// inbound convenience rule of spec §4.2.
		attr, scimErr := a.validateSingular(attribute)
		if scimErr != nil {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Multivalued attribute was not an array. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return []interface{}{attr}, nil
	}
}

func multiValuedEmptyError(name string) errors.ScimError {
	return errors.ScimError{
		ScimType: errors.TypeInvalidValue,
		Detail:   errors.ScimErrorInvalidValue.Detail + " Multivalued attribute was empty. Attribute name: " + name,
		Status:   errors.ScimErrorInvalidValue.Status,
	}
}

func duplicateSubAttributeNameError(name string, i, j int) error {
	return fmt.Errorf("duplicate sub-attribute name %q at indices %d and %d", name, i, j)
}

// checkCanonicalValues validates a string value against a.canonicalValues.
// A caseExact attribute whose value matches only case-insensitively
// produces a distinct diagnostic error (Open Question (a) in spec §9,
// resolved here as intentional: it tells the caller precisely why the
// otherwise-plausible value was rejected).
func (a CoreAttribute) checkCanonicalValues(value string) *errors.ScimError {
	if len(a.canonicalValues) == 0 {
		return nil
	}
	caseInsensitiveHit := false
	for _, cv := range a.canonicalValues {
		if cv == value {
			return nil
		}
		if strings.EqualFold(cv, value) {
			if !a.caseExact {
				return nil
			}
			caseInsensitiveHit = true
		}
	}
	if a.caseExact && caseInsensitiveHit {
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Value matches a canonical value for " + a.name + " only case-insensitively, but the attribute is caseExact.",
			Status:   errors.ScimErrorInvalidValue.Status,
		}
		return &err
	}
	err := errors.ScimError{
		ScimType: errors.TypeInvalidValue,
		Detail:   errors.ScimErrorInvalidValue.Detail + " Value is not one of the canonical values for attribute: " + a.name,
		Status:   errors.ScimErrorInvalidValue.Status,
	}
	return &err
}

func (a CoreAttribute) validateSingular(attribute interface{}) (interface{}, *errors.ScimError) {
	switch a.typ {
	case attributeDataTypeBinary:
		bin, ok := attribute.(string)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Binary attribute not the right type. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		if _, err := base64.StdEncoding.DecodeString(bin); err != nil {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Attribute is not valid base64 for type: binary. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return bin, nil

	case attributeDataTypeBoolean:
		b, ok := attribute.(bool)
		if !ok {
			// Tolerate string-encoded booleans from non-compliant clients
			// (spec §9 "Azure AD interop tolerances").
			if s, sOk := attribute.(string); sOk {
				if v, found := validBooleanStrings[s]; found {
					return v, nil
				}
			}
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Boolean attribute not the right type. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return b, nil

	case attributeDataTypeComplex:
		complexVal, ok := attribute.(map[string]interface{})
		if !ok {
			// A bare string in place of a complex value is tolerated as a
			// shorthand for any complex attribute that has sub-attributes
			// (the Azure AD "manager" shorthand generalized) and is returned
			// unchanged; its sub-attributes are not checked.
			if s, sOk := attribute.(string); sOk && len(a.subAttributes) > 0 {
				return s, nil
			}
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Complex attribute does not have the right structure. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}

		attributes := make(map[string]interface{})
		for _, sub := range a.subAttributes {
			var hit interface{}
			var found bool
			for k, v := range complexVal {
				if strings.EqualFold(sub.name, k) {
					if found {
						err := errors.ScimError{
							ScimType: errors.TypeDuplicateAttribute,
							Detail:   errors.ScimErrorDuplicateAttributeFound.Detail + " Duplicate attribute found inside of the complex attribute: " + a.name + ". Duplicate attribute name: " + sub.name,
							Status:   errors.ScimErrorDuplicateAttributeFound.Status,
						}
						return nil, &err
					}
					found = true
					hit = v
				}
			}

			attr, scimErr := sub.validate(hit)
			if scimErr != nil {
				return nil, scimErr
			}
			if attr != nil {
				attributes[sub.name] = attr
			}
		}
		return attributes, nil

	case attributeDataTypeDateTime:
		date, ok := attribute.(string)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Date time attribute does not have the right type. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		if _, err := datetime.Parse(date); err != nil {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Date time attribute value is not in the right format, expected an xsd:dateTime. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return date, nil

	case attributeDataTypeDecimal:
		f, ok := asFloat(attribute)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Decimal attribute value failed to parse as a decimal. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return f, nil

	case attributeDataTypeInteger:
		i, ok := asInt(attribute)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Integer attribute value failed to parse as an integer. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return i, nil

	case attributeDataTypeReference:
		s, ok := attribute.(string)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Reference attribute value is not of the right type. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		// Any one referenceType match suffices; "external" and resource
		// type names match unconditionally (spec §4.2 item 1) — what
		// remains to check is that the value is URI-syntax at all.
		if _, err := url.Parse(s); err != nil {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Reference attribute value is not a valid URI. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		return s, nil

	case attributeDataTypeString:
		s, ok := attribute.(string)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " String attribute value is not of the right type. Attribute name: " + a.name,
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		if scimErr := a.checkCanonicalValues(s); scimErr != nil {
			return nil, scimErr
		}
		return s, nil

	default:
		err := errors.ScimError{
			ScimType: errors.TypeInvalidValue,
			Detail:   errors.ScimErrorInvalidValue.Detail + " Unrecognized attribute type. Attribute name: " + a.name,
			Status:   errors.ScimErrorInvalidValue.Status,
		}
		return nil, &err
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case jsonNumber:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case jsonNumber:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
