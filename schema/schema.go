package schema

import (
	"encoding/json"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/nielsvanzon/SCIM-SDK/errors"
	"github.com/nielsvanzon/SCIM-SDK/optional"
)

const (
	// UserSchema is the URI for the User resource.
	UserSchema = "urn:ietf:params:scim:schemas:core:2.0:User"

	// EnterpriseUserSchema is the URI for the Enterprise User extension.
	EnterpriseUserSchema = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"

	// GroupSchema is the URI for the Group resource.
	GroupSchema = "urn:ietf:params:scim:schemas:core:2.0:Group"

	// ServiceProviderConfigSchema is the URI for the ServiceProviderConfig resource.
	ServiceProviderConfigSchema = "urn:ietf:params:scim:schemas:core:2.0:ServiceProviderConfig"

	// ResourceTypeSchema is the URI for the ResourceType resource.
	ResourceTypeSchema = "urn:ietf:params:scim:schemas:core:2.0:ResourceType"

	// SchemaSchema is the URI for the Schema resource.
	SchemaSchema = "urn:ietf:params:scim:schemas:core:2.0:Schema"
)

func cannotBePatched(op string, attr CoreAttribute) bool {
	return isImmutable(op, attr) || isReadOnly(attr)
}

func isImmutable(op string, attr CoreAttribute) bool {
	return attr.mutability == attributeMutabilityImmutable && (op == "replace" || op == "remove")
}

func isReadOnly(attr CoreAttribute) bool {
	return attr.mutability == attributeMutabilityReadOnly
}

// Attributes represent a list of Core Attributes.
type Attributes []CoreAttribute

// ContainsAttribute checks whether the list of Core Attributes contains an attribute with the given name.
func (as Attributes) ContainsAttribute(name string) (CoreAttribute, bool) {
	for _, a := range as {
		if strings.EqualFold(name, a.name) {
			return a, true
		}
	}
	return CoreAttribute{}, false
}

// Schema is a collection of attribute definitions that describe the contents of an entire or partial resource.
type Schema struct {
	Attributes  Attributes
	Description optional.String
	ID          string
	Name        optional.String
}

// MarshalJSON converts the schema struct to its corresponding json representation.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// ToMap returns the map representation of a schema.
func (s Schema) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":          s.ID,
		"name":        s.Name.Value(),
		"description": s.Description.Value(),
		"attributes":  s.getRawAttributes(),
	}
}

// Validate validates given resource based on the schema. Does NOT validate mutability.
// NOTE: only used in POST requests where attributes MAY be (re)defined.
func (s Schema) Validate(resource interface{}) (map[string]interface{}, *errors.ScimError) {
	attrs, scimErr, _ := s.validate(resource, nil)
	return attrs, scimErr
}

// ValidateMutability validates given resource based on the schema, including strict immutability
// checks against the previously stored value (spec §4.2 item 5): an immutable attribute is only
// rejected when the new value differs from the one on record.
func (s Schema) ValidateMutability(resource interface{}, stored map[string]interface{}) (map[string]interface{}, *errors.ScimError) {
	attrs, scimErr, _ := s.validate(resource, stored)
	return attrs, scimErr
}

// ValidateCollectingErrors behaves like Validate but additionally returns every
// per-field failure collected along the way (spec §7's ValidationContext),
// for diagnostic logging. The first failure is still what callers should
// treat as the hard error.
func (s Schema) ValidateCollectingErrors(resource interface{}) (map[string]interface{}, *errors.ScimError, *multierror.Error) {
	return s.validate(resource, nil)
}

// ValidatePatchOperation validates an individual operation and its related value.
func (s Schema) ValidatePatchOperation(operation string, operationValue map[string]interface{}, isExtension bool) (map[string]interface{}, *errors.ScimError) {
	value := make(map[string]interface{})

	for k, v := range operationValue {
		attr, ok := s.lookupPatchAttribute(k, isExtension)
		if !ok {
			err := errors.ScimError{
				ScimType: errors.TypeInvalidValue,
				Detail:   errors.ScimErrorInvalidValue.Detail + " Attribute " + k + " does not exist in the schema.",
				Status:   errors.ScimErrorInvalidValue.Status,
			}
			return nil, &err
		}
		if cannotBePatched(operation, attr) {
			err := errors.ScimError{
				ScimType: errors.TypeMutability,
				Detail:   errors.ScimErrorMutability.Detail + " Attribute " + attr.name + " is immutable or readOnly and therefore cannot be patched.",
				Status:   errors.ScimErrorMutability.Status,
			}
			return nil, &err
		}

		newValue, scimErr := attr.validate(v)
		if scimErr != nil {
			return nil, scimErr
		}
		value[k] = newValue
	}

	return value, nil
}

func (s Schema) lookupPatchAttribute(key string, isExtension bool) (CoreAttribute, bool) {
	for _, attribute := range s.Attributes {
		if strings.EqualFold(attribute.name, key) {
			return attribute, true
		}
		if isExtension && strings.EqualFold(s.ID+":"+attribute.name, key) {
			return attribute, true
		}
	}
	return CoreAttribute{}, false
}

// ValidatePatchOperationValue validates an individual operation and its related value.
func (s Schema) ValidatePatchOperationValue(operation string, operationValue map[string]interface{}) (map[string]interface{}, *errors.ScimError) {
	return s.ValidatePatchOperation(operation, operationValue, false)
}

func (s Schema) getRawAttributes() []map[string]interface{} {
	attributes := make([]map[string]interface{}, len(s.Attributes))
	for i := range s.Attributes {
		attributes[i] = s.Attributes[i].getRawAttributes()
	}
	return attributes
}

// validate walks every schema attribute against resource. When stored is
// non-nil the pass additionally enforces immutability-on-change (spec §4.2
// item 5); when nil, it is the lighter POST-direction check. Every
// per-field failure is folded into a *multierror.Error (spec §7's
// ValidationContext) even though only the first hard failure is returned
// as the authoritative *errors.ScimError, mirroring how multierror is used
// elsewhere in the pack to aggregate diagnostics without changing
// short-circuit behavior for the caller.
func (s Schema) validate(resource interface{}, stored map[string]interface{}) (map[string]interface{}, *errors.ScimError, *multierror.Error) {
	core, ok := resource.(map[string]interface{})
	if !ok {
		return nil, &errors.ScimErrorInvalidSyntax, multierror.Append(nil, errors.ScimErrorInvalidSyntax)
	}

	var agg *multierror.Error
	var firstErr *errors.ScimError
	attributes := make(map[string]interface{})

	for _, attribute := range s.Attributes {
		var hit interface{}
		var found bool
		var dupErr *errors.ScimError
		for k, v := range core {
			if strings.EqualFold(attribute.name, k) {
				if found {
					err := errors.ScimError{
						ScimType: errors.TypeDuplicateAttribute,
						Detail:   errors.ScimErrorDuplicateAttributeFound.Detail + " Attribute name: " + attribute.name,
						Status:   errors.ScimErrorDuplicateAttributeFound.Status,
					}
					dupErr = &err
					continue
				}
				found = true
				hit = v
			}
		}
		if dupErr != nil {
			agg = multierror.Append(agg, *dupErr)
			if firstErr == nil {
				firstErr = dupErr
			}
			continue
		}

		if found && stored != nil && attribute.mutability == attributeMutabilityImmutable {
			if storedVal, ok := stored[attribute.name]; !ok || !valuesDeepEqual(storedVal, hit) {
				err := errors.ScimError{
					ScimType: errors.TypeMutability,
					Detail:   errors.ScimErrorMutability.Detail + " Attribute name: " + attribute.name,
					Status:   errors.ScimErrorMutability.Status,
				}
				agg = multierror.Append(agg, err)
				if firstErr == nil {
					firstErr = &err
				}
				continue
			}
		}

		attr, scimErr := attribute.validate(hit)
		if scimErr != nil {
			agg = multierror.Append(agg, *scimErr)
			if firstErr == nil {
				firstErr = scimErr
			}
			continue
		}
		attributes[attribute.name] = attr
	}
	if firstErr != nil {
		return nil, firstErr, agg
	}
	return attributes, nil, agg
}

func valuesDeepEqual(a, b interface{}) bool {
	aj, aerr := json.Marshal(a)
	bj, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return string(aj) == string(bj)
}
