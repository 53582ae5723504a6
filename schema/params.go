package schema

import (
	"encoding/json"
	"fmt"
	"unicode"

	"github.com/nielsvanzon/SCIM-SDK/optional"
)

// Common attribute names shared by every resource (RFC 7643 §3.1, §3.3).
const (
	CommonAttributeID           = "id"
	CommonAttributeExternalID   = "externalId"
	CommonAttributeMeta         = "meta"
	CommonAttributeSchemas      = "schemas"
)

// attributeType is the SCIM attribute data type (RFC 7643 §2.2).
type attributeType int

const (
	attributeDataTypeString attributeType = iota
	attributeDataTypeBoolean
	attributeDataTypeDecimal
	attributeDataTypeInteger
	attributeDataTypeDateTime
	attributeDataTypeBinary
	attributeDataTypeReference
	attributeDataTypeComplex
)

func (t attributeType) String() string {
	switch t {
	case attributeDataTypeString:
		return "string"
	case attributeDataTypeBoolean:
		return "boolean"
	case attributeDataTypeDecimal:
		return "decimal"
	case attributeDataTypeInteger:
		return "integer"
	case attributeDataTypeDateTime:
		return "dateTime"
	case attributeDataTypeBinary:
		return "binary"
	case attributeDataTypeReference:
		return "reference"
	case attributeDataTypeComplex:
		return "complex"
	default:
		return "string"
	}
}

func (t attributeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// attributeMutability is the internal representation of RFC 7643 §2.2's
// "mutability" keyword.
type attributeMutability struct{ value string }

func (m attributeMutability) MarshalJSON() ([]byte, error) { return json.Marshal(m.value) }
func (m attributeMutability) String() string                { return m.value }

var (
	attributeMutabilityReadOnly  = attributeMutability{"readOnly"}
	attributeMutabilityReadWrite = attributeMutability{"readWrite"}
	attributeMutabilityImmutable = attributeMutability{"immutable"}
	attributeMutabilityWriteOnly = attributeMutability{"writeOnly"}
)

// AttributeMutability is the public builder handle for an attribute's
// mutability, wrapping the package-private enum value.
type AttributeMutability struct{ m attributeMutability }

func AttributeMutabilityReadOnly() AttributeMutability {
	return AttributeMutability{m: attributeMutabilityReadOnly}
}
func AttributeMutabilityReadWrite() AttributeMutability {
	return AttributeMutability{m: attributeMutabilityReadWrite}
}
func AttributeMutabilityImmutable() AttributeMutability {
	return AttributeMutability{m: attributeMutabilityImmutable}
}
func AttributeMutabilityWriteOnly() AttributeMutability {
	return AttributeMutability{m: attributeMutabilityWriteOnly}
}

// attributeReturned is the internal representation of the "returned"
// keyword.
type attributeReturned struct{ value string }

func (r attributeReturned) MarshalJSON() ([]byte, error) { return json.Marshal(r.value) }
func (r attributeReturned) String() string                { return r.value }

var (
	attributeReturnedAlways  = attributeReturned{"always"}
	attributeReturnedNever   = attributeReturned{"never"}
	attributeReturnedDefault = attributeReturned{"default"}
	attributeReturnedRequest = attributeReturned{"request"}
)

// AttributeReturned is the public builder handle for an attribute's
// returned policy.
type AttributeReturned struct{ r attributeReturned }

func AttributeReturnedAlways() AttributeReturned  { return AttributeReturned{r: attributeReturnedAlways} }
func AttributeReturnedNever() AttributeReturned   { return AttributeReturned{r: attributeReturnedNever} }
func AttributeReturnedDefault() AttributeReturned { return AttributeReturned{r: attributeReturnedDefault} }
func AttributeReturnedRequest() AttributeReturned { return AttributeReturned{r: attributeReturnedRequest} }

// attributeUniqueness is the internal representation of the "uniqueness"
// keyword.
type attributeUniqueness struct{ value string }

func (u attributeUniqueness) MarshalJSON() ([]byte, error) { return json.Marshal(u.value) }
func (u attributeUniqueness) String() string                { return u.value }

var (
	attributeUniquenessNone   = attributeUniqueness{"none"}
	attributeUniquenessServer = attributeUniqueness{"server"}
	attributeUniquenessGlobal = attributeUniqueness{"global"}
)

// AttributeUniqueness is the public builder handle for an attribute's
// uniqueness constraint.
type AttributeUniqueness struct{ u attributeUniqueness }

func AttributeUniquenessNone() AttributeUniqueness {
	return AttributeUniqueness{u: attributeUniquenessNone}
}
func AttributeUniquenessServer() AttributeUniqueness {
	return AttributeUniqueness{u: attributeUniquenessServer}
}
func AttributeUniquenessGlobal() AttributeUniqueness {
	return AttributeUniqueness{u: attributeUniquenessGlobal}
}

// AttributeReferenceType names a kind of reference a "reference" attribute
// may resolve to: "external", "uri", or a resource type name (e.g. "User").
type AttributeReferenceType string

const (
	AttributeReferenceTypeExternal AttributeReferenceType = "external"
	AttributeReferenceTypeURI      AttributeReferenceType = "uri"
)

func checkAttributeName(name string) {
	if name == "" {
		panic(fmt.Errorf("attribute name must not be empty"))
	}
	first := rune(name[0])
	if !unicode.IsLetter(first) && first != '_' && first != '$' {
		panic(fmt.Errorf("attribute name %q must start with a letter", name))
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '$') {
			panic(fmt.Errorf("attribute name %q contains an illegal character %q", name, r))
		}
	}
}

// SimpleParams is the fully-resolved, package-private parameter set
// consumed by SimpleCoreAttribute. Callers build one of the typed *Params
// structs below and convert it with the matching SimpleXxxParams function.
type SimpleParams struct {
	canonicalValues []string
	caseExact       bool
	description     optional.String
	multiValued     bool
	mutability      attributeMutability
	name            string
	referenceTypes  []AttributeReferenceType
	required        bool
	returned        attributeReturned
	typ             attributeType
	uniqueness      attributeUniqueness
}

// StringParams are the parameters of a "string"-typed attribute.
type StringParams struct {
	CanonicalValues []string
	CaseExact       bool
	Description     optional.String
	Mutability      AttributeMutability
	MultiValued     bool
	Name            string
	Required        bool
	Returned        AttributeReturned
	Uniqueness      AttributeUniqueness
}

func SimpleStringParams(p StringParams) SimpleParams {
	return SimpleParams{
		canonicalValues: p.CanonicalValues,
		caseExact:       p.CaseExact,
		description:     p.Description,
		multiValued:      p.MultiValued,
		mutability:      p.Mutability.m,
		name:            p.Name,
		required:        p.Required,
		returned:        p.Returned.r,
		typ:             attributeDataTypeString,
		uniqueness:      p.Uniqueness.u,
	}
}

// BooleanParams are the parameters of a "boolean"-typed attribute.
type BooleanParams struct {
	Description optional.String
	Mutability  AttributeMutability
	MultiValued bool
	Name        string
	Required    bool
	Returned    AttributeReturned
}

func SimpleBooleanParams(p BooleanParams) SimpleParams {
	return SimpleParams{
		description: p.Description,
		multiValued: p.MultiValued,
		mutability:  p.Mutability.m,
		name:        p.Name,
		required:    p.Required,
		returned:    p.Returned.r,
		typ:         attributeDataTypeBoolean,
		uniqueness:  attributeUniquenessNone,
	}
}

// DecimalParams are the parameters of a "decimal"-typed attribute.
type DecimalParams struct {
	Description optional.String
	Mutability  AttributeMutability
	MultiValued bool
	Name        string
	Required    bool
	Returned    AttributeReturned
}

func SimpleDecimalParams(p DecimalParams) SimpleParams {
	return SimpleParams{
		description: p.Description,
		multiValued: p.MultiValued,
		mutability:  p.Mutability.m,
		name:        p.Name,
		required:    p.Required,
		returned:    p.Returned.r,
		typ:         attributeDataTypeDecimal,
		uniqueness:  attributeUniquenessNone,
	}
}

// IntegerParams are the parameters of an "integer"-typed attribute.
type IntegerParams struct {
	Description optional.String
	Mutability  AttributeMutability
	MultiValued bool
	Name        string
	Required    bool
	Returned    AttributeReturned
}

func SimpleIntegerParams(p IntegerParams) SimpleParams {
	return SimpleParams{
		description: p.Description,
		multiValued: p.MultiValued,
		mutability:  p.Mutability.m,
		name:        p.Name,
		required:    p.Required,
		returned:    p.Returned.r,
		typ:         attributeDataTypeInteger,
		uniqueness:  attributeUniquenessNone,
	}
}

// DateTimeParams are the parameters of a "dateTime"-typed attribute.
type DateTimeParams struct {
	Description optional.String
	Mutability  AttributeMutability
	MultiValued bool
	Name        string
	Required    bool
	Returned    AttributeReturned
	Uniqueness  AttributeUniqueness
}

func SimpleDateTimeParams(p DateTimeParams) SimpleParams {
	return SimpleParams{
		description: p.Description,
		multiValued: p.MultiValued,
		mutability:  p.Mutability.m,
		name:        p.Name,
		required:    p.Required,
		returned:    p.Returned.r,
		typ:         attributeDataTypeDateTime,
		uniqueness:  p.Uniqueness.u,
	}
}

// BinaryParams are the parameters of a "binary"-typed attribute.
type BinaryParams struct {
	Description optional.String
	Mutability  AttributeMutability
	MultiValued bool
	Name        string
	Required    bool
	Returned    AttributeReturned
}

func SimpleBinaryParams(p BinaryParams) SimpleParams {
	return SimpleParams{
		description: p.Description,
		multiValued: p.MultiValued,
		mutability:  p.Mutability.m,
		name:        p.Name,
		required:    p.Required,
		returned:    p.Returned.r,
		typ:         attributeDataTypeBinary,
		uniqueness:  attributeUniquenessNone,
	}
}

// ReferenceParams are the parameters of a "reference"-typed attribute.
type ReferenceParams struct {
	Description    optional.String
	MultiValued    bool
	Mutability     AttributeMutability
	Name           string
	ReferenceTypes []AttributeReferenceType
	Required       bool
	Returned       AttributeReturned
}

func SimpleReferenceParams(p ReferenceParams) SimpleParams {
	return SimpleParams{
		description:    p.Description,
		multiValued:    p.MultiValued,
		mutability:     p.Mutability.m,
		name:           p.Name,
		referenceTypes: p.ReferenceTypes,
		required:       p.Required,
		returned:       p.Returned.r,
		typ:            attributeDataTypeReference,
		uniqueness:     attributeUniquenessNone,
	}
}

// ComplexParams are the parameters of a "complex"-typed attribute.
type ComplexParams struct {
	Description   optional.String
	MultiValued   bool
	Mutability    AttributeMutability
	Name          string
	Required      bool
	Returned      AttributeReturned
	SubAttributes []SimpleParams
	Uniqueness    AttributeUniqueness
}
