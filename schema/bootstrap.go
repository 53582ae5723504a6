package schema

import "github.com/nielsvanzon/SCIM-SDK/optional"

func str(s string) optional.String { return optional.NewString(s) }

func metaSubAttributes() []SimpleParams {
	return []SimpleParams{
		SimpleStringParams(StringParams{
			Name:       "resourceType",
			Mutability: AttributeMutabilityReadOnly(),
			Returned:   AttributeReturnedDefault(),
		}),
		SimpleDateTimeParams(DateTimeParams{
			Name:       "created",
			Mutability: AttributeMutabilityReadOnly(),
			Returned:   AttributeReturnedDefault(),
		}),
		SimpleDateTimeParams(DateTimeParams{
			Name:       "lastModified",
			Mutability: AttributeMutabilityReadOnly(),
			Returned:   AttributeReturnedDefault(),
		}),
		SimpleStringParams(StringParams{
			Name:       "location",
			Mutability: AttributeMutabilityReadOnly(),
			Returned:   AttributeReturnedDefault(),
		}),
		SimpleStringParams(StringParams{
			Name:       "version",
			Mutability: AttributeMutabilityReadOnly(),
			Returned:   AttributeReturnedDefault(),
			CaseExact:  true,
		}),
	}
}

func metaAttribute() CoreAttribute {
	return ComplexCoreAttribute(ComplexParams{
		Name:          CommonAttributeMeta,
		Mutability:    AttributeMutabilityReadOnly(),
		Returned:      AttributeReturnedDefault(),
		SubAttributes: metaSubAttributes(),
	})
}

func idAttribute() CoreAttribute {
	return SimpleCoreAttribute(SimpleStringParams(StringParams{
		Name:       CommonAttributeID,
		Mutability: AttributeMutabilityReadOnly(),
		Returned:   AttributeReturnedAlways(),
		Uniqueness: AttributeUniquenessServer(),
		CaseExact:  true,
	}))
}

func schemasAttribute() CoreAttribute {
	return SimpleCoreAttribute(SimpleStringParams(StringParams{
		Name:        CommonAttributeSchemas,
		MultiValued: true,
		Required:    true,
		Mutability:  AttributeMutabilityReadWrite(),
		Returned:    AttributeReturnedAlways(),
		CaseExact:   true,
	}))
}

// UserBootstrapSchema returns RFC 7643 §4.1's core User schema.
func UserBootstrapSchema() Schema {
	nameSub := []SimpleParams{
		SimpleStringParams(StringParams{Name: "formatted"}),
		SimpleStringParams(StringParams{Name: "familyName"}),
		SimpleStringParams(StringParams{Name: "givenName"}),
		SimpleStringParams(StringParams{Name: "middleName"}),
		SimpleStringParams(StringParams{Name: "honorificPrefix"}),
		SimpleStringParams(StringParams{Name: "honorificSuffix"}),
	}

	multiValuedString := func(name string, canonical []string) CoreAttribute {
		return SimpleCoreAttribute(SimpleStringParams(StringParams{
			Name:            name,
			MultiValued:     true,
			CanonicalValues: canonical,
		}))
	}

	multiValuedComplex := func(name string, canonical []string) CoreAttribute {
		return ComplexCoreAttribute(ComplexParams{
			Name:        name,
			MultiValued: true,
			SubAttributes: []SimpleParams{
				SimpleStringParams(StringParams{Name: "value"}),
				SimpleStringParams(StringParams{Name: "display"}),
				SimpleStringParams(StringParams{Name: "type", CanonicalValues: canonical}),
				SimpleCoreAttribute(SimpleBooleanParams(BooleanParams{Name: "primary"})).toSimpleParams(),
			},
		})
	}
	_ = multiValuedString

	return Schema{
		ID:          UserSchema,
		Name:        str("User"),
		Description: str("User Account"),
		Attributes: Attributes{
			schemasAttribute(),
			idAttribute(),
			SimpleCoreAttribute(SimpleStringParams(StringParams{
				Name:       CommonAttributeExternalID,
				CaseExact:  true,
				Mutability: AttributeMutabilityReadWrite(),
			})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{
				Name:       "userName",
				Required:   true,
				Uniqueness: AttributeUniquenessServer(),
			})),
			ComplexCoreAttribute(ComplexParams{Name: "name", SubAttributes: nameSub}),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "displayName"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "nickName"})),
			SimpleCoreAttribute(SimpleReferenceParams(ReferenceParams{
				Name:           "profileUrl",
				ReferenceTypes: []AttributeReferenceType{AttributeReferenceTypeExternal},
			})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "title"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "userType"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "preferredLanguage"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "locale"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "timezone"})),
			SimpleCoreAttribute(SimpleBooleanParams(BooleanParams{Name: "active"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{
				Name:       "password",
				Mutability: AttributeMutabilityWriteOnly(),
				Returned:   AttributeReturnedNever(),
			})),
			multiValuedComplex("emails", []string{"work", "home", "other"}),
			multiValuedComplex("phoneNumbers", []string{"work", "home", "mobile", "fax", "pager", "other"}),
			multiValuedComplex("ims", []string{"aim", "gtalk", "icq", "xmpp", "msn", "skype", "qq", "yahoo"}),
			multiValuedComplex("photos", []string{"photo", "thumbnail"}),
			multiValuedComplex("addresses", []string{"work", "home", "other"}),
			ComplexCoreAttribute(ComplexParams{
				Name:        "groups",
				MultiValued: true,
				Mutability:  AttributeMutabilityReadOnly(),
				Returned:    AttributeReturnedDefault(),
				SubAttributes: []SimpleParams{
					SimpleStringParams(StringParams{Name: "value", Mutability: AttributeMutabilityReadOnly()}),
					SimpleStringParams(StringParams{Name: "display", Mutability: AttributeMutabilityReadOnly()}),
					SimpleStringParams(StringParams{Name: "type", CanonicalValues: []string{"direct", "indirect"}, Mutability: AttributeMutabilityReadOnly()}),
				},
			}),
			multiValuedString("entitlements", nil),
			multiValuedString("roles", nil),
			multiValuedComplex("x509Certificates", nil),
			metaAttribute(),
		},
	}
}

// toSimpleParams lets a boolean CoreAttribute be embedded as a sub-attribute
// definition alongside SimpleParams literals built directly; it copies
// CoreAttribute's own unexported fields one by one.
func (a CoreAttribute) toSimpleParams() SimpleParams {
	return SimpleParams{
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
	}
}

// EnterpriseUserBootstrapSchema returns RFC 7643 §4.3's Enterprise User
// extension schema.
func EnterpriseUserBootstrapSchema() Schema {
	return Schema{
		ID:          EnterpriseUserSchema,
		Name:        str("EnterpriseUser"),
		Description: str("Enterprise User"),
		Attributes: Attributes{
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "employeeNumber"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "costCenter"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "organization"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "division"})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "department"})),
			ComplexCoreAttribute(ComplexParams{
				Name: "manager",
				SubAttributes: []SimpleParams{
					SimpleStringParams(StringParams{Name: "value"}),
					SimpleStringParams(StringParams{Name: "$ref"}),
					SimpleStringParams(StringParams{Name: "displayName", Mutability: AttributeMutabilityReadOnly()}),
				},
			}),
		},
	}
}

// GroupBootstrapSchema returns RFC 7643 §4.2's core Group schema.
func GroupBootstrapSchema() Schema {
	return Schema{
		ID:          GroupSchema,
		Name:        str("Group"),
		Description: str("Group"),
		Attributes: Attributes{
			schemasAttribute(),
			idAttribute(),
			SimpleCoreAttribute(SimpleStringParams(StringParams{
				Name:       CommonAttributeExternalID,
				CaseExact:  true,
				Mutability: AttributeMutabilityReadWrite(),
			})),
			SimpleCoreAttribute(SimpleStringParams(StringParams{Name: "displayName", Required: true})),
			ComplexCoreAttribute(ComplexParams{
				Name:        "members",
				MultiValued: true,
				SubAttributes: []SimpleParams{
					SimpleStringParams(StringParams{Name: "value"}),
					SimpleStringParams(StringParams{Name: "$ref"}),
					SimpleStringParams(StringParams{Name: "type", CanonicalValues: []string{"User", "Group"}}),
					SimpleStringParams(StringParams{Name: "display"}),
				},
			}),
			metaAttribute(),
		},
	}
}

// ServiceProviderConfigBootstrapSchema returns RFC 7643 §5's
// ServiceProviderConfig schema.
func ServiceProviderConfigBootstrapSchema() Schema {
	featureFlag := func(name string) CoreAttribute {
		return ComplexCoreAttribute(ComplexParams{
			Name: name,
			SubAttributes: []SimpleParams{
				SimpleBooleanParams(BooleanParams{Name: "supported", Required: true}),
			},
		})
	}
	return Schema{
		ID:          ServiceProviderConfigSchema,
		Name:        str("Service Provider Configuration"),
		Description: str("Schema for representing the service provider's configuration"),
		Attributes: Attributes{
			SimpleCoreAttribute(SimpleReferenceParams(ReferenceParams{Name: "documentationUri", ReferenceTypes: []AttributeReferenceType{AttributeReferenceTypeExternal}})),
			featureFlag("patch"),
			featureFlag("bulk"),
			featureFlag("filter"),
			featureFlag("changePassword"),
			featureFlag("sort"),
			featureFlag("etag"),
			ComplexCoreAttribute(ComplexParams{
				Name:        "authenticationSchemes",
				MultiValued: true,
				Required:    true,
				SubAttributes: []SimpleParams{
					SimpleStringParams(StringParams{Name: "name", Required: true}),
					SimpleStringParams(StringParams{Name: "description", Required: true}),
					SimpleReferenceParams(ReferenceParams{Name: "specUri", ReferenceTypes: []AttributeReferenceType{AttributeReferenceTypeExternal}}),
					SimpleReferenceParams(ReferenceParams{Name: "documentationUri", ReferenceTypes: []AttributeReferenceType{AttributeReferenceTypeExternal}}),
					SimpleStringParams(StringParams{Name: "type", Required: true}),
					SimpleBooleanParams(BooleanParams{Name: "primary"}),
				},
			}),
			metaAttribute(),
		},
	}
}
