package codegen

// onMemberName is the record member that carries the discriminated value
// for interface/union selections. Responses decode their __typename into it.
const onMemberName = "On"

// emit renders the finished graph as declarations, one record per
// OutputType in allocation order, each followed by its discriminated member
// declaration when the type owns variants.
func (g *typeGraph) emit(derives []string) ([]Decl, error) {
	decls := make([]Decl, 0, len(g.types))
	for _, outputType := range g.types {
		structDecl := &StructDecl{
			Name:        outputType.Name,
			GraphQLName: outputType.SchemaType.Name,
			Derives:     derives,
		}
		for _, field := range g.fieldsOf(outputType.ID) {
			structDecl.Fields = append(structDecl.Fields, fieldDecl(field, g.opts))
		}

		variants := g.variantsOf(outputType.ID)
		if len(variants) == 0 {
			decls = append(decls, structDecl)
			continue
		}

		for _, field := range structDecl.Fields {
			if field.Name == onMemberName {
				return nil, &NameCollisionError{
					TypeName:       outputType.Name,
					FieldName:      onMemberName,
					FirstWireName:  field.WireName,
					SecondWireName: typenameField,
					Path:           outputType.Name,
				}
			}
		}

		unionDecl := &UnionDecl{
			Name:        outputType.Name + onMemberName,
			GraphQLName: outputType.SchemaType.Name,
			Derives:     derives,
		}
		seen := make(map[string]string, len(variants))
		for _, variant := range variants {
			name := GoMemberName(variant.TagName)
			if variant.Fallback {
				// a concrete member named Other keeps its tag; the
				// synthesized arm matches no wire value and can step aside
				for {
					if _, ok := seen[name]; !ok {
						break
					}
					name += "_"
				}
			} else if first, ok := seen[name]; ok {
				return nil, &NameCollisionError{
					TypeName:       unionDecl.Name,
					FieldName:      name,
					FirstWireName:  first,
					SecondWireName: variant.TagName,
					Path:           outputType.Name,
				}
			}
			seen[name] = variant.TagName
			tag := variant.TagName
			if variant.Fallback {
				tag = name
			}
			unionDecl.Variants = append(unionDecl.Variants, VariantDecl{
				TagName: tag,
				Name:    name,
				Type:    variant.TypeName,
			})
		}

		structDecl.Fields = append(structDecl.Fields, FieldDecl{
			Name:     onMemberName,
			Type:     NamedExpr{Name: unionDecl.Name},
			WireName: typenameField,
		})
		decls = append(decls, structDecl, unionDecl)
	}
	return decls, nil
}

func fieldDecl(field OutputField, opts *Options) FieldDecl {
	decl := FieldDecl{
		Name:     field.Name,
		Type:     Decorate(NamedExpr{Name: field.TypeName}, field.Qualifiers),
		WireName: field.WireName,
		Embed:    field.Embed,
	}
	if field.Embed {
		decl.Name = field.TypeName
		decl.Type = NamedExpr{Name: field.TypeName}
	}
	if field.Deprecated && opts.Deprecation == DeprecationWarn {
		decl.Deprecated = true
		decl.DeprecationReason = field.DeprecationReason
	}
	return decl
}

// Decorate wraps base in pointer and slice layers following the qualifier
// sequence. Iteration runs innermost to outermost so the first qualifier
// ends up applied last, on the outside.
func Decorate(base TypeExpr, qualifiers []Qualifier) TypeExpr {
	expr := base
	nonNull := false
	for i := len(qualifiers) - 1; i >= 0; i-- {
		switch qualifiers[i] {
		case QualifierRequired:
			nonNull = true
		case QualifierOptional:
			nonNull = false
		case QualifierList:
			if !nonNull {
				expr = PointerExpr{Elem: expr}
			}
			expr = SliceExpr{Elem: expr}
			nonNull = false
		}
	}
	if !nonNull {
		expr = PointerExpr{Elem: expr}
	}
	return expr
}
