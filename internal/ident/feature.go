package ident

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/naming"
)

// Kind tells what a FeatureIdentifier addresses.
type Kind int

const (
	KindClass Kind = iota
	KindPropertyOrCollection
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "CLASS"
	case KindPropertyOrCollection:
		return "PROPERTY_OR_COLLECTION"
	case KindAction:
		return "ACTION"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FeatureIdentifier addresses a type, a property or collection of a type,
// or an action of a type with its ordered parameter class names.
//
// Identifiers are immutable values. Equality and ordering consider the
// class name, member name and parameter class names only: neither the
// logical type name nor the Kind takes part.
type FeatureIdentifier struct {
	typeID     TypeIdentifier
	memberName string
	params     []string
	kind       Kind

	fullIdentity       string
	memberIdentity     string
	translationContext string
}

func newFeatureIdentifier(t TypeIdentifier, member string, params []string, kind Kind) FeatureIdentifier {
	member = NormalizeName(member)
	normalized := make([]string, len(params))
	for i, p := range params {
		normalized[i] = NormalizeName(p)
	}
	f := FeatureIdentifier{
		typeID:     t,
		memberName: member,
		params:     normalized,
		kind:       kind,
	}

	f.memberIdentity = member
	if kind == KindAction {
		f.memberIdentity += "(" + strings.Join(f.params, ",") + ")"
	}

	f.translationContext = t.className + "#" + member
	if kind == KindAction {
		f.translationContext += "()"
	}

	if member == "" {
		f.fullIdentity = t.className
	} else {
		f.fullIdentity = t.className + "#" + f.memberIdentity
	}
	return f
}

// ClassIdentifier addresses the type itself.
func ClassIdentifier(t TypeIdentifier) FeatureIdentifier {
	return newFeatureIdentifier(t, "", nil, KindClass)
}

// PropertyOrCollectionIdentifier addresses a property or collection of t.
func PropertyOrCollectionIdentifier(t TypeIdentifier, name string) (FeatureIdentifier, error) {
	if name == "" {
		return FeatureIdentifier{}, fmt.Errorf("%w: empty property or collection name on %s", ErrInvalidArgument, t.className)
	}
	return newFeatureIdentifier(t, name, nil, KindPropertyOrCollection), nil
}

// MustPropertyOrCollectionIdentifier is like PropertyOrCollectionIdentifier
// but panics on error.
func MustPropertyOrCollectionIdentifier(t TypeIdentifier, name string) FeatureIdentifier {
	f, err := PropertyOrCollectionIdentifier(t, name)
	if err != nil {
		panic(err)
	}
	return f
}

// ActionIdentifier addresses an action of t. Parameter order is significant.
func ActionIdentifier(t TypeIdentifier, name string, paramClassNames ...string) (FeatureIdentifier, error) {
	if name == "" {
		return FeatureIdentifier{}, fmt.Errorf("%w: empty action name on %s", ErrInvalidArgument, t.className)
	}
	for i, p := range paramClassNames {
		if p == "" {
			return FeatureIdentifier{}, fmt.Errorf("%w: empty parameter class name at %d of %s#%s",
				ErrInvalidArgument, i, t.className, name)
		}
	}
	return newFeatureIdentifier(t, name, paramClassNames, KindAction), nil
}

// MustActionIdentifier is like ActionIdentifier but panics on error.
func MustActionIdentifier(t TypeIdentifier, name string, paramClassNames ...string) FeatureIdentifier {
	f, err := ActionIdentifier(t, name, paramClassNames...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f FeatureIdentifier) TypeIdentifier() TypeIdentifier { return f.typeID }
func (f FeatureIdentifier) LogicalTypeName() string { return f.typeID.logicalTypeName }
func (f FeatureIdentifier) ClassName() string { return f.typeID.className }
func (f FeatureIdentifier) MemberName() string { return f.memberName }
func (f FeatureIdentifier) Kind() Kind { return f.kind }

// ParameterClassNames returns a copy of the action's parameter class names.
func (f FeatureIdentifier) ParameterClassNames() []string { return slices.Clone(f.params) }

// FullIdentityString is "className", "className#member" or
// "className#member(p1,p2)". It follows class renames, so it must not be
// persisted.
func (f FeatureIdentifier) FullIdentityString() string { return f.fullIdentity }

// MemberIdentityString is the member name plus the parenthesized parameter
// list for actions.
func (f FeatureIdentifier) MemberIdentityString() string { return f.memberIdentity }

// TranslationContext is the key used for translated labels:
// "className#member", with "()" appended for actions.
func (f FeatureIdentifier) TranslationContext() string { return f.translationContext }

// LogicalIdentityString joins the logical type name and the member
// identity with delimiter. It is stable across class renames.
func (f FeatureIdentifier) LogicalIdentityString(delimiter string) string {
	return f.typeID.logicalTypeName + delimiter + f.memberIdentity
}

func (f FeatureIdentifier) String() string { return f.fullIdentity }

// ClassNaturalName is the display name of the simple class name.
func (f FeatureIdentifier) ClassNaturalName() string {
	return naming.NaturalName(naming.SimpleName(f.typeID.className))
}

// MemberNaturalName is the display name of the member.
func (f FeatureIdentifier) MemberNaturalName() string {
	return naming.NaturalName(f.memberName)
}

// MemberParameterClassNaturalNames returns display names of the parameter
// types, qualified names reduced to their simple name first.
func (f FeatureIdentifier) MemberParameterClassNaturalNames() []string {
	out := make([]string, len(f.params))
	for i, p := range f.params {
		out[i] = naming.NaturalName(naming.SimpleName(p))
	}
	return out
}

// Equal compares class name, member name and parameter class names.
// Kind is deliberately not compared.
func (f FeatureIdentifier) Equal(other FeatureIdentifier) bool {
	return f.typeID.className == other.typeID.className &&
		f.memberName == other.memberName &&
		slices.Equal(f.params, other.params)
}

// Compare orders identifiers by their full identity string.
// The order follows class names, not logical type names.
func (f FeatureIdentifier) Compare(other FeatureIdentifier) int {
	return strings.Compare(f.fullIdentity, other.fullIdentity)
}

// Key returns a hash over exactly the fields Equal compares, suitable as a
// map key: Equal identifiers always share a Key.
func (f FeatureIdentifier) Key() string {
	params := make(ir.IRArray, len(f.params))
	for i, p := range f.params {
		params[i] = ir.IRString(p)
	}
	canonical, err := ir.MarshalCanonical(ir.IRObject{
		"class":  ir.IRString(f.typeID.className),
		"member": ir.IRString(f.memberName),
		"params": params,
	})
	if err != nil {
		// Only strings are involved, so this cannot fail.
		panic(fmt.Sprintf("ident: canonical key: %v", err))
	}
	return ir.HashWithDomain(ir.DomainFeature, canonical)
}

// SortFeatures sorts ids in place by Compare.
func SortFeatures(ids []FeatureIdentifier) {
	slices.SortFunc(ids, FeatureIdentifier.Compare)
}
