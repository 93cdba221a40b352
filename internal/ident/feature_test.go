package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerType = MustTypeIdentifier("acme.Customer", "github.com/acme/shop.Customer")

func TestFeatureIdentifierStrings(t *testing.T) {
	tests := []struct {
		name        string
		id          FeatureIdentifier
		kind        Kind
		full        string
		member      string
		translation string
		logical     string
	}{
		{
			name:        "class",
			id:          ClassIdentifier(customerType),
			kind:        KindClass,
			full:        "github.com/acme/shop.Customer",
			member:      "",
			translation: "github.com/acme/shop.Customer#",
			logical:     "acme.Customer#",
		},
		{
			name:        "property",
			id:          MustPropertyOrCollectionIdentifier(customerType, "email"),
			kind:        KindPropertyOrCollection,
			full:        "github.com/acme/shop.Customer#email",
			member:      "email",
			translation: "github.com/acme/shop.Customer#email",
			logical:     "acme.Customer#email",
		},
		{
			name:        "action with params",
			id:          MustActionIdentifier(customerType, "placeOrder", "acme.Product", "int"),
			kind:        KindAction,
			full:        "github.com/acme/shop.Customer#placeOrder(acme.Product,int)",
			member:      "placeOrder(acme.Product,int)",
			translation: "github.com/acme/shop.Customer#placeOrder()",
			logical:     "acme.Customer#placeOrder(acme.Product,int)",
		},
		{
			name:        "action without params",
			id:          MustActionIdentifier(customerType, "archive"),
			kind:        KindAction,
			full:        "github.com/acme/shop.Customer#archive()",
			member:      "archive()",
			translation: "github.com/acme/shop.Customer#archive()",
			logical:     "acme.Customer#archive()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.id.Kind())
			assert.Equal(t, tt.full, tt.id.FullIdentityString())
			assert.Equal(t, tt.full, tt.id.String())
			assert.Equal(t, tt.member, tt.id.MemberIdentityString())
			assert.Equal(t, tt.translation, tt.id.TranslationContext())
			assert.Equal(t, tt.logical, tt.id.LogicalIdentityString("#"))
		})
	}
}

func TestLogicalIdentityStringSurvivesRename(t *testing.T) {
	renamed := MustTypeIdentifier("acme.Customer", "github.com/acme/crm.Client")

	before := MustPropertyOrCollectionIdentifier(customerType, "email")
	after := MustPropertyOrCollectionIdentifier(renamed, "email")

	assert.Equal(t, before.LogicalIdentityString("."), after.LogicalIdentityString("."))
	assert.NotEqual(t, before.FullIdentityString(), after.FullIdentityString())
	assert.False(t, before.Equal(after), "equality follows class names")
}

func TestInvalidIdentifiers(t *testing.T) {
	_, err := PropertyOrCollectionIdentifier(customerType, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ActionIdentifier(customerType, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ActionIdentifier(customerType, "placeOrder", "acme.Product", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Panics(t, func() { MustPropertyOrCollectionIdentifier(customerType, "") })
	assert.Panics(t, func() { MustActionIdentifier(customerType, "") })
}

// A property and a parameterless action share class, member and the empty
// parameter list, so they are equal although their kinds differ.
func TestEqualityIgnoresKind(t *testing.T) {
	prop := MustPropertyOrCollectionIdentifier(customerType, "orders")
	action := MustActionIdentifier(customerType, "orders")

	assert.True(t, prop.Equal(action))
	assert.True(t, action.Equal(prop))
	assert.Equal(t, prop.Key(), action.Key())
	assert.NotEqual(t, prop.Kind(), action.Kind())
}

func TestMemberNamesAreNFC(t *testing.T) {
	composed := MustActionIdentifier(customerType, "résumé", "acme.Café")
	decomposed := MustActionIdentifier(customerType, "résumé", "acme.Café")

	assert.True(t, composed.Equal(decomposed))
	assert.Equal(t, composed.Key(), decomposed.Key())
	assert.Equal(t, "résumé", decomposed.MemberName())
	assert.Equal(t, []string{"acme.Café"}, decomposed.ParameterClassNames())
}

func TestEqualityIgnoresLogicalName(t *testing.T) {
	aliased := MustTypeIdentifier("crm.Client", "github.com/acme/shop.Customer")

	a := MustPropertyOrCollectionIdentifier(customerType, "email")
	b := MustPropertyOrCollectionIdentifier(aliased, "email")

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestParameterOrderIsSignificant(t *testing.T) {
	a := MustActionIdentifier(customerType, "transfer", "acme.Account", "acme.Money")
	b := MustActionIdentifier(customerType, "transfer", "acme.Money", "acme.Account")

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestParameterClassNamesAreCopied(t *testing.T) {
	params := []string{"acme.Product", "int"}
	id := MustActionIdentifier(customerType, "placeOrder", params...)

	params[0] = "mutated"
	got := id.ParameterClassNames()
	got[1] = "mutated"

	assert.Equal(t, []string{"acme.Product", "int"}, id.ParameterClassNames())
}

func TestCompareUsesFullIdentityString(t *testing.T) {
	ids := []FeatureIdentifier{
		MustPropertyOrCollectionIdentifier(customerType, "name"),
		MustActionIdentifier(MustTypeIdentifier("zeta.Alpha", "github.com/acme/aaa.Alpha"), "run"),
		ClassIdentifier(customerType),
		MustPropertyOrCollectionIdentifier(customerType, "email"),
	}

	SortFeatures(ids)

	var got []string
	for _, id := range ids {
		got = append(got, id.String())
	}
	require.Equal(t, []string{
		"github.com/acme/aaa.Alpha#run()",
		"github.com/acme/shop.Customer",
		"github.com/acme/shop.Customer#email",
		"github.com/acme/shop.Customer#name",
	}, got)
	assert.Zero(t, ids[1].Compare(ClassIdentifier(customerType)))
}

func TestNaturalNames(t *testing.T) {
	id := MustActionIdentifier(MustTypeIdentifier("acme.Order", "github.com/acme/shop.PurchaseOrder"),
		"nextAvailableDate", "github.com/acme/shop.HTMLPage", "int")

	assert.Equal(t, "Purchase Order", id.ClassNaturalName())
	assert.Equal(t, "Next Available Date", id.MemberNaturalName())
	assert.Equal(t, []string{"HTML Page", "Int"}, id.MemberParameterClassNaturalNames())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CLASS", KindClass.String())
	assert.Equal(t, "PROPERTY_OR_COLLECTION", KindPropertyOrCollection.String())
	assert.Equal(t, "ACTION", KindAction.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
