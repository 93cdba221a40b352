package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NextAvailableDate", "Next Available Date"},
		{"HTMLPage", "HTML Page"},
		{"x", "X"},
		{"", ""},
		{"version2", "Version 2"},
		{"firstName", "First Name"},
		{"placeOrder", "Place Order"},
		{"customerID", "Customer ID"},
		{"IOError", "IO Error"},
		{"address2Line", "Address 2 Line"},
		{"item42", "Item 42"},
		{"Already Spaced", "Already Spaced"},
		{"ab", "Ab"},
		{"aB", "A B"},
		{"élan", "Élan"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NaturalName(tt.input))
		})
	}
}

func TestNaturalNameNoDoubleSpace(t *testing.T) {
	assert.Equal(t, "Next Date", NaturalName("next Date"))
}

func TestNaturalNames(t *testing.T) {
	got := NaturalNames([]string{"acmeProduct", "int", "HTMLPage"})
	assert.Equal(t, []string{"Acme Product", "Int", "HTML Page"}, got)
	assert.Empty(t, NaturalNames(nil))
}

func TestSimpleName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"github.com/acme/shop.Customer", "Customer"},
		{"java.lang.String", "String"},
		{"acme/Customer", "Customer"},
		{"int", "int"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimpleName(tt.input))
		})
	}
}
