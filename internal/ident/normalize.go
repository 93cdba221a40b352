package ident

import "golang.org/x/text/unicode/norm"

// NormalizeName returns name in Unicode NFC. Logical type names and member
// names are compared in this form, so a name typed with a combining accent
// matches its precomposed spelling.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
