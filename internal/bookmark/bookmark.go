// Package bookmark provides the durable identifier of a persistent entity:
// its logical type name plus a primary key rendered as a string.
package bookmark

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins the logical type name and the key in the string form.
const Separator = ":"

// ErrInvalid is returned for bookmarks with an empty type or key.
var ErrInvalid = errors.New("bookmark: invalid")

// Bookmark identifies one entity instance. The key is opaque: nothing in
// this module interprets its structure.
type Bookmark struct {
	logicalTypeName string
	key             string
}

// New builds a bookmark, rejecting empty parts. The logical type name is
// NFC normalized; the key is kept byte for byte.
func New(logicalTypeName, key string) (Bookmark, error) {
	if logicalTypeName == "" {
		return Bookmark{}, fmt.Errorf("%w: empty logical type name", ErrInvalid)
	}
	if key == "" {
		return Bookmark{}, fmt.Errorf("%w: empty key for %s", ErrInvalid, logicalTypeName)
	}
	return Bookmark{logicalTypeName: norm.NFC.String(logicalTypeName), key: key}, nil
}

// Must is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func Must(logicalTypeName, key string) Bookmark {
	b, err := New(logicalTypeName, key)
	if err != nil {
		panic(err)
	}
	return b
}

// Parse reads "<logicalTypeName>:<key>". It splits at the first separator,
// so keys may themselves contain colons.
func Parse(s string) (Bookmark, error) {
	typ, key, ok := strings.Cut(s, Separator)
	if !ok {
		return Bookmark{}, fmt.Errorf("%w: missing %q in %q", ErrInvalid, Separator, s)
	}
	return New(typ, key)
}

func (b Bookmark) LogicalTypeName() string { return b.logicalTypeName }
func (b Bookmark) Key() string { return b.key }
func (b Bookmark) IsZero() bool { return b.logicalTypeName == "" }

func (b Bookmark) String() string {
	return b.logicalTypeName + Separator + b.key
}

// Equal compares type and key.
func (b Bookmark) Equal(other Bookmark) bool {
	return b == other
}

// MarshalText implements encoding.TextMarshaler.
func (b Bookmark) MarshalText() ([]byte, error) {
	if b.IsZero() {
		return nil, fmt.Errorf("%w: zero bookmark", ErrInvalid)
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bookmark) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
