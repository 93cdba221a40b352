package bookmark

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// KeyCodec converts typed primary keys to and from bookmark key strings.
type KeyCodec[K any] interface {
	Enstring(K) string
	Destring(string) (K, error)
}

// StringKeys is the identity codec.
var StringKeys KeyCodec[string] = stringKeys{}

// Int64Keys renders integer keys in base 10.
var Int64Keys KeyCodec[int64] = int64Keys{}

// UUIDKeys renders UUID keys in canonical hyphenated form.
var UUIDKeys KeyCodec[uuid.UUID] = uuidKeys{}

type stringKeys struct{}

func (stringKeys) Enstring(k string) string { return k }

func (stringKeys) Destring(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalid)
	}
	return s, nil
}

type int64Keys struct{}

func (int64Keys) Enstring(k int64) string { return strconv.FormatInt(k, 10) }

func (int64Keys) Destring(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: int64 key %q: %v", ErrInvalid, s, err)
	}
	return n, nil
}

type uuidKeys struct{}

func (uuidKeys) Enstring(k uuid.UUID) string { return k.String() }

func (uuidKeys) Destring(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: uuid key %q: %v", ErrInvalid, s, err)
	}
	return id, nil
}

// Of builds a bookmark from a typed key.
func Of[K any](logicalTypeName string, codec KeyCodec[K], key K) (Bookmark, error) {
	return New(logicalTypeName, codec.Enstring(key))
}

// KeyOf decodes the key of b with codec.
func KeyOf[K any](b Bookmark, codec KeyCodec[K]) (K, error) {
	return codec.Destring(b.key)
}
