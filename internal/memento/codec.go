package memento

import (
	"encoding/base64"
	"fmt"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/ir"
)

// FormatVersion is written as "v" into every encoded memento.
const FormatVersion = 1

const (
	kindEmpty      = "empty"
	kindScalar     = "scalar"
	kindCollection = "collection"
)

// Encode writes m as RFC 8785 canonical JSON. Equal mementos encode to
// identical bytes.
//
//	{"kind":"scalar","payload":{...},"strategy":"value","type":"acme.Money","v":1}
func Encode(m Memento) ([]byte, error) {
	if m == nil || m.isNil() {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "cannot encode a nil memento")
	}
	enc := &encoder{}
	if err := m.Accept(enc); err != nil {
		return nil, err
	}
	enc.out["v"] = ir.IRInt(FormatVersion)
	data, err := ir.MarshalCanonical(enc.out)
	if err != nil {
		return nil, newError(ErrCodeSerializationFailure, m.LogicalTypeName(), err, "encode memento")
	}
	return data, nil
}

// EncodeToken is Encode wrapped in unpadded base64url.
func EncodeToken(m Memento) (string, error) {
	data, err := Encode(m)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeToken is the inverse of EncodeToken.
func DecodeToken(token string) (Memento, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, newError(ErrCodeInvalidArgument, "", err, "malformed memento token")
	}
	return Decode(data)
}

type encoder struct {
	out ir.IRObject
}

func (e *encoder) VisitEmpty(m *Empty) error {
	e.out = encodeEmpty(m)
	return nil
}

func (e *encoder) VisitScalar(m *Scalar) error {
	e.out = encodeScalar(m)
	return nil
}

func (e *encoder) VisitCollection(m *Collection) error {
	elements := make(ir.IRArray, len(m.elements))
	for i, el := range m.elements {
		switch v := el.(type) {
		case *Empty:
			elements[i] = encodeEmpty(v)
		case *Scalar:
			elements[i] = encodeScalar(v)
		}
	}
	e.out = ir.IRObject{
		"kind":     ir.IRString(kindCollection),
		"type":     ir.IRString(m.elementType),
		"elements": elements,
	}
	return nil
}

func encodeEmpty(m *Empty) ir.IRObject {
	return ir.IRObject{
		"kind": ir.IRString(kindEmpty),
		"type": ir.IRString(m.logicalType),
	}
}

func encodeScalar(m *Scalar) ir.IRObject {
	out := ir.IRObject{
		"kind":     ir.IRString(kindScalar),
		"type":     ir.IRString(m.logicalType),
		"strategy": ir.IRString(m.payload.Strategy().String()),
	}
	switch p := m.payload.(type) {
	case ValuePayload:
		out["payload"] = p.decomposition
	case LookupPayload:
		out["key"] = ir.IRString(p.bookmark.Key())
	case SerializablePayload:
		out["bytes"] = ir.IRString(base64.StdEncoding.EncodeToString(p.data))
	}
	return out
}

// Decode reads a memento written by Encode.
func Decode(data []byte) (Memento, error) {
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, malformed(err, "not a JSON memento")
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, malformed(nil, "memento is %T, not an object", v)
	}
	if version, _ := obj["v"].(ir.IRInt); version != FormatVersion {
		return nil, malformed(nil, "unsupported format version %v", obj["v"])
	}

	kind, _ := obj.String("kind")
	if kind == kindCollection {
		c, err := decodeCollection(obj)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	el, err := decodeElement(obj)
	if err != nil {
		return nil, err
	}
	return el, nil
}

func decodeCollection(obj ir.IRObject) (*Collection, error) {
	elementType, _ := obj.String("type")
	raw, ok := obj["elements"].(ir.IRArray)
	if !ok {
		return nil, malformed(nil, "collection without elements")
	}
	elements := make([]Element, len(raw))
	for i, r := range raw {
		eo, ok := r.(ir.IRObject)
		if !ok {
			return nil, malformed(nil, "element %d is not an object", i)
		}
		el, err := decodeElement(eo)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elements[i] = el
	}
	return NewCollection(elementType, elements...)
}

func decodeElement(obj ir.IRObject) (Element, error) {
	kind, _ := obj.String("kind")
	logicalType, _ := obj.String("type")

	switch kind {
	case kindEmpty:
		return NewEmpty(logicalType)
	case kindScalar:
	default:
		return nil, malformed(nil, "unknown memento kind %q", kind)
	}

	name, _ := obj.String("strategy")
	strategy, err := ParseStrategy(name)
	if err != nil {
		return nil, malformed(err, "scalar of %s", logicalType)
	}
	switch strategy {
	case StrategyValue:
		payload, ok := obj["payload"].(ir.IRObject)
		if !ok {
			return nil, malformed(nil, "value memento of %s without payload", logicalType)
		}
		return NewValue(logicalType, payload)
	case StrategyLookup:
		key, _ := obj.String("key")
		b, err := bookmark.New(logicalType, key)
		if err != nil {
			return nil, malformed(err, "lookup memento")
		}
		return NewLookup(b)
	default:
		encoded, ok := obj.String("bytes")
		if !ok {
			return nil, malformed(nil, "serializable memento of %s without bytes", logicalType)
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, malformed(err, "serializable memento of %s", logicalType)
		}
		return NewSerializable(logicalType, data)
	}
}

func malformed(err error, format string, args ...any) *Error {
	return newError(ErrCodeInvalidArgument, "", err, "malformed memento: "+format, args...)
}
