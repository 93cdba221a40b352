package metamodel

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/roach88/memento/internal/ir"
)

// Semantics decompose an instance of a type into its constituent fields and
// compose an equal instance back from them.
type Semantics interface {
	Decompose(pojo any) (ir.IRObject, error)
	Compose(decomposition ir.IRObject) (any, error)
}

// JSONSemantics decomposes through the type's encoding/json representation.
// The JSON form must be an object. Nil slices, maps and pointers decompose
// to null; finite floats keep their shortest round-trip form.
type JSONSemantics struct {
	typ reflect.Type
}

// NewJSONSemantics returns semantics for t (pointers are unwrapped).
func NewJSONSemantics(t reflect.Type) JSONSemantics {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return JSONSemantics{typ: t}
}

func (s JSONSemantics) Decompose(pojo any) (ir.IRObject, error) {
	if pojo == nil {
		return nil, fmt.Errorf("decompose %s: nil pojo", s.typ)
	}
	data, err := json.Marshal(pojo)
	if err != nil {
		return nil, fmt.Errorf("decompose %s: %w", s.typ, err)
	}
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, fmt.Errorf("decompose %s: %w", s.typ, err)
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("decompose %s: JSON form is %T, not an object", s.typ, v)
	}
	return obj, nil
}

// Compose returns a value (not a pointer) of the semantics' type.
func (s JSONSemantics) Compose(decomposition ir.IRObject) (any, error) {
	data, err := ir.MarshalIRValue(decomposition)
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", s.typ, err)
	}
	ptr := reflect.New(s.typ)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("compose %s: %w", s.typ, err)
	}
	return ptr.Elem().Interface(), nil
}
