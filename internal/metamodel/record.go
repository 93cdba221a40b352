package metamodel

import (
	"fmt"

	"github.com/roach88/memento/internal/ir"
)

// Record is the pojo of a type declared only in the catalog.
type Record struct {
	Type   string
	Key    string
	Fields ir.IRObject
}

// LogicalTypeName returns the declared type of the record.
func (r Record) LogicalTypeName() string { return r.Type }

// EntityID returns the record's key; empty for value records.
func (r Record) EntityID() string { return r.Key }

// Equal compares type, key and canonical field values.
func (r Record) Equal(other Record) bool {
	return r.Type == other.Type && r.Key == other.Key && ir.Equal(r.Fields, other.Fields)
}

// RecordSemantics decompose records to their field bag. The key, when the
// type declares a key field, travels inside the fields.
type RecordSemantics struct {
	logicalType string
	keyField    string
}

func (s RecordSemantics) Decompose(pojo any) (ir.IRObject, error) {
	var rec Record
	switch r := pojo.(type) {
	case Record:
		rec = r
	case *Record:
		if r == nil {
			return nil, fmt.Errorf("decompose %s: nil record", s.logicalType)
		}
		rec = *r
	default:
		return nil, fmt.Errorf("decompose %s: %T is not a record", s.logicalType, pojo)
	}
	if rec.Type != s.logicalType {
		return nil, fmt.Errorf("decompose %s: record is of type %s", s.logicalType, rec.Type)
	}
	if rec.Fields == nil {
		return ir.IRObject{}, nil
	}
	return rec.Fields.Clone(), nil
}

func (s RecordSemantics) Compose(decomposition ir.IRObject) (any, error) {
	return s.newRecord(decomposition)
}

func (s RecordSemantics) newRecord(fields ir.IRObject) (Record, error) {
	rec := Record{Type: s.logicalType, Fields: fields.Clone()}
	if rec.Fields == nil {
		rec.Fields = ir.IRObject{}
	}
	if s.keyField == "" {
		return rec, nil
	}
	switch k := rec.Fields[s.keyField].(type) {
	case ir.IRString:
		rec.Key = string(k)
	case ir.IRInt:
		rec.Key = fmt.Sprintf("%d", int64(k))
	default:
		return Record{}, fmt.Errorf("record %s: key field %q missing or not a string or int", s.logicalType, s.keyField)
	}
	if rec.Key == "" {
		return Record{}, fmt.Errorf("record %s: empty key field %q", s.logicalType, s.keyField)
	}
	return rec, nil
}
