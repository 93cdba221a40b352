package memento

import (
	"github.com/roach88/memento/internal/metamodel"
	"github.com/roach88/memento/internal/objects"
)

// Selector picks the recreate strategy of a scalar object. It tries VALUE,
// then LOOKUP, then SERIALIZABLE and commits to the first that applies.
type Selector struct {
	objects objects.ObjectManager
}

// NewSelector returns a selector consulting om for bookmarks.
func NewSelector(om objects.ObjectManager) Selector {
	return Selector{objects: om}
}

// Select captures obj, which must be a scalar managed object.
func (s Selector) Select(obj *metamodel.ManagedObject) (*Scalar, error) {
	if obj == nil || obj.Variant() != metamodel.VariantScalar {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "selector needs a scalar object")
	}
	spec := obj.Specification()
	logicalType := spec.LogicalTypeName()

	if spec.Kind() == metamodel.KindValue && spec.Semantics() != nil {
		decomp, err := spec.Semantics().Decompose(obj.Pojo())
		if err != nil {
			return nil, newError(ErrCodeSerializationFailure, logicalType, err, "decompose value")
		}
		return NewValue(logicalType, decomp)
	}

	if b, ok := s.objects.BookmarkOf(obj); ok {
		return NewLookup(b)
	}

	if s.serializable(spec, obj.Pojo()) {
		data, err := marshalPojo(obj.Pojo())
		if err != nil {
			return nil, newError(ErrCodeSerializationFailure, logicalType, err, "serialize %T", obj.Pojo())
		}
		return NewSerializable(logicalType, data)
	}

	return nil, newError(ErrCodeNotRecreatable, logicalType, nil, "%s object has no value semantics, bookmark or binary form", spec.Kind())
}

func (s Selector) serializable(spec *metamodel.Specification, pojo any) bool {
	if spec.IsRecord() {
		return false
	}
	if _, ok := binaryMarshaler(pojo); ok {
		return true
	}
	return spec.Kind() == metamodel.KindSerializable
}
