package memento

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/metamodel"
	"github.com/roach88/memento/internal/objects"
)

// Service creates and reconstructs mementos. It holds no mutable state of
// its own and is safe for concurrent use when its collaborators are.
type Service struct {
	env      resolver
	selector Selector
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records creation and reconstruction counts on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a service resolving types through loader and
// entities through om.
func NewService(loader *metamodel.Loader, om objects.ObjectManager, opts ...Option) *Service {
	s := &Service{
		env:      resolver{loader: loader, objects: om},
		selector: NewSelector(om),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MementoForSingle captures one managed object. A nil or unspecified
// object yields a nil memento and no error. Packed objects are rejected;
// use MementoForMulti.
func (s *Service) MementoForSingle(obj *metamodel.ManagedObject) (Element, error) {
	if obj == nil {
		return nil, nil
	}
	switch obj.Variant() {
	case metamodel.VariantUnspecified:
		return nil, nil
	case metamodel.VariantPacked:
		return nil, newError(ErrCodeInvalidArgument, obj.LogicalTypeName(), nil, "packed object passed to MementoForSingle")
	case metamodel.VariantEmpty:
		m, err := NewEmpty(obj.LogicalTypeName())
		if err != nil {
			return nil, err
		}
		s.metrics.observeCreated("empty")
		return m, nil
	}

	m, err := s.selector.Select(obj)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("memento created",
		"logical_type", m.LogicalTypeName(),
		"strategy", m.Strategy().String())
	s.metrics.observeCreated(m.Strategy().String())
	return m, nil
}

// MementoForMulti captures a packed object element by element, keeping
// order and duplicates. Unspecified or nil elements become Empty mementos
// of the element type.
func (s *Service) MementoForMulti(packed *metamodel.ManagedObject) (*Collection, error) {
	if packed == nil || packed.Variant() != metamodel.VariantPacked {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "MementoForMulti needs a packed object")
	}
	elementType := packed.LogicalTypeName()

	elements := make([]Element, 0, len(packed.Elements()))
	for i, obj := range packed.Elements() {
		if obj != nil && obj.Variant() == metamodel.VariantPacked {
			return nil, newError(ErrCodeInvalidArgument, elementType, nil, "element %d: collections do not nest", i)
		}
		m, err := s.MementoForSingle(obj)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if m == nil {
			if m, err = NewEmpty(elementType); err != nil {
				return nil, err
			}
		}
		elements = append(elements, m)
	}
	return NewCollection(elementType, elements...)
}

// MementoForBookmark returns a LOOKUP memento for b without selection.
func (s *Service) MementoForBookmark(b bookmark.Bookmark) (*Scalar, error) {
	m, err := NewLookup(b)
	if err != nil {
		return nil, err
	}
	s.metrics.observeCreated(StrategyLookup.String())
	return m, nil
}

// MementoForPojo adapts pojo through the object manager and captures it.
func (s *Service) MementoForPojo(pojo any) (Element, error) {
	return s.MementoForSingle(s.env.objects.Adapt(pojo))
}

// MementoForPojos packs pojos under the element type logicalType and
// captures them. Nil pojos become Empty elements; every other pojo must be
// an instance of logicalType.
func (s *Service) MementoForPojos(logicalType string, pojos []any) (*Collection, error) {
	spec, err := s.env.specification(logicalType)
	if err != nil {
		return nil, err
	}
	elements := make([]*metamodel.ManagedObject, len(pojos))
	for i, pojo := range pojos {
		if pojo == nil {
			elements[i] = metamodel.Empty(spec)
			continue
		}
		obj := s.env.objects.Adapt(pojo)
		if obj.Variant() != metamodel.VariantScalar {
			return nil, newError(ErrCodeInvalidArgument, spec.LogicalTypeName(), nil,
				"element %d: %T has no specification", i, pojo)
		}
		if obj.LogicalTypeName() != spec.LogicalTypeName() {
			return nil, newError(ErrCodeInvalidArgument, spec.LogicalTypeName(), nil,
				"element %d is %s, not %s", i, obj.LogicalTypeName(), spec.LogicalTypeName())
		}
		elements[i] = obj
	}
	return s.MementoForMulti(metamodel.Packed(spec, elements...))
}

// ReconstructObject recreates the object a memento captured. A nil memento
// yields nil; a typed nil pointer is an invalid argument. Empty mementos give an empty managed object, collections a
// packed one in original order. Reconstruction does not change m and may
// be repeated.
func (s *Service) ReconstructObject(ctx context.Context, m Memento) (*metamodel.ManagedObject, error) {
	if m == nil {
		return nil, nil
	}
	if m.isNil() {
		return nil, newError(ErrCodeInvalidArgument, "", nil, "cannot reconstruct a nil %T", m)
	}
	r := &reconstructor{ctx: ctx, env: s.env}
	err := m.Accept(r)
	s.metrics.observeReconstructed(r.variant, err)
	if err != nil {
		s.logger.Warn("memento reconstruction failed",
			"logical_type", m.LogicalTypeName(),
			"memento", m.String(),
			"error", err)
		return nil, err
	}
	return r.result, nil
}

// reconstructor is the Visitor behind ReconstructObject.
type reconstructor struct {
	ctx     context.Context
	env     resolver
	variant string
	result  *metamodel.ManagedObject
}

func (r *reconstructor) VisitEmpty(m *Empty) error {
	r.variant = "empty"
	spec, err := r.env.specification(m.LogicalTypeName())
	if err != nil {
		return err
	}
	r.result = metamodel.Empty(spec)
	return nil
}

func (r *reconstructor) VisitScalar(m *Scalar) error {
	r.variant = "scalar"
	obj, err := m.payload.reconstruct(r.ctx, r.env, m.LogicalTypeName())
	if err != nil {
		return err
	}
	r.result = obj
	return nil
}

// VisitCollection fails the whole collection on the first failing element.
func (r *reconstructor) VisitCollection(m *Collection) error {
	r.variant = "collection"
	spec, err := r.env.specification(m.LogicalTypeName())
	if err != nil {
		return err
	}

	elements := make([]*metamodel.ManagedObject, len(m.elements))
	for i, e := range m.elements {
		inner := &reconstructor{ctx: r.ctx, env: r.env}
		if err := e.Accept(inner); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		elements[i] = inner.result
	}
	r.result = metamodel.Packed(spec, elements...)
	return nil
}
