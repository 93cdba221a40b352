// Package objects adapts pojos into managed objects and resolves bookmarks
// to live entities.
package objects

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
)

var (
	// ErrNotFound is returned when a bookmark names no stored entity.
	ErrNotFound = errors.New("objects: entity not found")
	// ErrUnknownType is returned when a bookmark's type has no specification.
	ErrUnknownType = errors.New("objects: unknown logical type")
	// ErrNotEntity is returned when an object without entity identity is
	// stored or resolved.
	ErrNotEntity = errors.New("objects: not an entity")
	// ErrInvalidKey is returned when a view model bookmark key does not hold
	// a decomposition.
	ErrInvalidKey = errors.New("objects: invalid view model key")
)

// ObjectManager is what the memento engine needs from the object store.
type ObjectManager interface {
	// Adapt wraps pojo with its specification. A nil pojo yields nil; an
	// unknown type yields an unspecified object.
	Adapt(pojo any) *metamodel.ManagedObject
	// BookmarkOf returns the bookmark of an entity with identity or of a
	// view model with semantics.
	BookmarkOf(obj *metamodel.ManagedObject) (bookmark.Bookmark, bool)
	// ResolveBookmark loads the entity or rebuilds the view model a
	// bookmark names.
	ResolveBookmark(ctx context.Context, b bookmark.Bookmark) (*metamodel.ManagedObject, error)
}

// Repository persists entity decompositions keyed by logical type and key.
// Fetch returns ErrNotFound (possibly wrapped) for missing rows.
type Repository interface {
	Fetch(ctx context.Context, logicalType, key string) (ir.IRObject, error)
	Put(ctx context.Context, logicalType, key string, decomposition ir.IRObject) error
}

// Manager is the reference ObjectManager backed by a metamodel loader and
// a Repository.
type Manager struct {
	loader *metamodel.Loader
	repo   Repository
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns a manager over loader and repo.
func NewManager(loader *metamodel.Loader, repo Repository, opts ...ManagerOption) *Manager {
	m := &Manager{loader: loader, repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ ObjectManager = (*Manager)(nil)

func (m *Manager) Adapt(pojo any) *metamodel.ManagedObject {
	if pojo == nil {
		return nil
	}
	spec, ok := m.loader.SpecificationOf(pojo)
	if !ok {
		return metamodel.Unspecified(pojo)
	}
	return metamodel.Scalar(spec, pojo)
}

func (m *Manager) BookmarkOf(obj *metamodel.ManagedObject) (bookmark.Bookmark, bool) {
	if obj == nil || obj.Variant() != metamodel.VariantScalar {
		return bookmark.Bookmark{}, false
	}
	var key string
	switch obj.Specification().Kind() {
	case metamodel.KindEntity:
		id, ok := obj.Pojo().(metamodel.Identifiable)
		if !ok || id.EntityID() == "" {
			return bookmark.Bookmark{}, false
		}
		key = id.EntityID()
	case metamodel.KindViewModel:
		k, err := viewModelKey(obj)
		if err != nil {
			m.logger.Debug("view model has no bookmark", "type", obj.LogicalTypeName(), "error", err)
			return bookmark.Bookmark{}, false
		}
		key = k
	default:
		return bookmark.Bookmark{}, false
	}
	b, err := bookmark.New(obj.LogicalTypeName(), key)
	if err != nil {
		return bookmark.Bookmark{}, false
	}
	return b, true
}

// viewModelKey encodes the canonical decomposition of a view model. The
// view model carries its whole state in the key, so nothing is stored.
func viewModelKey(obj *metamodel.ManagedObject) (string, error) {
	sem := obj.Specification().Semantics()
	if sem == nil {
		return "", fmt.Errorf("%s has no semantics", obj.Specification())
	}
	decomp, err := sem.Decompose(obj.Pojo())
	if err != nil {
		return "", err
	}
	data, err := ir.MarshalCanonical(decomp)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func (m *Manager) ResolveBookmark(ctx context.Context, b bookmark.Bookmark) (*metamodel.ManagedObject, error) {
	spec, ok := m.loader.SpecificationByName(b.LogicalTypeName())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, b.LogicalTypeName())
	}
	if spec.Semantics() == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotEntity, spec)
	}
	switch spec.Kind() {
	case metamodel.KindEntity:
	case metamodel.KindViewModel:
		return resolveViewModel(spec, b)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotEntity, spec)
	}

	decomp, err := m.repo.Fetch(ctx, b.LogicalTypeName(), b.Key())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.logger.Debug("bookmark miss", "bookmark", b.String())
		}
		return nil, fmt.Errorf("resolve %s: %w", b, err)
	}

	pojo, err := spec.Semantics().Compose(decomp)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", b, err)
	}
	return metamodel.Scalar(spec, pojo), nil
}

func resolveViewModel(spec *metamodel.Specification, b bookmark.Bookmark) (*metamodel.ManagedObject, error) {
	data, err := base64.RawURLEncoding.DecodeString(b.Key())
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w: %v", b, ErrInvalidKey, err)
	}
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w: %v", b, ErrInvalidKey, err)
	}
	decomp, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w: not an object", b, ErrInvalidKey)
	}
	pojo, err := spec.Semantics().Compose(decomp)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", b, err)
	}
	return metamodel.Scalar(spec, pojo), nil
}

// Save stores an entity pojo under its bookmark and returns the bookmark.
func (m *Manager) Save(ctx context.Context, pojo any) (bookmark.Bookmark, error) {
	obj := m.Adapt(pojo)
	if obj == nil || obj.Variant() != metamodel.VariantScalar {
		return bookmark.Bookmark{}, fmt.Errorf("%w: %T has no specification", ErrUnknownType, pojo)
	}
	b, ok := m.BookmarkOf(obj)
	if !ok || obj.Specification().Kind() != metamodel.KindEntity {
		return bookmark.Bookmark{}, fmt.Errorf("%w: %s", ErrNotEntity, obj.Specification())
	}

	decomp, err := obj.Specification().Semantics().Decompose(pojo)
	if err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("save %s: %w", b, err)
	}
	if err := m.repo.Put(ctx, b.LogicalTypeName(), b.Key(), decomp); err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("save %s: %w", b, err)
	}
	m.logger.Debug("entity saved", "bookmark", b.String())
	return b, nil
}
