package objects

import (
	"context"
	"encoding/base64"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/ident"
	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
)

type customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c customer) EntityID() string { return c.ID }

type cursor struct {
	Pos   int      `json:"pos"`
	Sort  []string `json:"sort"`
	Scale float64  `json:"scale"`
}

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func setup(t *testing.T) (*Manager, *Memory) {
	t.Helper()
	loader := metamodel.NewLoader(ident.NewRegistry())
	loader.MustDefine(reflect.TypeFor[customer](), metamodel.WithLogicalName("acme.Customer"))
	loader.MustDefine(reflect.TypeFor[money](), metamodel.WithLogicalName("acme.Money"))
	loader.MustDefine(reflect.TypeFor[cursor](),
		metamodel.WithLogicalName("acme.Cursor"),
		metamodel.WithKind(metamodel.KindViewModel))
	mem := NewMemory()
	return NewManager(loader, mem), mem
}

func TestAdapt(t *testing.T) {
	m, _ := setup(t)

	assert.Nil(t, m.Adapt(nil))

	obj := m.Adapt(customer{ID: "c-1"})
	require.NotNil(t, obj)
	assert.Equal(t, metamodel.VariantScalar, obj.Variant())
	assert.Equal(t, "acme.Customer", obj.LogicalTypeName())

	unknown := m.Adapt(struct{ X int }{1})
	assert.Equal(t, metamodel.VariantUnspecified, unknown.Variant())
}

func TestBookmarkOf(t *testing.T) {
	m, _ := setup(t)

	b, ok := m.BookmarkOf(m.Adapt(customer{ID: "c-1"}))
	require.True(t, ok)
	assert.Equal(t, bookmark.Must("acme.Customer", "c-1"), b)

	tests := []struct {
		name string
		obj  *metamodel.ManagedObject
	}{
		{"nil", nil},
		{"value type", m.Adapt(money{Amount: "1.00", Currency: "USD"})},
		{"transient entity", m.Adapt(customer{})},
		{"unspecified", m.Adapt(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.BookmarkOf(tt.obj)
			assert.False(t, ok)
		})
	}
}

func TestSaveAndResolve(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	b, err := m.Save(ctx, customer{ID: "c-1", Name: "Alice"})
	require.NoError(t, err)

	obj, err := m.ResolveBookmark(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, customer{ID: "c-1", Name: "Alice"}, obj.Pojo())
}

func TestViewModelBookmark(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   cursor
	}{
		{"zero", cursor{}},
		{"sorted", cursor{Pos: 7, Sort: []string{"name", "-created"}, Scale: 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := m.BookmarkOf(m.Adapt(tt.in))
			require.True(t, ok)
			assert.Equal(t, "acme.Cursor", b.LogicalTypeName())

			again, ok := m.BookmarkOf(m.Adapt(tt.in))
			require.True(t, ok)
			assert.Equal(t, b, again)

			obj, err := m.ResolveBookmark(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, tt.in, obj.Pojo())
		})
	}

	_, err := m.Save(ctx, cursor{Pos: 1})
	assert.ErrorIs(t, err, ErrNotEntity)
}

func TestViewModelBadKeys(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	keys := []string{
		"not base64!",
		base64.RawURLEncoding.EncodeToString([]byte("{{")),
		base64.RawURLEncoding.EncodeToString([]byte("[1,2]")),
	}
	for _, key := range keys {
		_, err := m.ResolveBookmark(ctx, bookmark.Must("acme.Cursor", key))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestResolveErrors(t *testing.T) {
	m, mem := setup(t)
	ctx := context.Background()

	_, err := m.ResolveBookmark(ctx, bookmark.Must("acme.Customer", "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.ResolveBookmark(ctx, bookmark.Must("acme.Unknown", "1"))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = m.ResolveBookmark(ctx, bookmark.Must("acme.Money", "1"))
	assert.ErrorIs(t, err, ErrNotEntity)

	require.NoError(t, mem.Put(ctx, "acme.Customer", "bad", ir.IRObject{"id": ir.IRInt(1)}))
	_, err = m.ResolveBookmark(ctx, bookmark.Must("acme.Customer", "bad"))
	assert.Error(t, err)
}

func TestSaveErrors(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	_, err := m.Save(ctx, 42)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = m.Save(ctx, money{Amount: "1.00"})
	assert.ErrorIs(t, err, ErrNotEntity)
}

func TestMemoryIsolatesRows(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	row := ir.IRObject{"name": ir.IRString("Alice")}

	require.NoError(t, mem.Put(ctx, "acme.Customer", "c-1", row))
	row["name"] = ir.IRString("Mallory")

	got, err := mem.Fetch(ctx, "acme.Customer", "c-1")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("Alice"), got["name"])

	got["name"] = ir.IRString("Eve")
	again, err := mem.Fetch(ctx, "acme.Customer", "c-1")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("Alice"), again["name"])

	mem.Delete("acme.Customer", "c-1")
	_, err = mem.Fetch(ctx, "acme.Customer", "c-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
