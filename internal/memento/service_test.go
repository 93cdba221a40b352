package memento

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memento/internal/bookmark"
	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
)

func TestMoneyScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.MementoForSingle(f.manager.Adapt(tenDollars()))
	require.NoError(t, err)

	scalar, ok := m.(*Scalar)
	require.True(t, ok, "want *Scalar, got %T", m)
	assert.Equal(t, StrategyValue, scalar.Strategy())
	assert.Equal(t, "acme.Money", scalar.LogicalTypeName())

	payload, ok := scalar.Payload().(ValuePayload)
	require.True(t, ok)
	assert.Equal(t, ir.IRObject{
		"amount":   ir.IRString("10.00"),
		"currency": ir.IRString("USD"),
	}, payload.Decomposition())

	obj, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, metamodel.VariantScalar, obj.Variant())
	assert.Equal(t, tenDollars(), obj.Pojo())
}

func TestValueRoundTrip(t *testing.T) {
	note := "sensor recalibrated"
	tests := []struct {
		name string
		pojo any
	}{
		{"zero amount", money{Amount: "0.00", Currency: "EUR"}},
		{"negative amount", money{Amount: "-3.50", Currency: "GBP"}},
		{"large amount", money{Amount: "1000000.01", Currency: "JPY"}},
		{"zero value", money{}},
		{"nil slice and pointers", reading{Celsius: 21.5, Label: "lab"}},
		{"empty slice", reading{Label: "lab", Tags: []string{}}},
		{"set pointer", reading{Label: "lab", Note: &note}},
		{"fractional float", reading{Celsius: 0.1 + 0.2}},
		{"tiny float", reading{Celsius: 1.5e-9}},
		{"negative whole float", reading{Celsius: -40}},
		{"decomposed accent", reading{Label: "cafe\u0301"}},
		{"composed accent", reading{Label: "caf\u00e9"}},
		{"nested struct", reading{
			Celsius: 18.25,
			Tags:    []string{"outdoor", "roof"},
			Where:   &place{City: "Zürich", Lat: 47.3769},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			m, err := f.svc.MementoForPojo(tt.pojo)
			require.NoError(t, err)
			assert.Equal(t, StrategyValue, m.(*Scalar).Strategy())

			obj, err := f.svc.ReconstructObject(ctx, m)
			require.NoError(t, err)
			assert.Equal(t, tt.pojo, obj.Pojo())

			token, err := EncodeToken(m)
			require.NoError(t, err)
			decoded, err := DecodeToken(token)
			require.NoError(t, err)
			assert.True(t, m.Equal(decoded))

			obj, err = f.svc.ReconstructObject(ctx, decoded)
			require.NoError(t, err)
			assert.Equal(t, tt.pojo, obj.Pojo())
		})
	}
}

func TestValueKeepsNormalizationForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	decomposed := money{Amount: "1.00", Currency: "e\u0301"}
	composed := money{Amount: "1.00", Currency: "\u00e9"}

	a, err := f.svc.MementoForPojo(decomposed)
	require.NoError(t, err)
	b, err := f.svc.MementoForPojo(composed)
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())

	token, err := EncodeToken(a)
	require.NoError(t, err)
	decoded, err := DecodeToken(token)
	require.NoError(t, err)

	obj, err := f.svc.ReconstructObject(ctx, decoded)
	require.NoError(t, err)
	got := obj.Pojo().(money)
	assert.Equal(t, []byte("e\u0301"), []byte(got.Currency))
}

func TestValueFromPointer(t *testing.T) {
	f := newFixture(t)

	v := tenDollars()
	byPtr, err := f.svc.MementoForPojo(&v)
	require.NoError(t, err)
	byVal, err := f.svc.MementoForPojo(v)
	require.NoError(t, err)

	assert.True(t, byPtr.Equal(byVal))

	obj, err := f.svc.ReconstructObject(context.Background(), byPtr)
	require.NoError(t, err)
	assert.Equal(t, v, obj.Pojo())
}

func TestLookupRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.manager.Save(ctx, customer{ID: "c-1", Name: "Alice"})
	require.NoError(t, err)

	m, err := f.svc.MementoForBookmark(b)
	require.NoError(t, err)
	assert.Equal(t, StrategyLookup, m.Strategy())

	got, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)
	want, err := f.manager.ResolveBookmark(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, want.Pojo(), got.Pojo())
	assert.Equal(t, want.LogicalTypeName(), got.LogicalTypeName())
}

func TestEntitySelectsLookup(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.MementoForPojo(customer{ID: "c-7", Name: "Bob"})
	require.NoError(t, err)

	scalar := m.(*Scalar)
	assert.Equal(t, StrategyLookup, scalar.Strategy())
	assert.Equal(t, bookmark.Must("acme.Customer", "c-7"), scalar.Payload().(LookupPayload).Bookmark())
}

func TestRecordEntityRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := orderRecord("o-1", "12.00")
	_, err := f.manager.Save(ctx, order)
	require.NoError(t, err)

	m, err := f.svc.MementoForPojo(order)
	require.NoError(t, err)
	assert.Equal(t, StrategyLookup, m.(*Scalar).Strategy())

	obj, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)
	got, ok := obj.Pojo().(metamodel.Record)
	require.True(t, ok)
	assert.True(t, order.Equal(got))
}

func TestSerializableRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pojo any
	}{
		{"binary marshaler", sessionToken{raw: "s3cr3t"}},
		{"binary marshaler by pointer", &sessionToken{raw: "s3cr3t"}},
		{"gob", gridPoint{X: 3, Y: -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			m, err := f.svc.MementoForPojo(tt.pojo)
			require.NoError(t, err)
			assert.Equal(t, StrategySerializable, m.(*Scalar).Strategy())

			obj, err := f.svc.ReconstructObject(context.Background(), m)
			require.NoError(t, err)

			want := tt.pojo
			if p, ok := want.(*sessionToken); ok {
				want = *p
			}
			assert.Equal(t, want, obj.Pojo())
		})
	}
}

func TestSerializationFailure(t *testing.T) {
	f := newFixture(t)

	m, err := NewSerializable("acme.GridPoint", []byte("not gob"))
	require.NoError(t, err)

	_, err = f.svc.ReconstructObject(context.Background(), m)
	require.Error(t, err)
	assert.True(t, IsSerializationFailure(err), "got %v", err)
}

func TestNotRecreatable(t *testing.T) {
	tests := []struct {
		name string
		pojo any
	}{
		{"view model without semantics", panel{Title: "Orders"}},
		{"entity without identity", customer{Name: "Anonymous"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			m, err := f.svc.MementoForPojo(tt.pojo)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, IsNotRecreatable(err), "got %v", err)
		})
	}
}

func TestMementoForSingle(t *testing.T) {
	f := newFixture(t)
	moneySpec := f.spec(t, "acme.Money")

	t.Run("nil", func(t *testing.T) {
		m, err := f.svc.MementoForSingle(nil)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("unspecified", func(t *testing.T) {
		m, err := f.svc.MementoForSingle(f.manager.Adapt(struct{ N int }{1}))
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("empty", func(t *testing.T) {
		m, err := f.svc.MementoForSingle(metamodel.Empty(moneySpec))
		require.NoError(t, err)
		empty, ok := m.(*Empty)
		require.True(t, ok)
		assert.Equal(t, "acme.Money", empty.LogicalTypeName())
	})

	t.Run("packed", func(t *testing.T) {
		_, err := f.svc.MementoForSingle(metamodel.Packed(moneySpec))
		assert.True(t, IsInvalidArgument(err), "got %v", err)
	})
}

func TestMementoForBookmarkRejectsZero(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MementoForBookmark(bookmark.Bookmark{})
	assert.True(t, IsInvalidArgument(err), "got %v", err)
}

func TestCollectionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := customer{ID: "c-1", Name: "Alice"}
	c2 := customer{ID: "c-2", Name: "Bob"}
	for _, c := range []customer{c1, c2} {
		_, err := f.manager.Save(ctx, c)
		require.NoError(t, err)
	}

	m, err := f.svc.MementoForPojos("acme.Customer", []any{c2, c1, c2})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "acme.Customer", m.LogicalTypeName())

	obj, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, metamodel.VariantPacked, obj.Variant())
	assert.Equal(t, []any{c2, c1, c2}, obj.Pojos())
}

func TestCollectionMixedStrategies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := customer{ID: "c-1", Name: "Alice"}
	_, err := f.manager.Save(ctx, c1)
	require.NoError(t, err)

	packed := metamodel.Packed(f.spec(t, "acme.Money"),
		f.manager.Adapt(tenDollars()),
		f.manager.Adapt(c1),
		f.manager.Adapt(sessionToken{raw: "t"}),
		metamodel.Unspecified(struct{}{}),
		nil,
	)
	m, err := f.svc.MementoForMulti(packed)
	require.NoError(t, err)

	elements := m.Elements()
	require.Len(t, elements, 5)
	assert.Equal(t, StrategyValue, elements[0].(*Scalar).Strategy())
	assert.Equal(t, StrategyLookup, elements[1].(*Scalar).Strategy())
	assert.Equal(t, StrategySerializable, elements[2].(*Scalar).Strategy())
	assert.IsType(t, &Empty{}, elements[3])
	assert.IsType(t, &Empty{}, elements[4])
	assert.Equal(t, "acme.Money", elements[3].LogicalTypeName())

	obj, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)

	got := obj.Elements()
	require.Len(t, got, 5)
	assert.Equal(t, tenDollars(), got[0].Pojo())
	assert.Equal(t, c1, got[1].Pojo())
	assert.Equal(t, sessionToken{raw: "t"}, got[2].Pojo())
	assert.Equal(t, metamodel.VariantEmpty, got[3].Variant())
	assert.Equal(t, metamodel.VariantEmpty, got[4].Variant())
}

func TestMementoForMultiRejectsNesting(t *testing.T) {
	f := newFixture(t)
	spec := f.spec(t, "acme.Money")

	_, err := f.svc.MementoForMulti(metamodel.Packed(spec, metamodel.Packed(spec)))
	assert.True(t, IsInvalidArgument(err), "got %v", err)

	_, err = f.svc.MementoForMulti(f.manager.Adapt(tenDollars()))
	assert.True(t, IsInvalidArgument(err), "got %v", err)
}

func TestMementoForPojosNilBecomesEmpty(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.MementoForPojos("acme.Money", []any{tenDollars(), nil})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	assert.IsType(t, &Empty{}, m.Elements()[1])

	_, err = f.svc.MementoForPojos("acme.Nope", nil)
	assert.True(t, IsUnresolvedType(err), "got %v", err)
}

func TestMementoForPojosRejectsForeignElements(t *testing.T) {
	tests := []struct {
		name  string
		pojos []any
		want  string
	}{
		{"other type", []any{tenDollars(), customer{ID: "c-1"}}, "element 1 is acme.Customer, not acme.Money"},
		{"unspecified", []any{struct{ N int }{1}}, "element 0"},
		{"value of other type", []any{nil, reading{Celsius: 1}}, "element 1 is acme.Reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			m, err := f.svc.MementoForPojos("acme.Money", tt.pojos)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestViewModelRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		pojo cursor
	}{
		{"position only", cursor{Pos: 4}},
		{"with filter", cursor{Pos: 12, Filter: "status = 'open' & owner:me"}},
		{"zero", cursor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := f.svc.MementoForPojo(tt.pojo)
			require.NoError(t, err)

			scalar := m.(*Scalar)
			assert.Equal(t, StrategyLookup, scalar.Strategy())
			lookup, ok := scalar.Payload().(LookupPayload)
			require.True(t, ok)
			assert.Equal(t, "acme.Cursor", lookup.Bookmark().LogicalTypeName())

			token, err := EncodeToken(m)
			require.NoError(t, err)
			decoded, err := DecodeToken(token)
			require.NoError(t, err)

			obj, err := f.svc.ReconstructObject(ctx, decoded)
			require.NoError(t, err)
			assert.Equal(t, tt.pojo, obj.Pojo())
		})
	}

	same, err := f.svc.MementoForPojo(cursor{Pos: 4})
	require.NoError(t, err)
	other, err := f.svc.MementoForPojo(cursor{Pos: 5})
	require.NoError(t, err)
	again, err := f.svc.MementoForPojo(cursor{Pos: 4})
	require.NoError(t, err)
	assert.True(t, same.Equal(again))
	assert.False(t, same.Equal(other))
}

func TestViewModelBadKey(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.MementoForBookmark(bookmark.Must("acme.Cursor", "not base64!"))
	require.NoError(t, err)

	_, err = f.svc.ReconstructObject(context.Background(), m)
	require.Error(t, err)
	assert.True(t, IsSerializationFailure(err), "got %v", err)
}

func TestTypedNilMementos(t *testing.T) {
	tests := []struct {
		name string
		m    Memento
	}{
		{"empty", (*Empty)(nil)},
		{"scalar", (*Scalar)(nil)},
		{"collection", (*Collection)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			obj, err := f.svc.ReconstructObject(context.Background(), tt.m)
			require.Error(t, err)
			assert.Nil(t, obj)
			assert.True(t, IsInvalidArgument(err), "got %v", err)

			_, err = Encode(tt.m)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
		})
	}

	_, err := NewCollection("acme.Money", (*Scalar)(nil))
	assert.True(t, IsInvalidArgument(err), "got %v", err)
}

func TestLookupMissFailsCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := customer{ID: "c-1", Name: "Alice"}
	c2 := customer{ID: "c-2", Name: "Bob"}
	for _, c := range []customer{c1, c2} {
		_, err := f.manager.Save(ctx, c)
		require.NoError(t, err)
	}
	m, err := f.svc.MementoForPojos("acme.Customer", []any{c1, c2})
	require.NoError(t, err)

	f.repo.Delete("acme.Customer", "c-2")

	obj, err := f.svc.ReconstructObject(ctx, m)
	require.Error(t, err)
	assert.Nil(t, obj)
	assert.True(t, IsLookupMiss(err), "got %v", err)
	assert.Contains(t, err.Error(), "element 1")
}

func TestLookupMissSingle(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.MementoForBookmark(bookmark.Must("acme.Customer", "gone"))
	require.NoError(t, err)

	_, err = f.svc.ReconstructObject(context.Background(), m)
	assert.True(t, IsLookupMiss(err), "got %v", err)

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "acme.Customer", me.LogicalType)
}

func TestUnresolvedType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := NewEmpty("acme.Removed")
	require.NoError(t, err)
	value, err := NewValue("acme.Removed", ir.IRObject{"a": ir.IRString("b")})
	require.NoError(t, err)
	lookup, err := NewLookup(bookmark.Must("acme.Removed", "1"))
	require.NoError(t, err)
	serial, err := NewSerializable("acme.Removed", []byte{1})
	require.NoError(t, err)
	coll, err := NewCollection("acme.Removed")
	require.NoError(t, err)

	for _, m := range []Memento{empty, value, lookup, serial, coll} {
		t.Run(m.String(), func(t *testing.T) {
			_, err := f.svc.ReconstructObject(ctx, m)
			assert.True(t, IsUnresolvedType(err), "got %v", err)
		})
	}
}

func TestReconstructNil(t *testing.T) {
	f := newFixture(t)

	obj, err := f.svc.ReconstructObject(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestReconstructIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Save(ctx, customer{ID: "c-1", Name: "Alice"})
	require.NoError(t, err)

	m, err := f.svc.MementoForPojos("acme.Customer", []any{customer{ID: "c-1", Name: "Alice"}, nil})
	require.NoError(t, err)
	before, err := Encode(m)
	require.NoError(t, err)

	first, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)
	second, err := f.svc.ReconstructObject(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, first.Pojos(), second.Pojos())
	after, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConcurrentReconstruct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.MementoForPojo(tenDollars())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obj, err := f.svc.ReconstructObject(ctx, m)
			if err == nil && obj.Pojo() != tenDollars() {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
