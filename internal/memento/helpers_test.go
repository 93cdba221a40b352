package memento

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/roach88/memento/internal/ident"
	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/metamodel"
	"github.com/roach88/memento/internal/objects"
)

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (money) LogicalTypeName() string { return "acme.Money" }

type customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c customer) EntityID() string { return c.ID }

type sessionToken struct{ raw string }

func (t sessionToken) MarshalBinary() ([]byte, error) { return []byte(t.raw), nil }

func (t *sessionToken) UnmarshalBinary(data []byte) error {
	t.raw = string(data)
	return nil
}

type gridPoint struct {
	X, Y int
}

type cursor struct {
	Pos    int    `json:"pos"`
	Filter string `json:"filter,omitempty"`
}

// panel is a view model with no semantics to rebuild it from.
type panel struct{ Title string }

type place struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
}

type reading struct {
	Celsius float64  `json:"celsius"`
	Label   string   `json:"label"`
	Tags    []string `json:"tags"`
	Note    *string  `json:"note"`
	Where   *place   `json:"where"`
}

// fixture wires a loader, an in-memory object manager and a service.
type fixture struct {
	loader  *metamodel.Loader
	repo    *objects.Memory
	manager *objects.Manager
	svc     *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := metamodel.NewLoader(ident.NewRegistry())
	loader.MustDefine(reflect.TypeFor[money]())
	loader.MustDefine(reflect.TypeFor[customer](), metamodel.WithLogicalName("acme.Customer"))
	loader.MustDefine(reflect.TypeFor[sessionToken](), metamodel.WithLogicalName("acme.Token"))
	loader.MustDefine(reflect.TypeFor[gridPoint](),
		metamodel.WithLogicalName("acme.GridPoint"),
		metamodel.WithKind(metamodel.KindSerializable))
	loader.MustDefine(reflect.TypeFor[cursor](),
		metamodel.WithLogicalName("acme.Cursor"),
		metamodel.WithKind(metamodel.KindViewModel))
	loader.MustDefine(reflect.TypeFor[panel](),
		metamodel.WithLogicalName("acme.Panel"),
		metamodel.WithKind(metamodel.KindViewModel),
		metamodel.WithoutSemantics())
	loader.MustDefine(reflect.TypeFor[reading](), metamodel.WithLogicalName("acme.Reading"))
	if _, err := loader.DefineRecord(metamodel.Declaration{
		Name:       "acme.Order",
		Class:      "acme.Order",
		Kind:       "entity",
		Key:        "id",
		Properties: []string{"id", "total"},
	}); err != nil {
		t.Fatalf("DefineRecord() failed: %v", err)
	}

	repo := objects.NewMemory()
	manager := objects.NewManager(loader, repo, objects.WithLogger(logger))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return &fixture{
		loader:  loader,
		repo:    repo,
		manager: manager,
		svc:     NewService(loader, manager, opts...),
	}
}

func (f *fixture) spec(t *testing.T, name string) *metamodel.Specification {
	t.Helper()
	spec, ok := f.loader.SpecificationByName(name)
	if !ok {
		t.Fatalf("no specification for %s", name)
	}
	return spec
}

func tenDollars() money { return money{Amount: "10.00", Currency: "USD"} }

func orderRecord(id, total string) metamodel.Record {
	return metamodel.Record{
		Type: "acme.Order",
		Key:  id,
		Fields: ir.IRObject{
			"id":    ir.IRString(id),
			"total": ir.IRString(total),
		},
	}
}
