package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/memento/internal/ident"
	"github.com/roach88/memento/internal/memento"
	"github.com/roach88/memento/internal/metamodel"
	"github.com/roach88/memento/internal/objects"
	"github.com/roach88/memento/internal/store"
)

// session is the object graph behind seed, snapshot and restore: the
// catalog's specifications, the entity store and a memento service.
type session struct {
	loader  *metamodel.Loader
	store   *store.Store
	manager *objects.Manager
	service *memento.Service
	metrics *prometheus.Registry
	logger  *slog.Logger
}

// openSession loads the catalog from modelDir and opens the store at dbPath.
// Every declaration becomes a record type: the CLI binds no Go types.
func openSession(modelDir, dbPath string, logger *slog.Logger) (*session, error) {
	cat, err := metamodel.LoadCatalog(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	loader := metamodel.NewLoader(ident.NewRegistry())
	if err := loader.ApplyCatalog(cat); err != nil {
		return nil, fmt.Errorf("apply catalog: %w", err)
	}
	logger.Debug("catalog loaded", "dir", modelDir, "types", len(cat.Declarations))

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "path", dbPath)

	reg := prometheus.NewRegistry()
	metrics, err := memento.NewMetrics(reg)
	if err != nil {
		st.Close()
		return nil, err
	}

	manager := objects.NewManager(loader, st, objects.WithLogger(logger))
	return &session{
		loader:  loader,
		store:   st,
		manager: manager,
		service: memento.NewService(loader, manager,
			memento.WithLogger(logger),
			memento.WithMetrics(metrics)),
		metrics: reg,
		logger:  logger,
	}, nil
}

// spec returns the specification of a catalog type.
func (s *session) spec(logicalType string) (*metamodel.Specification, error) {
	spec, ok := s.loader.SpecificationByName(logicalType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", objects.ErrUnknownType, logicalType)
	}
	return spec, nil
}

// Close logs the session's memento counters at debug level and closes the
// store.
func (s *session) Close() error {
	if families, err := s.metrics.Gather(); err == nil {
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				attrs := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
				for _, lp := range m.GetLabel() {
					attrs = append(attrs, lp.GetName(), lp.GetValue())
				}
				s.logger.Debug("memento counter", attrs...)
			}
		}
	}
	return s.store.Close()
}
