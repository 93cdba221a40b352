package memento

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts memento creation and reconstruction. A nil *Metrics
// records nothing.
type Metrics struct {
	created       *prometheus.CounterVec
	reconstructed *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. Counters
// already registered on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	created := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memento",
			Name:      "created_total",
			Help:      "Total number of mementos created, by strategy",
		},
		[]string{"strategy"},
	)
	reconstructed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memento",
			Name:      "reconstructed_total",
			Help:      "Total number of memento reconstructions, by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	var err error
	if created, err = register(reg, created); err != nil {
		return nil, err
	}
	if reconstructed, err = register(reg, reconstructed); err != nil {
		return nil, err
	}
	return &Metrics{created: created, reconstructed: reconstructed}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) observeCreated(label string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(label).Inc()
}

func (m *Metrics) observeReconstructed(variant string, err error) {
	if m == nil {
		return
	}
	m.reconstructed.WithLabelValues(variant, outcome(err)).Inc()
}

// outcome is "ok", the lower-cased error code, or "error".
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch code, _ := CodeOf(err); code {
	case ErrCodeUnresolvedType:
		return "unresolved_type"
	case ErrCodeSerializationFailure:
		return "serialization_failure"
	case ErrCodeLookupMiss:
		return "lookup_miss"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	}
	return "error"
}
