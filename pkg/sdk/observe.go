package knnvote

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes reported in the status label.
const (
	statusOK     = "ok"
	statusCached = "cached"
	statusError  = "error"
)

// unknownDataset labels calls that named no registered dataset.
const unknownDataset = "unknown"

// instruments are the SDK collectors. Dataset labels only ever carry
// registered names or unknownDataset.
type instruments struct {
	calls    *prometheus.CounterVec   // operation, dataset, status
	latency  *prometheus.HistogramVec // operation, status
	datasets prometheus.Gauge
}

func newInstruments(reg prometheus.Registerer) (*instruments, error) {
	in := &instruments{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "knnvote",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation, dataset and outcome.",
		}, []string{"operation", "dataset", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "knnvote",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency; cached classifications are reported separately.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 10, 6),
		}, []string{"operation", "status"}),
		datasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "knnvote",
			Subsystem: "sdk",
			Name:      "datasets",
			Help:      "Datasets registered in the client.",
		}),
	}

	var err error
	if in.calls, err = adopt(reg, in.calls); err != nil {
		return nil, err
	}
	if in.latency, err = adopt(reg, in.latency); err != nil {
		return nil, err
	}
	if in.datasets, err = adopt(reg, in.datasets); err != nil {
		return nil, err
	}
	return in, nil
}

// adopt registers c, or returns the equal collector a previous client
// already registered on reg.
func adopt[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("knnvote: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("knnvote: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer reports SDK calls to slog and prometheus; either may be absent.
type observer struct {
	logger *slog.Logger
	inst   *instruments
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		inst, err := newInstruments(reg)
		if err != nil {
			return nil, err
		}
		o.inst = inst
	}
	return o, nil
}

// span is one SDK call in flight.
type span struct {
	obs     *observer
	op      string
	dataset string
	start   time.Time
}

// begin starts a span. dataset must already be bounded (see Client.datasetLabel).
func (o *observer) begin(op, dataset string) *span {
	return &span{obs: o, op: op, dataset: dataset, start: time.Now()}
}

// end records the call. cached marks classifications served from the result cache.
func (s *span) end(err error, cached bool) {
	if s.obs == nil {
		return
	}
	elapsed := time.Since(s.start)

	status := statusOK
	switch {
	case err != nil:
		status = statusError
	case cached:
		status = statusCached
	}

	if in := s.obs.inst; in != nil {
		in.calls.WithLabelValues(s.op, s.dataset, status).Inc()
		in.latency.WithLabelValues(s.op, status).Observe(elapsed.Seconds())
	}

	if l := s.obs.logger; l != nil {
		if err != nil {
			l.Warn("knnvote call failed", "op", s.op, "dataset", s.dataset, "elapsed", elapsed, "error", err)
			return
		}
		l.Debug("knnvote call", "op", s.op, "dataset", s.dataset, "status", status, "elapsed", elapsed)
	}
}

// datasetsChanged publishes the registry size.
func (o *observer) datasetsChanged(n int) {
	if o == nil || o.inst == nil {
		return
	}
	o.inst.datasets.Set(float64(n))
}
