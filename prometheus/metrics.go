package prometheus

import (
	"errors"
	"fmt"

	"github.com/abczzz13/ipmatch"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	rangeChecksMetric    = "ipmatch_range_checks_total"
	rangeSkippedMetric   = "ipmatch_range_skipped_total"
	clientAddressMetric  = "ipmatch_client_address_total"
	securityEventsMetric = "ipmatch_security_events_total"
)

// PrometheusMetrics is a Prometheus-backed implementation of ipmatch.Metrics.
type PrometheusMetrics struct {
	rangeChecks    *prom.CounterVec
	rangeSkipped   *prom.CounterVec
	clientAddress  *prom.CounterVec
	securityEvents *prom.CounterVec
}

// WithMetrics returns an ipmatch option that installs Prometheus-backed
// metrics using prom.DefaultRegisterer.
func WithMetrics() ipmatch.Option {
	return withMetricsFactory(New)
}

// WithRegisterer returns an ipmatch option that installs Prometheus-backed
// metrics using the provided registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used.
func WithRegisterer(registerer prom.Registerer) ipmatch.Option {
	return withMetricsFactory(func() (*PrometheusMetrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// withMetricsFactory adapts a PrometheusMetrics constructor into an
// ipmatch.Option. Collectors are registered only when the option wins.
func withMetricsFactory(factory func() (*PrometheusMetrics, error)) ipmatch.Option {
	return ipmatch.WithMetricsFactory(func() (ipmatch.Metrics, error) {
		metrics, err := factory()
		if err != nil {
			return nil, err
		}
		return metrics, nil
	})
}

// New creates PrometheusMetrics and registers its collectors on
// prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(prom.DefaultRegisterer)
}

// NewWithRegisterer creates PrometheusMetrics and registers its collectors on
// the given registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used. If the metrics are
// already registered, existing compatible collectors are reused.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	rangeChecks, err := registerCounterVec(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: rangeChecksMetric,
			Help: "Total number of range membership checks by result (match, no_match, rejected).",
		},
		[]string{"result"},
	), rangeChecksMetric)
	if err != nil {
		return nil, err
	}

	rangeSkipped, err := registerCounterVec(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: rangeSkippedMetric,
			Help: "Range tokens skipped while parsing range lists, labeled by reason.",
		},
		[]string{"reason"},
	), rangeSkippedMetric)
	if err != nil {
		return nil, err
	}

	clientAddress, err := registerCounterVec(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: clientAddressMetric,
			Help: "Total number of client address resolutions by winning source (remote_addr, client_ip, x_forwarded_for, environment, none) and result (resolved, empty).",
		},
		[]string{"source", "result"},
	), clientAddressMetric)
	if err != nil {
		return nil, err
	}

	securityEvents, err := registerCounterVec(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: securityEventsMetric,
			Help: "Security-related events during range checks and address resolution, labeled by event.",
		},
		[]string{"event"},
	), securityEventsMetric)
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{
		rangeChecks:    rangeChecks,
		rangeSkipped:   rangeSkipped,
		clientAddress:  clientAddress,
		securityEvents: securityEvents,
	}, nil
}

func registerCounterVec(registerer prom.Registerer, collector *prom.CounterVec, metricName string) (*prom.CounterVec, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prom.CounterVec)
			if ok {
				return existing, nil
			}
			return nil, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		return nil, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

// RecordRangeCheck increments ipmatch_range_checks_total for result.
func (m *PrometheusMetrics) RecordRangeCheck(result string) {
	m.rangeChecks.WithLabelValues(result).Inc()
}

// RecordRangeSkipped increments ipmatch_range_skipped_total for reason.
func (m *PrometheusMetrics) RecordRangeSkipped(reason string) {
	m.rangeSkipped.WithLabelValues(reason).Inc()
}

// RecordResolution increments ipmatch_client_address_total for the winning
// source and result.
func (m *PrometheusMetrics) RecordResolution(source, result string) {
	m.clientAddress.WithLabelValues(source, result).Inc()
}

// RecordSecurityEvent increments ipmatch_security_events_total for the
// provided event label.
func (m *PrometheusMetrics) RecordSecurityEvent(event string) {
	m.securityEvents.WithLabelValues(event).Inc()
}
