// Package prometheus provides a Prometheus adapter for
// github.com/abczzz13/ipmatch.
//
// The package exposes ipmatch options that install a Prometheus-backed
// Metrics implementation on a Matcher or Resolver, using either the default
// registerer or a caller-provided registerer.
package prometheus
