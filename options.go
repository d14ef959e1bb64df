package ipmatch

import (
	"fmt"
	"strings"
)

// WithRangeCacheSize sets how many distinct range lists a Matcher keeps in
// parsed form. Zero disables caching.
func WithRangeCacheSize(size int) Option {
	return func(c *config) error {
		c.rangeCacheSize = size
		return nil
	}
}

// WithStrictNetmasks controls whether a Matcher rejects netmasks whose set
// bits are not one contiguous leading run. By default such masks are
// accepted and reduced to their number of set bits.
func WithStrictNetmasks(strict bool) Option {
	return func(c *config) error {
		c.strictNetmasks = strict
		return nil
	}
}

// WithMaxChainLength sets the maximum number of non-empty entries accepted in
// one comma-separated candidate value. Longer values resolve to no address.
// Zero, the default, disables the limit.
func WithMaxChainLength(max int) Option {
	return func(c *config) error {
		c.maxChainLength = max
		return nil
	}
}

// WithEnvLookup sets the function used to read the REMOTE_ADDR fallback when
// overrides are not allowed and no direct-connection candidate is present.
func WithEnvLookup(lookup func(key string) (string, bool)) Option {
	return func(c *config) error {
		if lookup == nil {
			return fmt.Errorf("environment lookup cannot be nil")
		}

		c.lookupEnv = lookup
		return nil
	}
}

// WithoutEnvFallback disables the REMOTE_ADDR environment fallback.
func WithoutEnvFallback() Option {
	return func(c *config) error {
		c.lookupEnv = func(string) (string, bool) { return "", false }
		return nil
	}
}

// WithClientIPHeader sets the request header read for the client_ip source.
func WithClientIPHeader(name string) Option {
	name = strings.TrimSpace(name)

	return func(c *config) error {
		c.clientIPHeader = name
		return nil
	}
}

// WithForwardedForHeader sets the request header read for the
// x_forwarded_for source.
func WithForwardedForHeader(name string) Option {
	name = strings.TrimSpace(name)

	return func(c *config) error {
		c.forwardedForHeader = name
		return nil
	}
}

// WithLogger sets the logger implementation used for warning events.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}
