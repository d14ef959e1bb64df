package ipmatch

import (
	"fmt"
	"os"
)

const (
	// DefaultMaxChainLength is the default maximum number of entries accepted
	// in a comma-separated candidate value. Zero means no limit.
	DefaultMaxChainLength = 0

	// DefaultRangeCacheSize is the number of distinct parsed range lists a
	// Matcher keeps.
	DefaultRangeCacheSize = 128

	// DefaultClientIPHeader is the header consulted for the client_ip source.
	DefaultClientIPHeader = "Client-Ip"

	// DefaultForwardedForHeader is the header consulted for the
	// x_forwarded_for source.
	DefaultForwardedForHeader = "X-Forwarded-For"

	// RemoteAddrEnv is the environment variable used as the direct-connection
	// fallback when overrides are not allowed.
	RemoteAddrEnv = "REMOTE_ADDR"
)

// Option configures a Matcher or a Resolver.
//
// Construct options using package-provided option builder functions.
type Option func(*config) error

// config holds Matcher and Resolver configuration state.
//
// It is mutated by Option functions during construction only.
type config struct {
	rangeCacheSize int
	strictNetmasks bool

	maxChainLength     int
	lookupEnv          func(string) (string, bool)
	clientIPHeader     string
	forwardedForHeader string

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func defaultConfig() *config {
	return &config{
		rangeCacheSize:     DefaultRangeCacheSize,
		strictNetmasks:     false,
		maxChainLength:     DefaultMaxChainLength,
		lookupEnv:          os.LookupEnv,
		clientIPHeader:     DefaultClientIPHeader,
		forwardedForHeader: DefaultForwardedForHeader,
		logger:             noopLogger{},
		metrics:            noopMetrics{},
	}
}

func applyOptions(c *config, opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	validationConfig := cfg
	if cfg.useMetricsFactory {
		validationConfig = cfg.clone()
		validationConfig.metrics = noopMetrics{}
	}

	if err := validationConfig.validate(); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics

		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *config) clone() *config {
	return &config{
		rangeCacheSize:     c.rangeCacheSize,
		strictNetmasks:     c.strictNetmasks,
		maxChainLength:     c.maxChainLength,
		lookupEnv:          c.lookupEnv,
		clientIPHeader:     c.clientIPHeader,
		forwardedForHeader: c.forwardedForHeader,
		logger:             c.logger,
		metrics:            c.metrics,
		metricsFactory:     c.metricsFactory,
		useMetricsFactory:  c.useMetricsFactory,
	}
}
