package ipmatch

import (
	"fmt"
	"net/textproto"
	"reflect"
	"strings"
)

func (c *config) validate() error {
	if c.rangeCacheSize < 0 {
		return fmt.Errorf("rangeCacheSize must be >= 0, got %d", c.rangeCacheSize)
	}
	if c.maxChainLength < 0 {
		return fmt.Errorf("maxChainLength must be >= 0, got %d", c.maxChainLength)
	}
	if c.lookupEnv == nil {
		return fmt.Errorf("environment lookup cannot be nil")
	}

	if err := c.validateHeaders(); err != nil {
		return err
	}

	if isNilLogger(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilMetrics(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

func (c *config) validateHeaders() error {
	clientIP := strings.TrimSpace(c.clientIPHeader)
	forwardedFor := strings.TrimSpace(c.forwardedForHeader)

	if clientIP == "" {
		return fmt.Errorf("client IP header name cannot be empty")
	}
	if forwardedFor == "" {
		return fmt.Errorf("forwarded-for header name cannot be empty")
	}
	if textproto.CanonicalMIMEHeaderKey(clientIP) == textproto.CanonicalMIMEHeaderKey(forwardedFor) {
		return fmt.Errorf("client IP and forwarded-for sources cannot share header %q", clientIP)
	}

	return nil
}

func isNilLogger(logger Logger) bool {
	return isNilInterface(logger)
}

func isNilMetrics(metrics Metrics) bool {
	return isNilInterface(metrics)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
