package ipmatch

import "context"

type contextKey int

const (
	clientAddrKey contextKey = iota
	remoteAddrKey
)

// NewContext returns a copy of ctx carrying the resolved client address.
func NewContext(ctx context.Context, clientAddr string) context.Context {
	return context.WithValue(ctx, clientAddrKey, clientAddr)
}

// FromContext returns the client address stored by NewContext or
// Resolver.Middleware. The address may be empty when resolution found no
// usable value.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	addr, ok := ctx.Value(clientAddrKey).(string)
	return addr, ok
}

// RemoteAddrFromContext returns the unmodified direct-connection address
// (http.Request.RemoteAddr) seen by Resolver.Middleware.
func RemoteAddrFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	addr, ok := ctx.Value(remoteAddrKey).(string)
	return addr, ok
}
