package ipmatch

import "context"

// Logger receives warnings about skipped range tokens, rejected candidate
// addresses and suspicious candidate chains.
//
// A Matcher or Resolver calls it from every goroutine that uses it, so
// implementations must tolerate concurrent calls. ctx is the caller's
// context; for Resolver.ResolveRequest and the middleware it is the request
// context.
//
// *slog.Logger satisfies Logger.
type Logger interface {
	WarnContext(ctx context.Context, msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) WarnContext(context.Context, string, ...any) {}
