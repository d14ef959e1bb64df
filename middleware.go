package ipmatch

import (
	"context"
	"errors"
	"net/http"
)

// Middleware resolves the client address once per request and stores it in
// the request context, retrievable with FromContext. The original
// r.RemoteAddr is kept alongside (RemoteAddrFromContext).
func (res *Resolver) Middleware(allowOverride bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := res.ResolveRequest(r, allowOverride)

			ctx := NewContext(r.Context(), ip)
			ctx = context.WithValue(ctx, remoteAddrKey, r.RemoteAddr)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRanges returns middleware answering 403 Forbidden to requests whose
// client address is not contained in ranges.
//
// An address already stored by Resolver.Middleware is reused; otherwise the
// request is resolved with resolver. It is an error for ranges to hold no
// usable range, since such a guard would reject every request.
func RequireRanges(resolver *Resolver, matcher *Matcher, ranges []string, allowOverride bool) (func(http.Handler) http.Handler, error) {
	if resolver == nil {
		return nil, errors.New("resolver cannot be nil")
	}
	if matcher == nil {
		return nil, errors.New("matcher cannot be nil")
	}

	if len(matcher.Compile(context.Background(), ranges)) == 0 {
		return nil, errors.New("range guard requires at least one valid range")
	}

	tokens := cloneStrings(ranges)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, ok := FromContext(r.Context())
			if !ok {
				ip = resolver.ResolveRequest(r, allowOverride)
			}

			if !matcher.ContainsList(r.Context(), ip, tokens) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}
