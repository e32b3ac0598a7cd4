package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	keyPrefixKey contextKey = "key_prefix"
	scopesKey    contextKey = "api_key_scopes"
)

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, keyPrefixKey, prefix)
}

// KeyPrefix returns the authenticated API key prefix, if any.
func KeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

func setScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, scopesKey, scopes)
}

func getScopes(r *http.Request) []string {
	scopes, _ := r.Context().Value(scopesKey).([]string)
	return scopes
}

// WithKeyPrefix injects a key prefix into a request context (for tests).
func WithKeyPrefix(ctx context.Context, prefix string) context.Context {
	return setKeyPrefix(ctx, prefix)
}

// WithScopes injects scopes into a request context (for tests).
func WithScopes(ctx context.Context, scopes []string) context.Context {
	return setScopes(ctx, scopes)
}
