// Package contextkeys provides centralized context key definitions so that
// key usage stays discoverable across middleware and handlers.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions.
type Key string

const (
	// OwnerKey contains the authenticated owner identifier (the token's
	// sub claim). Set by middleware.AuthMiddleware.
	OwnerKey Key = "owner"

	// RequestIDKey contains the request ID string. Set by
	// httputil.RequestIDMiddleware.
	RequestIDKey Key = "request_id"
)

// WithOwner adds the owner identifier to the context.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

// GetOwner retrieves the owner identifier from the context.
func GetOwner(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
