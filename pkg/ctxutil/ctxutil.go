package ctxutil

import (
	"context"
	"fmt"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	UserIDKey    ctxKey = "user_id"
)

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, reqID)
}

func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(RequestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func GetUserIDCtx(ctx context.Context) (int64, error) {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(int64); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("user id not found in context")
}

// Actor renders the authenticated user as the audit-log actor string, or
// "system" when the call has no user attached.
func Actor(ctx context.Context) string {
	uid, err := GetUserIDCtx(ctx)
	if err != nil {
		return "system"
	}
	return fmt.Sprintf("user:%d", uid)
}
