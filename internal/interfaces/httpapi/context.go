package httpapi

import "context"

type contextKey string

const callerContextKey contextKey = "admin_caller"

func withCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

func callerFromContext(ctx context.Context) string {
	caller, _ := ctx.Value(callerContextKey).(string)
	return caller
}
