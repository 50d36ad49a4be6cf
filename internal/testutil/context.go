package testutil

import "context"

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, userID)
}

func userFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserKey{}).(string)
	return id
}
