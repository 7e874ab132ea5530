package cont

import (
	"SchoolScan/entity"
	"context"
)

type contextKey string

const userKey contextKey = "auth-user"

// PutUser stores the authenticated principal on the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated principal, or nil.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
