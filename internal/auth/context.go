package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userKey contextKey = "user"

// User is the authenticated caller. All data access is scoped by its ID.
type User struct {
	ID    uuid.UUID
	Email string
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return uuid.Nil
}
