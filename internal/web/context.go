package web

import "context"

type contextKey int

const (
	userKey contextKey = iota
	visitorKey
)

type User struct {
	Name string
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func CurrentUser(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	return user, ok
}

func withVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey, id)
}

func visitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey).(string)
	return id
}
