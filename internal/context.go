package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserIDKey ctxKey = "userID"
	ContextUserKey   ctxKey = "user"
)

// CurrentUser is the authenticated principal the auth middleware loads into
// the request context.
type CurrentUser struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Locale      string   `json:"locale"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *CurrentUser) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(ContextUserKey).(*CurrentUser)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *CurrentUser) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, user)
	if user != nil {
		ctx = context.WithValue(ctx, ContextUserIDKey, user.ID)
	}
	return ctx
}

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserIDKey).(int64); ok {
		return userID
	}
	return 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
