package identity

import (
	"context"
	"time"

	"agromart/globals"
)

type Kind string

const (
	KindAnonymous Kind = ""
	KindAdmin     Kind = "admin"
	KindSeller    Kind = "seller"
	KindUser      Kind = "user"
)

// SentinelSellerID is the placeholder id an unconfigured supplier client sends.
const SentinelSellerID = "temp-seller-id"

// Caller is the resolved identity behind a request.
type Caller struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (c Caller) IsAdmin() bool { return c.Kind == KindAdmin }

func (c Caller) Authenticated() bool { return c.Kind != KindAnonymous && c.ID != "" }

// IsSentinel reports whether the caller is the placeholder seller identity.
func (c Caller) IsSentinel() bool {
	return c.Kind == KindSeller && c.ID == SentinelSellerID
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, globals.CallerKey, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(globals.CallerKey).(Caller)
	return c, ok && c.Authenticated()
}
