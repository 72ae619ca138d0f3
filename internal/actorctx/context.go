package actorctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Role identifies the caller class resolved by the transport layer.
type Role string

const (
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated caller identity. VendorID is zero for admins.
type Actor struct {
	Subject  string
	Role     Role
	VendorID snowflake.ID
}

type actorKey struct{}

// WithActor stores the caller identity in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext returns the caller identity, if set.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// VendorIDFromContext returns the vendor ID of a vendor caller.
func VendorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	actor, ok := FromContext(ctx)
	if !ok || actor.Role != RoleVendor || actor.VendorID == 0 {
		return 0, false
	}
	return actor.VendorID, true
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(ctx context.Context) bool {
	actor, ok := FromContext(ctx)
	return ok && actor.Role == RoleAdmin
}
