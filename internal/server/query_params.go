package server

import (
	"github.com/gin-gonic/gin"
	"github.com/voltvend/voltvend/internal/actorctx"
)

// vendorIDFromRequest returns the authenticated vendor's ID as a string
// for service-layer requests.
func vendorIDFromRequest(c *gin.Context) (string, bool) {
	vendorID, ok := actorctx.VendorIDFromContext(c.Request.Context())
	if !ok {
		return "", false
	}
	return vendorID.String(), true
}

// actorFrom returns the authenticated caller's subject.
func actorFrom(c *gin.Context) (string, bool) {
	actor, ok := actorctx.FromContext(c.Request.Context())
	if !ok {
		return "", false
	}
	return actor.Subject, true
}
