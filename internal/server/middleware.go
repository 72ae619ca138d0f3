package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/voltvend/voltvend/internal/actorctx"
)

// actorClaims are the JWT claims issued by the external identity service.
type actorClaims struct {
	Role     string `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired resolves the caller from the bearer token. Identity lives
// outside this service; the token is the only trusted identity input.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims := &actorClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.AuthJWTSecret), nil
		})
		if err != nil || !token.Valid {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := actorctx.Actor{
			Subject: claims.Subject,
			Role:    actorctx.Role(strings.ToLower(strings.TrimSpace(claims.Role))),
		}
		switch actor.Role {
		case actorctx.RoleVendor:
			vendorID, err := snowflake.ParseString(strings.TrimSpace(claims.VendorID))
			if err != nil || vendorID == 0 {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			actor.VendorID = vendorID
		case actorctx.RoleAdmin:
		default:
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireRole guards a route group to one caller class.
func (s *Server) RequireRole(role actorctx.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorctx.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if actor.Role != role {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
