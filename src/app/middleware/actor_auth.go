package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"goblet/src/app/http/response"
	"goblet/src/core/domain"
)

const actorKey = "actor"

// actorClaims are the bearer-token claims the core consumes. Token issuance
// lives outside this service; only verification happens here.
type actorClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Round int    `json:"round"`
	jwt.RegisteredClaims
}

// ActorAuth validates the Authorization bearer token and stores the resolved
// actor in the request context. Unauthenticated calls are rejected before any
// handler runs, so they can have no side effects.
func ActorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		authz := c.GetHeader("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.Unauthorized(c, "missing bearer token", requestID)
			c.Abort()
			return
		}
		raw := strings.TrimPrefix(authz, "Bearer ")

		claims := &actorClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid bearer token", requestID)
			c.Abort()
			return
		}

		role := domain.Role(strings.ToUpper(claims.Role))
		if role != domain.RoleAdmin && role != domain.RoleRoundHead {
			response.Forbidden(c, "unknown role", requestID)
			c.Abort()
			return
		}

		c.Set(actorKey, domain.Actor{
			Email: claims.Email,
			Role:  role,
			Round: claims.Round,
		})
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from the Gin context. Returns a
// zero actor (which passes no policy check) if auth middleware did not run.
func GetActor(c *gin.Context) domain.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
