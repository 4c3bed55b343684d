package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTAuthMiddleware
const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

// JWTAuthMiddleware parses the bearer token and stores its subject and role
// in the gin context. Requests without a valid token are rejected.
func JWTAuthMiddleware(tokens *jwt.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, reason := bearerClaims(c, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware behaves like JWTAuthMiddleware when a token is
// present and lets the request through untouched when it is not.
func OptionalAuthMiddleware(tokens *jwt.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, reason := bearerClaims(c, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not one of roles. It must
// run after JWTAuthMiddleware.
func RequireRole(roles ...jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := Role(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// Subject returns the token subject of the request, if any
func Subject(c *gin.Context) (string, bool) {
	v, ok := c.Get(SubjectKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Role returns the token role of the request, if any
func Role(c *gin.Context) (jwt.Role, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return "", false
	}
	r, ok := v.(jwt.Role)
	return r, ok
}

// bearerClaims returns the parsed claims, or nil and the reason they were
// refused.
func bearerClaims(c *gin.Context, tokens *jwt.TokenService) (*jwt.Claims, string) {
	const bearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "Authorization header is required"
	}
	if !strings.HasPrefix(authHeader, bearerSchema) {
		return nil, "Authorization header must start with Bearer "
	}
	claims, err := tokens.Parse(strings.TrimSpace(authHeader[len(bearerSchema):]))
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, "Token has expired"
		}
		return nil, "Invalid token"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(SubjectKey, claims.Subject)
	c.Set(RoleKey, claims.Role)
}
