package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/grandslambert/backend-cms/pkg/response"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// Token type discriminators carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Context keys for the authenticated principal
const (
	ContextKeyUserID         = "user_id"
	ContextKeyRole           = "role"
	ContextKeyTenantID       = "tenant_id"
	ContextKeySuperAdmin     = "super_admin"
	ContextKeyImpersonatorID = "impersonator_id"
	ContextKeyTokenID        = "token_id"
)

// TokenBlacklist answers whether a token id has been revoked.
type TokenBlacklist interface {
	IsRevoked(jti string) bool
}

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating JWT tokens
	Secret string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
	// Blacklist rejects revoked tokens; nil disables the check
	Blacklist TokenBlacklist
}

// JWTMiddleware validates a bearer access token and injects the principal
// into the request context. Refresh tokens are rejected on API routes.
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		// Another mechanism (an API key) may have authenticated the request
		// already.
		if _, authenticated := c.Get(ContextKeyUserID); authenticated {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("MISSING_TOKEN", "Authorization header is required"))
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}
		tokenString := authHeader[len(bearerPrefix):]

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Token is empty"))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("TOKEN_EXPIRED", "Access token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}

		if !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid token claims"))
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Missing user_id in token"))
			return
		}

		// Only access tokens grant API access; refresh tokens are for the
		// token exchange endpoint alone.
		if typ, _ := claims["typ"].(string); typ != TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Token is not an access token"))
			return
		}

		jti, _ := claims["jti"].(string)
		if config.Blacklist != nil && jti != "" && config.Blacklist.IsRevoked(jti) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("TOKEN_REVOKED", "Access token has been revoked"))
			return
		}

		role, _ := claims["role"].(string)
		tenantID, _ := claims["tenant_id"].(string)
		superAdmin, _ := claims["super_admin"].(bool)
		impersonatorID, _ := claims["impersonator_id"].(string)

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyRole, role)
		c.Set(ContextKeyTenantID, tenantID)
		c.Set(ContextKeySuperAdmin, superAdmin)
		c.Set(ContextKeyImpersonatorID, impersonatorID)
		c.Set(ContextKeyTokenID, jti)

		c.Next()
	}
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetRole extracts role name from gin context
func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetTenantID extracts tenant ID from gin context
func GetTenantID(c *gin.Context) (string, bool) {
	tenantID, exists := c.Get(ContextKeyTenantID)
	if !exists {
		return "", false
	}
	t, ok := tenantID.(string)
	return t, ok
}

// IsSuperAdmin reports whether the principal carries the super-admin flag
func IsSuperAdmin(c *gin.Context) bool {
	v, exists := c.Get(ContextKeySuperAdmin)
	if !exists {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// GetImpersonatorID extracts the original actor id when the session is
// impersonating another user
func GetImpersonatorID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyImpersonatorID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetTokenID extracts the token jti from gin context
func GetTokenID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyTokenID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
