package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// RequireAuth rejects requests without a valid bearer token. When repo
// is non-nil it also checks the token version, so password changes and
// logouts cut off old tokens.
func RequireAuth(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens, repo)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth populates claims when a valid bearer token is present
// and lets the request through either way. Public routes that behave
// differently for signed-in users (catalog locale defaults) use this.
func OptionalAuth(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, tokens, repo); ok {
			c.Set(CtxClaimsKey, claims)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, tokens TokenService, repo *Repo) (*Claims, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil, false
	}

	raw := strings.TrimSpace(h[len("Bearer "):])
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}

	if repo != nil {
		current, err := repo.GetTokenVersion(c.Request.Context(), claims.UserID)
		if err != nil || current != claims.TokenVersion {
			return nil, false
		}
	}
	return claims, true
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
