package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessTokenCookie is the cookie the login page stores the bearer token in.
const AccessTokenCookie = "access_token"

type accessTokenKey struct{}

// WithAccessToken returns a context carrying the caller's bearer token.
// The profile API client forwards it on every outgoing request.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the bearer token stored by WithAccessToken, or "".
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// bearerToken extracts the token from "Authorization: Bearer <token>" or,
// for browser navigation, from the access token cookie.
func bearerToken(c *gin.Context) string {
	const bearerPrefix = "Bearer "
	if authHeader := c.GetHeader("Authorization"); len(authHeader) > len(bearerPrefix) && authHeader[:len(bearerPrefix)] == bearerPrefix {
		return strings.TrimSpace(authHeader[len(bearerPrefix):])
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// AuthMiddleware requires a bearer token and stores it in the request
// context for the profile API client. Token validation is left to the
// profile API, which answers 401 for a rejected token.
//
// Browsers without a token are redirected to loginPath; JSON clients get 401.
func AuthMiddleware(loginPath string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if logger != nil {
				logger.Debug("Missing access token", zap.String("path", c.Request.URL.Path))
			}
			if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAccessToken(c.Request.Context(), token))
		c.Next()
	}
}
