package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
)

// ContextUserIDKey holds the verified token subject for downstream handlers.
const ContextUserIDKey = "userID"

type AuthHandler interface {
	AuthMiddleware() gin.HandlerFunc
}

type authHandler struct {
	keyFunc jwt.Keyfunc
	options []jwt.ParserOption
}

func NewAuthHandler(authConfig *config.AuthConfig, logger outbound.LoggerPort) (AuthHandler, error) {
	options := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error(err, "There was an error with the jwt.Keyfunc")
		},
		RefreshInterval:   authConfig.RefreshInterval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	jwks, err := keyfunc.Get(authConfig.JwksURL, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS from %s: %w", authConfig.JwksURL, err)
	}

	return newAuthHandlerWithKeyfunc(jwks.Keyfunc, authConfig), nil
}

// newAuthHandlerWithKeyfunc pins the expected issuer and audience when the
// config names them. Tokens must always carry an expiry.
func newAuthHandlerWithKeyfunc(keyFunc jwt.Keyfunc, authConfig *config.AuthConfig) AuthHandler {
	parserOptions := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if authConfig.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(authConfig.Issuer))
	}
	if authConfig.Audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(authConfig.Audience))
	}
	return &authHandler{keyFunc: keyFunc, options: parserOptions}
}

func (h *authHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if header == "" || !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token is required"})
			return
		}

		var claims jwt.RegisteredClaims
		token, err := jwt.ParseWithClaims(tokenString, &claims, h.keyFunc, h.options...)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}
