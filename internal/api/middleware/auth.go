package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/utils"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// ResourceID is the expected audience for token validation.
	ResourceID string
	// JWTAuthenticator validates bearer tokens against a JWKS endpoint.
	// When nil the middleware lets every request through as anonymous.
	JWTAuthenticator *utils.JwtAuthenticator
	// SkipWellKnown determines if .well-known endpoints bypass auth.
	SkipWellKnown bool
}

// DefaultAuthConfig provides default configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{SkipWellKnown: true}
}

// AuthMiddleware returns a Fiber middleware for Bearer token
// authentication. Requests carrying a valid token get the authenticated
// user attached to the request context.
func AuthMiddleware(config ...AuthConfig) fiber.Handler {
	cfg := DefaultAuthConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		// Anonymous mode: no authenticator configured.
		if cfg.JWTAuthenticator == nil {
			return c.Next()
		}

		// Allow public access to well-known endpoints for metadata discovery.
		if cfg.SkipWellKnown && strings.Contains(c.Path(), ".well-known") {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		var token string
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if token == "" {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid Bearer token",
			})
		}

		user, err := cfg.JWTAuthenticator.ValidateToken(token)
		if err != nil {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}

		if cfg.ResourceID != "" {
			hasValidAudience := false
			for _, userAud := range user.Aud {
				if userAud == cfg.ResourceID {
					hasValidAudience = true
					break
				}
			}
			if !hasValidAudience {
				c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid audience",
				})
			}
		}

		c.Locals("user", user)
		c.SetUserContext(utils.WithAuthenticatedUser(c.UserContext(), user))
		return c.Next()
	}
}

// GetAuthenticatedUser retrieves the authenticated user from Fiber
// context. Returns nil if no user is found.
func GetAuthenticatedUser(c *fiber.Ctx) *utils.AuthenticatedUser {
	user, ok := c.Locals("user").(*utils.AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
