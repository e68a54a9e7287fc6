package middleware

import (
	"strings"

	"smartcart-auth/internal/adapters/persistence/repositories"
	"smartcart-auth/internal/config"
	"smartcart-auth/internal/core/domain"
	"smartcart-auth/internal/pkg/jwt"
	"smartcart-auth/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestAuthenticator runs on every request, public routes included.
// It never rejects: it either establishes the caller's identity in the
// request locals or passes through unauthenticated and lets the
// authorization layer produce the 401/403. Acceptance requires the
// codec check AND the ledger liveness check; a cryptographically valid
// token whose ledger row is flagged is not authenticated.
func RequestAuthenticator(
	cfg *config.Config,
	userRepo repositories.UserRepository,
	tokenRepo repositories.AccessTokenRepository,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Already authenticated earlier in the chain
		if c.Locals("username") != nil {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Next()
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// Subject first; a malformed token degrades to unauthenticated
		username, err := jwt.ExtractUsername(token, cfg.JWT.Secret)
		if err != nil {
			return c.Next()
		}

		user, err := userRepo.GetByUsername(c.Context(), username)
		if err != nil {
			return c.Next()
		}

		live, err := tokenRepo.IsLive(c.Context(), token)
		if err != nil || !live {
			return c.Next()
		}

		if !jwt.MatchesUser(token, user.Username, cfg.JWT.Secret) {
			return c.Next()
		}

		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RequireAuth rejects requests that carry no authenticated identity
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("username") == nil {
			return response.Unauthorized(c, "Authentication required")
		}
		return c.Next()
	}
}

// RequirePermission rejects callers whose role does not carry the given
// capability tag. Capabilities are resolved through the role mapping, so
// an admin passes wherever a manager would.
func RequirePermission(perm domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleValue, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		if !domain.Role(roleValue).HasPermission(perm) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// AdminOnly admits only callers with the user-management capability
func AdminOnly() fiber.Handler {
	return RequirePermission(domain.PermUsersManage)
}
