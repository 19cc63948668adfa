package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

const principalKey = "auth_principal_id"

// Middleware validates bearer tokens and stores the acting principal id.
// It deliberately resolves identity only; every authorization decision is
// made inside the core services against the role authority.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, "missing authorization header", fiber.StatusUnauthorized, nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, "invalid authorization header", fiber.StatusUnauthorized, nil)
	}

	principalID, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, "invalid token", fiber.StatusUnauthorized, nil)
	}

	c.Locals(principalKey, principalID)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal id.
func PrincipalFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
