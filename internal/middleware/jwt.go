package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// Locals keys set by JWTProtected.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

// JWTProtected returns a middleware that validates JWT bearer tokens. Websocket
// clients cannot set headers, so an access_token query parameter is accepted on
// upgrade requests.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return utils.FailWithKind(c, fiber.StatusUnauthorized, "unauthorized", err.Error(), nil)
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.FailWithKind(c, fiber.StatusUnauthorized, "unauthorized", "invalid token", nil)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.FailWithKind(c, fiber.StatusUnauthorized, "unauthorized", "invalid token claims", nil)
		}

		userID := extractUserIDFromClaims(claims)
		if userID == "" {
			return utils.FailWithKind(c, fiber.StatusUnauthorized, "unauthorized", "token subject missing", nil)
		}

		c.Locals(LocalUserID, userID)
		if role := extractUserRoleFromClaims(claims); role != "" {
			c.Locals(LocalUserRole, role)
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authorization == "" {
		if query := strings.TrimSpace(c.Query("access_token")); query != "" && isUpgrade(c) {
			return query, nil
		}
		return "", fmt.Errorf("authorization header missing")
	}

	const bearer = "bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), bearer) {
		return "", fmt.Errorf("invalid authorization header")
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return "", fmt.Errorf("invalid token")
	}
	return tokenString, nil
}

func isUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if id, ok := value.(string); ok && strings.TrimSpace(id) != "" {
				return strings.TrimSpace(id)
			}
		}
	}
	return ""
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
					return role
				}
			}
		}
	}
	return ""
}

// UserID returns the authenticated subject, or "" when the request is anonymous.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalUserID).(string); ok {
		return id
	}
	return ""
}

// UserRole returns the authenticated role, or "".
func UserRole(c *fiber.Ctx) string {
	return normalizeRoleValue(c.Locals(LocalUserRole))
}
