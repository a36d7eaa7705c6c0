package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/utils"
)

// Locals keys set by Protected.
const (
	LocalUserID    = "userID"
	LocalCompanyID = "companyID"
	LocalRole      = "role"
)

// Protected validates the bearer token and copies the employee id, company
// id and role claims into fiber locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Invalid token claims")
			}

			userID, err := extractID(claims, "id")
			if err != nil {
				log.Debug().Err(err).Msg("user id missing from token")
				return unauthorized(c, "Invalid user ID in token")
			}

			companyID, err := extractID(claims, "companyId")
			if err != nil {
				log.Debug().Err(err).Msg("company id missing from token")
				return unauthorized(c, "Invalid company ID in token")
			}

			role, ok := claims["role"].(string)
			if !ok || role == "" {
				return unauthorized(c, "Invalid role in token")
			}

			c.Locals(LocalUserID, userID)
			c.Locals(LocalCompanyID, companyID)
			c.Locals(LocalRole, role)
			return c.Next()
		},
	})
}

// extractID handles multiple potential formats of an ID claim
func extractID(claims jwt.MapClaims, name string) (uint, error) {
	switch v := claims[name].(type) {
	case nil:
		return 0, fmt.Errorf("no %s found in claims", name)
	case float64:
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse %s: %w", name, err)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported %s type: %T", name, v)
	}
}

func jwtError(c *fiber.Ctx, err error) error {
	log.Debug().Err(err).Str("path", c.Path()).Msg("jwt rejected")
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Unauthorized",
		Error:   "Invalid or expired token",
	})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Unauthorized",
		Error:   msg,
	})
}

// Identity returns the locals set by Protected.
func Identity(c *fiber.Ctx) (userID, companyID uint, role string, ok bool) {
	userID, ok1 := c.Locals(LocalUserID).(uint)
	companyID, ok2 := c.Locals(LocalCompanyID).(uint)
	role, ok3 := c.Locals(LocalRole).(string)
	return userID, companyID, role, ok1 && ok2 && ok3
}
