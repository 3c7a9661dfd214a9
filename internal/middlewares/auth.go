package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/w0nsdoof/diplomatch/internal/auth"
)

const (
	localsClaimsKey = "authClaims"
	localsUserIDKey = "authUserID"
)

// RequireAuth validates the bearer access token and stores its claims in the
// request locals for handlers to pick up.
func RequireAuth(tokenService *auth.TokenService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing access token")
		}
		claims, err := tokenService.VerifyAccess(tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired access token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired access token")
		}
		ctx.Locals(localsClaimsKey, claims)
		ctx.Locals(localsUserIDKey, userID)
		return ctx.Next()
	}
}

// AuthClaims returns the verified claims stored by RequireAuth.
func AuthClaims(ctx *fiber.Ctx) *auth.Claims {
	claims, _ := ctx.Locals(localsClaimsKey).(*auth.Claims)
	return claims
}

// AuthUserID returns the authenticated user id stored by RequireAuth, or zero
// when the request is anonymous.
func AuthUserID(ctx *fiber.Ctx) uint {
	userID, _ := ctx.Locals(localsUserIDKey).(uint)
	return userID
}
