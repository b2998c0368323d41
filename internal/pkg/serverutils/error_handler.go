package serverutils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware recovers panics from downstream handlers and turns
// them into a 500 instead of dropping the connection.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				_ = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error.",
				})
			}
		}()
		return ctx.Next()
	}
}

// UserIDFromLocals reads the user id claim set by JwtMiddleware.
func UserIDFromLocals(ctx *fiber.Ctx) (string, bool) {
	id, ok := ctx.Locals("user_id").(string)
	return id, ok
}
