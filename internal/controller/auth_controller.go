package controller

import (
	"errors"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/pkg/serverutils"
	"chatbot-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	TestToken(ctx *fiber.Ctx) error
}

type authController struct {
	service  service.IAuthService
	validate *validator.Validate
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{
		service:  service,
		validate: validator.New(),
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Post("/register/", c.Register)
	r.Post("/login/", c.Login)
	r.Get("/test_token/", serverutils.JwtMiddleware, c.TestToken)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := c.validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username already taken"})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(res)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := c.validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		// Unknown username and wrong password deliberately map to
		// different statuses; existing clients rely on both.
		if errors.Is(err, service.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found"})
		}
		if errors.Is(err, service.ErrBadCredentials) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Not found"})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(res)
}

func (c *authController) TestToken(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserIDFromLocals(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}
	uid, err := uuid.Parse(userId)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	user, err := c.service.LookupUser(ctx.UserContext(), uid)
	if err != nil || user == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	return ctx.JSON(fiber.Map{"message": "Passed for " + user.Email})
}
