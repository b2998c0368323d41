package controller

import (
	"errors"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/pkg/serverutils"
	"chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ListChats(ctx *fiber.Ctx) error
	SubmitTurn(ctx *fiber.Ctx) error
	UpdateMessage(ctx *fiber.Ctx) error
	DeleteChat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/", c.ListChats)
	h.Post("/", c.SubmitTurn)
	h.Patch("/:chat_id/messages/:message_id/", c.UpdateMessage)
	h.Delete("/:chat_id/", c.DeleteChat)
}

func currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := serverutils.UserIDFromLocals(ctx)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	uid, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uid, nil
}

func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	chats, err := c.service.ListChats(ctx.UserContext(), userId, ctx.Query("session_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(chats)
}

func (c *chatController) SubmitTurn(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	var req dto.ChatTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := c.service.SubmitTurn(ctx.UserContext(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content is required."})
		case errors.Is(err, service.ErrNoActiveSession):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if result.Ended != nil {
		return ctx.JSON(result.Ended)
	}
	if result.Created {
		return ctx.Status(fiber.StatusCreated).JSON(result.Chat)
	}
	return ctx.JSON(result.Chat)
}

func (c *chatController) UpdateMessage(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	chatId, err := uuid.Parse(ctx.Params("chat_id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chat not found"})
	}
	messageId := ctx.Params("message_id")

	var req dto.UpdateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.service.UpdateMessage(ctx.UserContext(), userId, chatId, messageId, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content is required."})
		case errors.Is(err, service.ErrChatNotFound), errors.Is(err, service.ErrMessageNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return ctx.JSON(fiber.Map{"message": "Message updated successfully."})
}

func (c *chatController) DeleteChat(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
	}

	chatId, err := uuid.Parse(ctx.Params("chat_id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chat not found"})
	}

	if err := c.service.DeleteChat(ctx.UserContext(), userId, chatId); err != nil {
		if errors.Is(err, service.ErrChatNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
