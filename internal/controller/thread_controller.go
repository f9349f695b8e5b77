package controller

import (
	"time"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/pkg/serverutils"
	"ai-chathub-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IThreadController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	NewChat(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	TogglePin(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type threadController struct {
	threadService service.IThreadService
}

func NewThreadController(threadService service.IThreadService) IThreadController {
	return &threadController{
		threadService: threadService,
	}
}

func (c *threadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/thread/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("select", c.Select)
	h.Post("new", c.NewChat)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Update)
	h.Put(":id/pin", c.TogglePin)
	h.Delete(":id", c.Delete)
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func (c *threadController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	req := dto.ListThreadsRequest{
		Limit: ctx.QueryInt("limit", 0),
	}
	if cursorStr := ctx.Query("cursor"); cursorStr != "" {
		cursor, err := time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid cursor")
		}
		req.Cursor = &cursor
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.threadService.LoadThreads(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list threads", res))
}

func (c *threadController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	res, err := c.threadService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show thread", res))
}

func (c *threadController) Select(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.SelectThreadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.threadService.SelectThread(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select thread", res))
}

func (c *threadController) NewChat(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.threadService.NewChatContext(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat context", res))
}

func (c *threadController) Update(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	var req dto.UpdateThreadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.threadService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update thread", res))
}

func (c *threadController) TogglePin(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	res, err := c.threadService.TogglePin(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle pin", res))
}

func (c *threadController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	if err := c.threadService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete thread", nil))
}
