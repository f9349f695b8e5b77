package controller

import (
	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/pkg/serverutils"
	"ai-chathub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPreferenceController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	UpdateSelectedModel(ctx *fiber.Ctx) error
	ToggleModelPin(ctx *fiber.Ctx) error
	ListModels(ctx *fiber.Ctx) error
}

type preferenceController struct {
	preferenceService service.IPreferenceService
}

func NewPreferenceController(preferenceService service.IPreferenceService) IPreferenceController {
	return &preferenceController{
		preferenceService: preferenceService,
	}
}

func (c *preferenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/preference/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Get)
	h.Get("models", c.ListModels)
	h.Put("model", c.UpdateSelectedModel)
	h.Put("model/pin", c.ToggleModelPin)
}

func (c *preferenceController) Get(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.preferenceService.Get(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get preferences", res))
}

func (c *preferenceController) UpdateSelectedModel(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.UpdateSelectedModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.preferenceService.UpdateLastSelectedModel(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update selected model", res))
}

func (c *preferenceController) ToggleModelPin(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.ToggleModelPinRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.preferenceService.ToggleModelPin(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle model pin", res))
}

func (c *preferenceController) ListModels(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.preferenceService.ListModels(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list models", res))
}
