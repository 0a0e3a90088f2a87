package controller

import (
	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/pkg/serverutils"
	"rich-text-bridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConvertController interface {
	RegisterRoutes(r fiber.Router)
	ToTarget(ctx *fiber.Ctx) error
	ToSource(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Empty(ctx *fiber.Ctx) error
	BuildEmbed(ctx *fiber.Ctx) error
}

type convertController struct {
	service       service.IConvertService
	policyService service.IPolicyService
}

func NewConvertController(service service.IConvertService, policyService service.IPolicyService) IConvertController {
	return &convertController{service: service, policyService: policyService}
}

// Conversion is stateless, so these routes are public.
func (c *convertController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/convert/v1")
	h.Post("to-target", c.ToTarget)
	h.Post("to-source", c.ToSource)
	h.Post("validate", c.Validate)
	h.Post("analyze", c.Analyze)
	h.Get("empty", c.Empty)
	h.Post("embed/:kind", c.BuildEmbed)
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func (c *convertController) ToTarget(ctx *fiber.Ctx) error {
	var req dto.ToTargetRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ToTarget(ctx.UserContext(), req.Document, req.NativeEmbeds)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success convert to editor document", res))
}

func (c *convertController) ToSource(ctx *fiber.Ctx) error {
	var req dto.ToSourceRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	p := c.policyService.Resolve(req.FieldConfig)
	res, err := c.service.ToSource(ctx.UserContext(), req.Document, &p)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success convert to rich text document", res))
}

// Validate never fails on document content; it answers valid or not.
func (c *convertController) Validate(ctx *fiber.Ctx) error {
	var req dto.ValidateDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res := dto.ValidateDocumentResponse{Valid: c.service.Validate(ctx.UserContext(), req.Document)}
	return ctx.JSON(serverutils.SuccessResponse("Success validate document", res))
}

func (c *convertController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Analyze(ctx.UserContext(), req.Document)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze document", res))
}

func (c *convertController) Empty(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success create empty document", c.service.EmptyDocument()))
}

func (c *convertController) BuildEmbed(ctx *fiber.Ctx) error {
	var req dto.BuildEmbedRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Kind = ctx.Params("kind")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.BuildEmbed(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build embed", res))
}
