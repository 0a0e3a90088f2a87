package controller

import (
	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/pkg/serverutils"
	"rich-text-bridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPolicyController interface {
	RegisterRoutes(r fiber.Router)
	Parse(ctx *fiber.Ctx) error
	Default(ctx *fiber.Ctx) error
}

type policyController struct {
	service service.IPolicyService
}

func NewPolicyController(service service.IPolicyService) IPolicyController {
	return &policyController{service: service}
}

func (c *policyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/policy/v1")
	h.Post("parse", c.Parse)
	h.Get("default", c.Default)
}

// Parse turns a field configuration into the policy the editor applies.
// A missing configuration yields the default policy.
func (c *policyController) Parse(ctx *fiber.Ctx) error {
	var req dto.ParsePolicyRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res := c.service.Describe(c.service.Resolve(req.FieldConfig))
	return ctx.JSON(serverutils.SuccessResponse("Success parse policy", res))
}

func (c *policyController) Default(ctx *fiber.Ctx) error {
	res := c.service.Describe(c.service.Default())
	return ctx.JSON(serverutils.SuccessResponse("Success get default policy", res))
}
