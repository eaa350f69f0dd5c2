package controllers

import (
	"facturation-backend/apperrors"
	"facturation-backend/models"
	"facturation-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func tenantID(c *fiber.Ctx) string {
	t, _ := c.Locals("tenantID").(string)
	return t
}

func isDirect(c *fiber.Ctx) bool {
	d, _ := c.Locals("direct").(bool)
	return d
}

// requireWriteAccess gates user-originated mutations to admin roles.
// Callbacks already authenticated with the shared secret pass through.
func requireWriteAccess(c *fiber.Ctx) error {
	if isDirect(c) {
		return nil
	}
	role, _ := c.Locals("role").(string)
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		return nil
	}
	return apperrors.New(apperrors.Forbidden, "acces refuse")
}

func paginationParams(c *fiber.Ctx) (page, limit, offset int) {
	page = utils.ParseIntDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit = utils.ParseIntDefault(c.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

func totalPages(total int64, limit int) int64 {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
