package automation

import (
	"github.com/gofiber/fiber/v2"
)

// Dispatch turns a user-originated request into a command forwarded to
// the engine and relays the engine's synchronous response with
// successStatus. Handlers call it only on the user-originated path;
// callback requests (shared secret presented) persist directly and are
// never re-forwarded.
func Dispatch(c *fiber.Ctx, operation string, payload map[string]any, successStatus int) error {
	tenantID, _ := c.Locals("tenantID").(string)
	body, err := Default.Call(tenantID, operation, payload)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(successStatus).Send(body)
}
