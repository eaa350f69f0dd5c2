package middlewares

import (
	"crypto/subtle"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AutomationSecretHeader carries the pre-shared callback credential.
const AutomationSecretHeader = "X-Automation-Secret"

var (
	autoSecretOnce sync.Once
	autoSecret     []byte
)

func automationSecret() []byte {
	autoSecretOnce.Do(func() {
		if s := strings.TrimSpace(os.Getenv("AUTOMATION_SECRET")); s != "" {
			autoSecret = []byte(s)
		}
	})
	return autoSecret
}

// isAutomationRequest checks the shared secret in constant time.
func isAutomationRequest(c *fiber.Ctx) bool {
	secret := automationSecret()
	if len(secret) == 0 {
		return false
	}
	provided := []byte(c.Get(AutomationSecretHeader))
	if len(provided) != len(secret) {
		return false
	}
	return subtle.ConstantTimeCompare(provided, secret) == 1
}

// CallerContext classifies every request: automation callbacks carry
// the shared secret and execute directly; everything else needs a JWT
// and will be forwarded as a command. Locals populated:
// "direct" (bool), "tenantID", and for JWT callers "userID" + "role".
func CallerContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAutomationRequest(c) {
			tenantID := c.Query("tenantId")
			if tenantID == "" {
				// POST/PUT callbacks put the tenant in the body.
				var body struct {
					TenantID string `json:"tenantId"`
				}
				if len(c.Body()) > 0 {
					_ = json.Unmarshal(c.Body(), &body)
				}
				tenantID = body.TenantID
			}
			if tenantID == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "tenantId manquant"})
			}
			if _, err := uuid.Parse(tenantID); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "tenantId invalide"})
			}

			c.Locals("direct", true)
			c.Locals("tenantID", tenantID)
			return c.Next()
		}

		claims, err := parseBearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		c.Locals("direct", false)
		c.Locals("tenantID", claims.TenantID)
		c.Locals("userID", claims.Subject)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}
