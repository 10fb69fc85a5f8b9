package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const orgIDLocal = "org_id"

// OrgHeader carries the caller's resolved organization id.
const OrgHeader = "X-Organization-Id"

// OrgContext resolves the requesting organization into Locals. Visibility
// filtering needs an explicit organization context; when none can be
// resolved, downstream handlers answer with a distinct "context required"
// state rather than an empty tree.
func OrgContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := strings.TrimSpace(c.Get(OrgHeader))
		if orgID == "" {
			orgID = strings.TrimSpace(c.Query("organization"))
		}
		c.Locals(orgIDLocal, orgID)
		return c.Next()
	}
}

// OrgID returns the resolved organization id, empty when unresolved.
func OrgID(c *fiber.Ctx) string {
	if id, ok := c.Locals(orgIDLocal).(string); ok {
		return id
	}
	return ""
}
