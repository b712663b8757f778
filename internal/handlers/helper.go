package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseIntQuery parses an optional integer query parameter, falling
// back to def when absent or malformed.
func ParseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ActorFromRequest identifies who triggered an operation for the
// activity log. Authentication lives at the gateway; the forwarded
// identity header is trusted here.
func ActorFromRequest(c *gin.Context) string {
	if actor := c.GetHeader("X-User-Email"); actor != "" {
		return actor
	}
	return "system"
}
