package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's ID for rate-limit
// keys. Anonymous and malformed claims all collapse to "anon".
func currentUserID(c echo.Context) string {
	if id, ok := AuthUserID(c); ok {
		return "u" + strconv.FormatUint(id, 10)
	}
	return "anon"
}
