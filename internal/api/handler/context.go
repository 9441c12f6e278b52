package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Context keys set by middleware.Auth.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxEmail    = "email"
)

// currentUsername returns the authenticated username, failing fast with 401
// when the Auth middleware did not run.
func currentUsername(c echo.Context) (string, error) {
	name, _ := c.Get(CtxUsername).(string)
	if name == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return name, nil
}
