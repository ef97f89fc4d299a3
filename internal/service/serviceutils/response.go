package serviceutils

import (
	"github.com/labstack/echo/v4"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func ResponseMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, MessageResponse{Message: msg})
}

func ResponseHealth(c echo.Context, code int, status string) error {
	return c.JSON(code, HealthResponse{Status: status})
}

// ResponseFailure answers with a bare status. Export failures never carry a
// structured body.
func ResponseFailure(c echo.Context, code int) error {
	header := c.Response().Header()
	header.Del(echo.HeaderContentDisposition)
	header.Del(echo.HeaderContentType)
	return c.NoContent(code)
}
