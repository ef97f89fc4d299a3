package bootstrap

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/export_generator/apigateway/internal/logger"
)

const publicPrefix = "/api/public/"

// RequestID assigns a uuid to every request, echoes it in X-Request-ID and
// stores it in the request context for the logger.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	})
}

// RequestLogger logs one entry per request through the zerolog logger.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil {
				logger.WarnLog(ctx, "%s %s -> %d in %v: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			logger.InfoLog(ctx, "%s %s -> %d in %v", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}

// JWTAuth requires an HS256 bearer token signed with secret on every path
// outside /api/public/.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, publicPrefix)
		},
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(token string, c echo.Context) (bool, error) {
			if err := verifyToken(token, key); err != nil {
				logger.WarnLog(c.Request().Context(), "Rejected bearer token: %v", err)
				return false, nil
			}
			return true, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.ErrUnauthorized
		},
	})
}

func verifyToken(raw string, key []byte) error {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}
