package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// accessTokenMiddleware admits requests bearing a valid, unexpired access
// token and stores the caller's identity id in the request locals.
func (s *HTTPServer) accessTokenMiddleware(c *fiber.Ctx) error {

	scheme, token, ok := strings.Cut(c.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return writeUnauthorized(c)
	}

	claims, err := s.codec.ParseAccessToken(strings.TrimSpace(token))
	if err != nil {
		s.logger.Debug(c.UserContext(), "access token rejected", "reason", err.Error())
		return writeUnauthorized(c)
	}

	userID := claims.UserID()
	if userID == "" {
		return writeUnauthorized(c)
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// requestLogger logs every request once it has been fully handled, errors
// included, and reports its latency to the observer.
func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	elapsed := time.Since(start)
	code := c.Response().StatusCode()

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", code,
		"latency", elapsed,
	)

	if s.observer != nil {
		s.observer.ObserveRequest(c.Method(), c.Route().Path, code, elapsed)
	}
	return nil
}
