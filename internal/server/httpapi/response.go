package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/gophersocial/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// Status kinds produced by the HTTP layer itself.
const (
	statusUnauthorized  = "Unauthorized"
	statusInternalError = "InternalError"
	statusBadRequest    = "BadRequest"
)

type envelope struct {
	Succeeded bool     `json:"succeeded"`
	Status    string   `json:"status"`
	Message   string   `json:"message,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Data      any      `json:"data,omitempty"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func httpStatus(s services.Status) int {
	switch s {
	case services.StatusOK:
		return fiber.StatusOK
	case services.StatusCreated:
		return fiber.StatusCreated
	default:
		return fiber.StatusBadRequest
	}
}

// writeResult renders res; data is only attached on success.
func writeResult[T any](c *fiber.Ctx, res services.Result[T], data any) error {
	env := envelope{
		Succeeded: res.Succeeded(),
		Status:    string(res.Status),
		Message:   res.Message,
		Errors:    res.Reasons,
	}
	if env.Succeeded {
		env.Data = data
	}
	return c.Status(httpStatus(res.Status)).JSON(env)
}

func writeValidationError(c *fiber.Ctx, reasons ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(envelope{
		Status:  string(services.StatusValidationError),
		Message: "Request validation failed.",
		Errors:  reasons,
	})
}

func writeUnauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(envelope{
		Status:  statusUnauthorized,
		Message: "Missing or invalid access token.",
	})
}

// errorHandler turns errors escaping handlers into the envelope. Fiber's 4xx
// errors (unknown route, wrong method, oversized body) keep their code.
// Everything else is an infrastructure fault and its details stay in the log.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(envelope{Status: clientErrorStatus(fe.Code), Message: fe.Message})
	}

	s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(envelope{
		Status:  statusInternalError,
		Message: "An internal error occurred.",
	})
}

func clientErrorStatus(code int) string {
	switch code {
	case fiber.StatusUnauthorized:
		return statusUnauthorized
	case fiber.StatusNotFound:
		return string(services.StatusNotFound)
	}
	return statusBadRequest
}
