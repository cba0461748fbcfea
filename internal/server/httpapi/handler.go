package httpapi

import (
	"github.com/dmitrijs2005/gophersocial/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type validatable interface {
	Validate() error
}

// bind parses the JSON body into req and validates it. On failure the 400
// response has already been written and ok is false.
func bind(c *fiber.Ctx, req validatable) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, writeValidationError(c, "Malformed request body.")
	}
	if err := req.Validate(); err != nil {
		return false, writeValidationError(c, validationReasons(err)...)
	}
	return true, nil
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	req := new(registerRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return writeResult(c, res, registerResponse{ID: res.Payload.ID})
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	req := new(loginRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.Login(c.UserContext(), req.UserName, req.Password)
	if err != nil {
		return err
	}

	return writeResult(c, res, tokenResponse(res.Payload))
}

func (s *HTTPServer) refresh(c *fiber.Ctx) error {
	req := new(refreshRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.Refresh(c.UserContext(), req.AccessToken, req.RefreshToken)
	if err != nil {
		return err
	}

	return writeResult(c, res, tokenResponse(res.Payload))
}

func (s *HTTPServer) updatePassword(c *fiber.Ctx) error {
	req := new(updatePasswordRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.UpdatePassword(c.UserContext(), currentUserID(c), services.UpdatePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		return err
	}

	return writeResult(c, res, nil)
}

func (s *HTTPServer) forgotPassword(c *fiber.Ctx) error {
	req := new(forgotPasswordRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	return writeResult(c, res, nil)
}

func (s *HTTPServer) resetPassword(c *fiber.Ctx) error {
	req := new(resetPasswordRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}

	res, err := s.sessions.ResetPassword(c.UserContext(), services.ResetPasswordInput{
		Email:              req.Email,
		Token:              req.Token,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		return err
	}

	return writeResult(c, res, nil)
}
