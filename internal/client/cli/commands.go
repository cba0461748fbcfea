package cli

import (
	"context"

	"github.com/dmitrijs2005/gophersocial/internal/client/client"
	"github.com/spf13/cobra"
)

func newRegisterCmd(r *runner) *cobra.Command {
	var name, userName, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long:  `Create a new account. Missing values are prompted for; passwords are always read from the terminal.`,
		RunE: r.run(func(ctx context.Context, s *session) error {
			var err error
			if name, err = s.text(name, "Name"); err != nil {
				return err
			}
			if userName, err = s.text(userName, "Username"); err != nil {
				return err
			}
			if email, err = s.text(email, "Email"); err != nil {
				return err
			}

			pw, err := s.password("Password")
			if err != nil {
				return err
			}
			confirm, err := s.password("Confirm password")
			if err != nil {
				return err
			}
			defer wipe(pw, confirm)

			id, err := s.auth.Register(ctx, client.RegisterRequest{
				Name:            name,
				UserName:        userName,
				Email:           email,
				Password:        string(pw),
				PasswordConfirm: string(confirm),
			})
			if err != nil {
				return err
			}

			s.println("registered user", userName, "with id", id)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVarP(&userName, "username", "u", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLoginCmd(r *runner) *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: r.run(func(ctx context.Context, s *session) error {
			var err error
			if userName, err = s.text(userName, "Username"); err != nil {
				return err
			}
			pw, err := s.password("Password")
			if err != nil {
				return err
			}
			defer wipe(pw)

			if err := s.auth.Login(ctx, userName, pw); err != nil {
				return err
			}
			s.println("logged in as", userName)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&userName, "username", "u", "", "login name")
	return cmd
}

func newRefreshCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token pair for a fresh one",
		RunE: r.run(func(ctx context.Context, s *session) error {
			if err := s.auth.Refresh(ctx); err != nil {
				return err
			}
			s.println("session refreshed")
			return nil
		}),
	}
}

func newUpdatePasswordCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "update-password",
		Short: "Change the password of the logged in user",
		Long: `Change the password of the logged in user. The server revokes the
refresh token on success, so the local session ends and you need to log in again.`,
		RunE: r.run(func(ctx context.Context, s *session) error {
			old, err := s.password("Current password")
			if err != nil {
				return err
			}
			pw, err := s.password("New password")
			if err != nil {
				return err
			}
			confirm, err := s.password("Confirm new password")
			if err != nil {
				return err
			}
			defer wipe(old, pw, confirm)

			if err := s.auth.UpdatePassword(ctx, old, pw, confirm); err != nil {
				return err
			}
			s.println("password updated, please log in again")
			return nil
		}),
	}
}

func newForgotPasswordCmd(r *runner) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset link by email",
		RunE: r.run(func(ctx context.Context, s *session) error {
			var err error
			if email, err = s.text(email, "Email"); err != nil {
				return err
			}
			if err := s.auth.ForgotPassword(ctx, email); err != nil {
				return err
			}
			s.println("a reset link has been sent to", email)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	return cmd
}

func newResetPasswordCmd(r *runner) *cobra.Command {
	var email, token string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using the token from a reset link",
		RunE: r.run(func(ctx context.Context, s *session) error {
			var err error
			if email, err = s.text(email, "Email"); err != nil {
				return err
			}
			if token, err = s.text(token, "Token"); err != nil {
				return err
			}
			pw, err := s.password("New password")
			if err != nil {
				return err
			}
			confirm, err := s.password("Confirm new password")
			if err != nil {
				return err
			}
			defer wipe(pw, confirm)

			err = s.auth.ResetPassword(ctx, client.ResetPasswordRequest{
				Email:              email,
				Token:              token,
				NewPassword:        string(pw),
				ConfirmNewPassword: string(confirm),
			})
			if err != nil {
				return err
			}
			s.println("password reset, you can log in now")
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&token, "token", "", "token from the reset link")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: r.run(func(ctx context.Context, s *session) error {
			if err := s.auth.Logout(ctx); err != nil {
				return err
			}
			s.println("logged out")
			return nil
		}),
	}
}

func newWhoAmICmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the user of the stored session",
		RunE: r.run(func(ctx context.Context, s *session) error {
			user, err := s.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			s.println(user)
			return nil
		}),
	}
}
