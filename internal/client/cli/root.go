package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophersocial/internal/client/client"
	"github.com/dmitrijs2005/gophersocial/internal/client/config"
	"github.com/spf13/cobra"
)

type appFactory func(ctx context.Context, c *config.Config) (*App, error)

// NewRootCmd creates the root command for the gophersocial CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(NewApp)
}

func newRootCmd(newApp appFactory) *cobra.Command {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	cmd := &cobra.Command{
		Use:   "gophersocial",
		Short: "gophersocial - account and session management",
		Long: `gophersocial talks to the gophersocial server to register accounts,
log in and keep the resulting session fresh, and change or reset passwords.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	r := &runner{newApp: newApp}
	cmd.AddCommand(
		newRegisterCmd(r),
		newLoginCmd(r),
		newRefreshCmd(r),
		newUpdatePasswordCmd(r),
		newForgotPasswordCmd(r),
		newResetPasswordCmd(r),
		newLogoutCmd(r),
		newWhoAmICmd(r),
	)

	return cmd
}

type runner struct {
	newApp appFactory
}

// session is what a command body sees: the app plus its I/O.
type session struct {
	*App
	cmd    *cobra.Command
	reader *bufio.Reader
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.cmd.OutOrStdout(), a...)
}

func (s *session) text(value, prompt string) (string, error) {
	return textOrPrompt(s.reader, s.cmd.OutOrStdout(), value, prompt)
}

func (s *session) password(prompt string) ([]byte, error) {
	return GetPassword(s.cmd.OutOrStdout(), prompt)
}

// run adapts fn into a cobra RunE: it loads the configuration from the
// command's flags and the environment, opens the App and closes it after fn.
func (r *runner) run(fn func(ctx context.Context, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		app, err := r.newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, app.Close())
		}()

		s := &session{App: app, cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
		return explain(fn(cmd.Context(), s))
	}
}

// explain turns transport sentinels into hints for the terminal user.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrNoSession):
		return errors.New("not logged in, run 'gophersocial login' first")
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("%w (is the server running?)", err)
	}
	return err
}
