package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
)

// prompter asks for values that were not passed as flags.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// secret reads a line without echo. Nil falls back to a plain read.
	secret func() (string, error)
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(f.Fd()) {
		p.secret = func() (string, error) {
			b, err := term.ReadPassword(f.Fd())
			fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) password(label string) (string, error) {
	if p.secret == nil {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	return p.secret()
}

// valueOr returns the flag value, prompting when it is empty.
func (p *prompter) valueOr(cmd *cobra.Command, flag, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	return p.line(label)
}

// accountError turns form and server errors into one readable error.
func accountError(err error, fallback string) error {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Error())
	}
	return errors.New(api.Message(err, fallback))
}

func displayName(u api.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		p := newPrompter(cmd)
		email, err := p.valueOr(cmd, "email", "Email")
		if err != nil {
			return err
		}
		password, err := p.password("Password")
		if err != nil {
			return err
		}

		u, err := d.auth.Login(cmd.Context(), auth.LoginForm{Email: email, Password: password})
		if err != nil {
			return accountError(err, "Sign in failed.")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s).\n", displayName(u), u.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		p := newPrompter(cmd)
		name, err := p.valueOr(cmd, "name", "Name")
		if err != nil {
			return err
		}
		email, err := p.valueOr(cmd, "email", "Email")
		if err != nil {
			return err
		}
		password, err := p.password("Password")
		if err != nil {
			return err
		}

		u, err := d.auth.Register(cmd.Context(), auth.RegisterForm{Name: name, Email: email, Password: password})
		if err != nil {
			return accountError(err, "Registration failed.")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s.\n", displayName(u))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		if d.auth == nil {
			d.tokens.Clear(cmd.Context())
			fmt.Fprintln(out, "Signed out on this computer.")
			return nil
		}
		if err := d.auth.Logout(cmd.Context()); err != nil {
			fmt.Fprintln(out, "Signed out on this computer. The server could not be reached.")
			return nil
		}
		fmt.Fprintln(out, "Signed out.")
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		email, err := newPrompter(cmd).valueOr(cmd, "email", "Email")
		if err != nil {
			return err
		}
		msg, err := d.auth.ForgotPassword(cmd.Context(), auth.ForgotForm{Email: email})
		if err != nil {
			return accountError(err, "Could not send the reset email.")
		}
		if msg == "" {
			msg = "If that address has an account, a reset link is on its way."
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with an emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}

		p := newPrompter(cmd)
		token, err := p.valueOr(cmd, "token", "Reset token")
		if err != nil {
			return err
		}
		password, err := p.password("New password")
		if err != nil {
			return err
		}
		confirm, err := p.password("Confirm password")
		if err != nil {
			return err
		}

		msg, err := d.auth.ResetPassword(cmd.Context(), auth.ResetForm{Token: token, Password: password, Confirm: confirm})
		if err != nil {
			return accountError(err, "Could not reset the password.")
		}
		if msg == "" {
			msg = "Password updated. Sign in with the new password."
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("name", "", "Display name")
	forgotPasswordCmd.Flags().String("email", "", "Account email")
	resetPasswordCmd.Flags().String("token", "", "Reset token from the email")
}
