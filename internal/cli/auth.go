package cli

import (
	"errors"
	"fmt"

	"github.com/existflow/protodo/internal/message"
	"github.com/existflow/protodo/internal/model"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your ProTodo account",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:     "signup",
	Aliases: []string{"register"},
	Short:   "Create a new ProTodo account",
	RunE:    runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE:  runWhoami,
}

var loginEmail string

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when empty)")
}

// fieldError turns validation failures into one command error, printing
// each field on its own line first.
func fieldError(cmd *cobra.Command, fe model.FieldErrors) error {
	if len(fe) == 0 {
		return nil
	}
	for _, field := range []string{"first_name", "last_name", "email", "password", "confirm_password", "title"} {
		if msg, ok := fe[field]; ok {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "❌ %s\n", msg)
		}
	}
	return errors.New("invalid input")
}

func runLogin(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	email := loginEmail
	if email == "" {
		var err error
		if email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}

	if err := fieldError(cmd, model.ValidateLogin(email, password)); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, _ = fmt.Fprintln(out, "🔄 Logging in...")
	if _, err := a.session.Login(cmd.Context(), email, password); err != nil {
		return errors.New(message.Login(err))
	}

	user := a.session.Snapshot().User
	_, _ = fmt.Fprintf(out, "✅ Logged in as %s\n", user.DisplayName())
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	var prof model.Profile
	var err error
	if prof.FirstName, err = p.line("First name: "); err != nil {
		return err
	}
	if prof.LastName, err = p.line("Last name: "); err != nil {
		return err
	}
	if prof.Email, err = p.line("Email: "); err != nil {
		return err
	}
	if prof.Password, err = p.password("Password: "); err != nil {
		return err
	}
	confirm, err := p.password("Confirm Password: ")
	if err != nil {
		return err
	}

	if err := fieldError(cmd, model.ValidateSignup(prof, confirm)); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, _ = fmt.Fprintln(out, "🔄 Creating account...")
	if _, err := a.session.Signup(cmd.Context(), prof); err != nil {
		return errors.New(message.Signup(err))
	}

	_, _ = fmt.Fprintln(out, "✅ Account created! Log in with: protodo login")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !a.session.Restore(cmd.Context()).IsAuthenticated() {
		_, _ = fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	_, _ = fmt.Fprintln(out, "🔄 Logging out...")
	a.session.Logout(cmd.Context())
	_, _ = fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.requireSession(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "👤 %s\n", st.User.DisplayName())
	if st.User.DisplayName() != st.User.Email {
		_, _ = fmt.Fprintf(out, "   %s\n", st.User.Email)
	}
	_, _ = fmt.Fprintf(out, "   server: %s\n", a.client.BaseURL())
	return nil
}
