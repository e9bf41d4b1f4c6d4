package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/session"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account for --user",
	Long: `Create an account on the auth service. The password is read from
standard input: the first line is the password, the second its confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return runSignup(cmd.Context(), data.NewClient(cfg), cmd.InOrStdin(), cmd.OutOrStdout(), cfg.UserEmail)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the password of --user against the auth service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return runLogin(cmd.Context(), data.NewClient(cfg), cmd.InOrStdin(), cmd.OutOrStdout(), cfg.UserEmail)
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
}

// readLines reads up to n lines from r.
func readLines(r io.Reader, n int) []string {
	sc := bufio.NewScanner(r)
	var out []string
	for len(out) < n && sc.Scan() {
		out = append(out, strings.TrimRight(sc.Text(), "\r"))
	}
	return out
}

func runSignup(ctx context.Context, auth session.Authenticator, in io.Reader, w io.Writer, email string) error {
	lines := readLines(in, 2)
	for len(lines) < 2 {
		lines = append(lines, "")
	}
	if err := session.New().SignUp(ctx, auth, email, lines[0], lines[1]); err != nil {
		return err
	}
	fmt.Fprintf(w, "Account created for %s\n", email)
	return nil
}

func runLogin(ctx context.Context, auth session.Authenticator, in io.Reader, w io.Writer, email string) error {
	lines := readLines(in, 1)
	if len(lines) == 0 {
		return errors.New("no password on standard input")
	}
	id, err := session.New().SignIn(ctx, auth, email, lines[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Signed in as %s\n", id.Email)
	return nil
}
