package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/refresh"
)

// newLoginCommand stores an access token for later commands.
func newLoginCommand(a *app) *cobra.Command {
	var (
		token     string
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Long: `Store an access token for later commands.

The token is read from --access-token, or prompted for when omitted. It is kept in the
local token file and, when a Redis or NATS cache is configured, shared there too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				prompted, err := a.promptToken()
				if err != nil {
					return err
				}

				token = prompted
			}

			if token == "" {
				return constants.ErrEmptyToken
			}

			stored := &refresh.Token{AccessToken: token}
			if expiresIn > 0 {
				stored.ExpiresAt = time.Now().Add(expiresIn)
			}

			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			defer func() { _ = closeStore() }()

			err = store.Save(cmd.Context(), loginKey, stored)
			if err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			_, _ = fmt.Fprintln(a.stdout, "Token stored")

			if !stored.ExpiresAt.IsZero() {
				_, _ = fmt.Fprintf(a.stdout, "Expires at %s\n", stored.ExpiresAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&token, "access-token", "", "access token to store (prompted when omitted)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "token lifetime, for example 1h (zero never expires)")

	return cmd
}

// promptToken reads a token without echo from a terminal, or a line from piped input.
func (a *app) promptToken() (string, error) {
	if file, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) { //nolint:gosec // file descriptors fit in int
		_, _ = fmt.Fprint(a.stderr, "Access token: ")

		secret, err := term.ReadPassword(int(file.Fd())) //nolint:gosec // file descriptors fit in int
		_, _ = fmt.Fprintln(a.stderr)

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// newLogoutCommand removes the stored token.
func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			defer func() { _ = closeStore() }()

			err = store.Delete(cmd.Context(), loginKey)
			if err != nil {
				return fmt.Errorf("removing token: %w", err)
			}

			_, _ = fmt.Fprintln(a.stdout, "Logged out")

			return nil
		},
	}
}
