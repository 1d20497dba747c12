package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/willibrandon/gosolc/auth"
	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewMirrorCommand creates the mirror command group
func NewMirrorCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Manage credentials for private release mirrors",
		Long: `Store and remove credentials for private release mirrors. Credentials
are kept in the operating system keychain, keyed by host, and are sent
only over HTTPS.`,
	}
	cmd.AddCommand(newMirrorLoginCommand(console, opts), newMirrorLogoutCommand(console, opts))
	return cmd
}

func newMirrorLoginCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login [mirror-url]",
		Short: "Store a credential for a mirror",
		Long: `Store a token for a mirror, the configured mirror by default. The token
is prompted for on a terminal and read from stdin otherwise. With
--username it is sent as a basic-auth password instead of a bearer token.

Examples:
  gosolc mirror login https://solc.internal.example.com
  echo "$TOKEN" | gosolc mirror login`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mirror, err := mirrorArg(opts, args)
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd.InOrStdin(), console)
			if err != nil {
				return err
			}

			cred := auth.Credential{Type: auth.TypeBearer, Secret: secret}
			if username != "" {
				cred = auth.Credential{Type: auth.TypeBasic, Username: username, Secret: secret}
			}
			if err := keychain.Set(mirror, cred); err != nil {
				return err
			}
			console.Success("Stored credential for %s", auth.HostOf(mirror))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Send the secret as the password for this user")

	return cmd
}

func newMirrorLogoutCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout [mirror-url]",
		Short: "Remove the stored credential for a mirror",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mirror, err := mirrorArg(opts, args)
			if err != nil {
				return err
			}
			if err := keychain.Delete(mirror); err != nil {
				return err
			}
			console.Success("Removed credential for %s", auth.HostOf(mirror))
			return nil
		},
	}
}

func mirrorArg(opts *cli.GlobalOptions, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	return cfg.Mirror, nil
}

func readSecret(in io.Reader, console *output.Console) (string, error) {
	var secret string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(console.Err(), "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(console.Err())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		secret = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read token: %w", err)
		}
		secret = line
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errors.New("empty token")
	}
	return secret, nil
}
