package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/compumarket/catalogadmin/internal/credentials"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a catalog administrator",
		Long: `Exchanges a username and password for an API token and saves it to the
credentials file (CATALOG_CREDENTIALS_FILE).

The password is read from --password, CATALOG_PASSWORD, or standard input.`,
		Example: `  # Prompt for the password
  catalogadmin login --username admin

  # Non-interactive
  CATALOG_PASSWORD=secret catalogadmin login -u admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = os.Getenv("CATALOG_USERNAME")
			}
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				password = os.Getenv("CATALOG_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			if err := a.client.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Administrator username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Administrator password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved login",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			cred := a.holder.Credential()
			if cred.Token == "" {
				return fmt.Errorf("not logged in; run \"catalogadmin login\"")
			}
			fmt.Fprint(cmd.OutOrStdout(), describeCredential(cred, credentials.ParseClaims(cred.Token), time.Now()))
			return nil
		},
	}
}

// describeCredential renders the saved login for whoami
func describeCredential(cred credentials.Credential, claims credentials.Claims, now time.Time) string {
	var b strings.Builder

	user := cred.Username
	if user == "" {
		user = claims.Username
	}
	if user == "" {
		user = "(unknown)"
	}
	fmt.Fprintf(&b, "User:      %s\n", user)
	if claims.Role != "" {
		fmt.Fprintf(&b, "Role:      %s\n", claims.Role)
	}
	if !cred.SavedAt.IsZero() {
		fmt.Fprintf(&b, "Logged in: %s\n", cred.SavedAt.Local().Format(time.RFC3339))
	}
	switch {
	case !claims.JWT || claims.ExpiresAt.IsZero():
		fmt.Fprintf(&b, "Expires:   unknown\n")
	case claims.Expired(now):
		fmt.Fprintf(&b, "Expires:   %s (expired, log in again)\n", claims.ExpiresAt.Local().Format(time.RFC3339))
	default:
		fmt.Fprintf(&b, "Expires:   %s\n", claims.ExpiresAt.Local().Format(time.RFC3339))
	}
	return b.String()
}
