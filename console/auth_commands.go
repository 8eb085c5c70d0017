package console

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/agro-console/internal/utils"
	"github.com/jrsteele09/agro-console/token"
	"github.com/jrsteele09/agro-console/users"
	"github.com/spf13/cobra"
)

func (a *App) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in and keep the session for later commands",
		Annotations: public(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}
			user, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.printUser(cmd, "Logged in as", user)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) registerCommand() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account and log into it",
		Annotations: public(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}
			user, err := a.auth.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			return a.printUser(cmd, "Registered and logged in as", user)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the stored session",
		Annotations: public(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Logged out"))
			return nil
		},
	}
}

type whoami struct {
	User      *users.User `json:"user"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Active    bool        `json:"active"`
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.auth.CurrentUser()
			if err != nil {
				return err
			}

			w := whoami{User: user, Active: true}
			if i, err := token.Inspect(a.store.AccessToken()); err == nil {
				w.Active = i.Active
				if !i.Exp.IsZero() {
					w.ExpiresAt = utils.Ptr(i.Exp.UTC())
				}
			}

			return render(cmd.OutOrStdout(), a.output, view{
				value: w,
				table: func() string {
					expires := "unknown"
					if exp := utils.Value(w.ExpiresAt); !exp.IsZero() {
						expires = exp.Format(time.RFC3339)
						if !w.Active {
							expires += " (expired, refreshed on next call)"
						}
					}
					return newTable(
						[]string{"ID", "Name", "Email", "Token expires"},
						[][]string{{user.ID, user.Name, user.Email, expires}},
					)
				},
			})
		},
	}
}

func (a *App) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Trade the refresh token for a new access token now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.auth.RefreshAccessToken(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("the API did not issue a new access token; run `agroctl login`")
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Access token refreshed"))
			return nil
		},
	}
}

func (a *App) printUser(cmd *cobra.Command, prefix string, user *users.User) error {
	return render(cmd.OutOrStdout(), a.output, view{
		value: user,
		table: func() string {
			return successStyle.Render(fmt.Sprintf("%s %s <%s>", prefix, user.DisplayName(), user.Email))
		},
	})
}

// prompt reads one line from the command's input.
func (a *App) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
