package console

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// annotationPublic marks commands that run without a session.
const annotationPublic = "agroctl/public"

// Command builds the agroctl command tree bound to a.
func (a *App) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agroctl",
		Short: "Manage producers, crops and farms of the agro API",
		Long: `agroctl is a console for the agro API.

It logs in once, keeps the session between runs, and refreshes the access
token transparently when the API rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(a.output); err != nil {
				return err
			}
			if err := a.init(cmd.Context()); err != nil {
				return err
			}
			if isPublic(cmd) {
				return nil
			}
			return a.requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cmd, a.cfg.GetAppName())
			return cmd.Help()
		},
		Annotations: map[string]string{annotationPublic: "true"},
	}
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", a.output, "Output format (table, json, yaml)")
	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", a.apiURL, "Base URL of the agro API")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", a.logLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.refreshCommand(),
		a.dashboardCommand(),
		a.cropsCommand(),
		a.producersCommand(),
		a.farmsCommand(),
	)
	return cmd
}

func isPublic(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationPublic] == "true"
}

func public() map[string]string {
	return map[string]string{annotationPublic: "true"}
}

func displayAppname(cmd *cobra.Command, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	figure.Write(cmd.OutOrStdout(), myFigure)
	fmt.Fprintln(cmd.OutOrStdout())
}
