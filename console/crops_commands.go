package console

import (
	"fmt"

	"github.com/jrsteele09/agro-console/crops"
	"github.com/spf13/cobra"
)

func (a *App) cropsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "crops",
		Aliases: []string{"crop"},
		Short:   "List and edit crops",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List crops",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.crops.List(cmd.Context())
				if err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				return a.renderCrops(cmd, list)
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a crop",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				crop, err := a.crops.Create(cmd.Context(), args[0])
				if err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				return a.renderCrops(cmd, single(crop))
			},
		},
		&cobra.Command{
			Use:   "update ID NAME",
			Short: "Rename a crop",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				crop, err := a.crops.Update(cmd.Context(), args[0], args[1])
				if err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				return a.renderCrops(cmd, single(crop))
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a crop",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.crops.Delete(cmd.Context(), args[0]); err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted crop "+args[0]))
				return nil
			},
		},
	)
	return cmd
}

func (a *App) renderCrops(cmd *cobra.Command, list []crops.Crop) error {
	return render(cmd.OutOrStdout(), a.output, view{
		value: list,
		table: func() string {
			rows := make([][]string, 0, len(list))
			for _, c := range list {
				rows = append(rows, []string{c.ID, c.Name})
			}
			return newTable([]string{"ID", "Name"}, rows)
		},
	})
}
