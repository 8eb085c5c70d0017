package console

import (
	"fmt"

	"github.com/jrsteele09/agro-console/producers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// producerFlags binds the editable producer fields to command flags.
type producerFlags struct {
	p producers.Producer
}

func (f *producerFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.p.Identification, "identification", "", "CPF or CNPJ")
	flags.StringVar(&f.p.ProducerName, "name", "", "Producer name")
	flags.StringVar(&f.p.FarmName, "farm", "", "Farm name")
	flags.StringVar(&f.p.City, "city", "", "City")
	flags.StringVar(&f.p.State, "state", "", "State (two letter code)")
	flags.Float64Var(&f.p.FarmSize, "farm-size", 0, "Total farm area in hectares")
	flags.Float64Var(&f.p.UsableArea, "usable-area", 0, "Arable area in hectares")
	flags.Float64Var(&f.p.VegetationArea, "vegetation-area", 0, "Vegetation area in hectares")
}

// apply copies the flags the user set onto p, leaving the rest as they are.
func (f *producerFlags) apply(flags *pflag.FlagSet, p *producers.Producer) {
	set := map[string]func(){
		"identification":  func() { p.Identification = f.p.Identification },
		"name":            func() { p.ProducerName = f.p.ProducerName },
		"farm":            func() { p.FarmName = f.p.FarmName },
		"city":            func() { p.City = f.p.City },
		"state":           func() { p.State = f.p.State },
		"farm-size":       func() { p.FarmSize = f.p.FarmSize },
		"usable-area":     func() { p.UsableArea = f.p.UsableArea },
		"vegetation-area": func() { p.VegetationArea = f.p.VegetationArea },
	}
	flags.Visit(func(fl *pflag.Flag) {
		if fn, ok := set[fl.Name]; ok {
			fn()
		}
	})
}

func (a *App) producersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "producers",
		Aliases: []string{"producer"},
		Short:   "List and edit producers",
	}

	var createFlags, updateFlags producerFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a producer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.producers.Create(cmd.Context(), createFlags.p)
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			return a.renderProducers(cmd, single(created))
		},
	}
	createFlags.register(create.Flags())
	for _, name := range []string{"identification", "name", "farm", "city", "state", "farm-size"} {
		_ = create.MarkFlagRequired(name)
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a producer; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.producers.Get(cmd.Context(), args[0])
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			updateFlags.apply(cmd.Flags(), current)
			updated, err := a.producers.Update(cmd.Context(), *current)
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			return a.renderProducers(cmd, single(updated))
		},
	}
	updateFlags.register(update.Flags())

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List producers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.producers.List(cmd.Context())
				if err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				return a.renderProducers(cmd, list)
			},
		},
		create,
		update,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a producer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.producers.Delete(cmd.Context(), args[0]); err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted producer "+args[0]))
				return nil
			},
		},
	)
	return cmd
}

func (a *App) renderProducers(cmd *cobra.Command, list []producers.Producer) error {
	return render(cmd.OutOrStdout(), a.output, view{
		value: list,
		table: func() string {
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				rows = append(rows, []string{
					p.ID,
					p.Identification,
					p.ProducerName,
					p.FarmName,
					p.City,
					p.State,
					formatNumber(p.FarmSize),
					formatNumber(p.UsableArea),
					formatNumber(p.VegetationArea),
				})
			}
			return newTable(
				[]string{"ID", "Identification", "Producer", "Farm", "City", "State", "Farm size", "Usable", "Vegetation"},
				rows, 6, 7, 8,
			)
		},
	})
}
