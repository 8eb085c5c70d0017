package console

import (
	"fmt"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/producercrops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func registerFarmFlags(flags *pflag.FlagSet, in *producercrops.Input) {
	flags.StringVar(&in.ProducerID, "producer", "", "Producer id")
	flags.StringVar(&in.CropID, "crop", "", "Crop id")
	flags.Float64Var(&in.Area, "area", 0, "Planted area in hectares")
}

// farmsCommand manages producer crops, shown to users as farms.
func (a *App) farmsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "farms",
		Aliases: []string{"farm", "producer-crops"},
		Short:   "List and edit which crops each producer plants",
	}

	var createInput, updateInput producercrops.Input
	create := &cobra.Command{
		Use:   "create",
		Short: "Plant a crop on a producer's farm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.producerCrops.Create(cmd.Context(), createInput)
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			return a.renderFarms(cmd, single(created))
		},
	}
	registerFarmFlags(create.Flags(), &createInput)
	for _, name := range []string{"producer", "crop", "area"} {
		_ = create.MarkFlagRequired(name)
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a farm record; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.currentFarmInput(cmd, args[0])
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			flags := cmd.Flags()
			if flags.Changed("producer") {
				in.ProducerID = updateInput.ProducerID
			}
			if flags.Changed("crop") {
				in.CropID = updateInput.CropID
			}
			if flags.Changed("area") {
				in.Area = updateInput.Area
			}

			updated, err := a.producerCrops.Update(cmd.Context(), args[0], in)
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			return a.renderFarms(cmd, single(updated))
		},
	}
	registerFarmFlags(update.Flags(), &updateInput)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List farms",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.producerCrops.List(cmd.Context())
				if err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				return a.renderFarms(cmd, list)
			},
		},
		create,
		update,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a farm record",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.producerCrops.Delete(cmd.Context(), args[0]); err != nil {
					return a.checkSession(cmd.Context(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted farm "+args[0]))
				return nil
			},
		},
	)
	return cmd
}

func (a *App) currentFarmInput(cmd *cobra.Command, id string) (producercrops.Input, error) {
	list, err := a.producerCrops.List(cmd.Context())
	if err != nil {
		return producercrops.Input{}, err
	}
	for _, pc := range list {
		if pc.ID == id {
			return producercrops.Input{ProducerID: pc.Producer.ID, CropID: pc.Crop.ID, Area: pc.Area}, nil
		}
	}
	return producercrops.Input{}, fmt.Errorf("[farms update] farm %s not found: %w", id, apperrors.ErrInvalidInput)
}

func (a *App) renderFarms(cmd *cobra.Command, list []producercrops.ProducerCrop) error {
	return render(cmd.OutOrStdout(), a.output, view{
		value: list,
		table: func() string {
			rows := make([][]string, 0, len(list))
			for _, pc := range list {
				rows = append(rows, []string{pc.ID, pc.ProducerLabel(), pc.CropLabel(), formatNumber(pc.Area), pc.CreatedAt})
			}
			return newTable([]string{"ID", "Producer", "Crop", "Area", "Created"}, rows, 3)
		},
	})
}
