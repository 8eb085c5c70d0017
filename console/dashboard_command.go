package console

import (
	"strings"

	"github.com/jrsteele09/agro-console/statistics"
	"github.com/spf13/cobra"
)

func (a *App) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show farm totals and the breakdown by state, crop and land use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.statistics.Dashboard(cmd.Context())
			if err != nil {
				return a.checkSession(cmd.Context(), err)
			}
			return render(cmd.OutOrStdout(), a.output, view{
				value: d,
				table: func() string { return dashboardTables(d) },
			})
		},
	}
}

func dashboardTables(d *statistics.Dashboard) string {
	var b strings.Builder
	b.WriteString(newTable(
		[]string{"Farms", "Total hectares"},
		[][]string{{formatNumber(d.FarmCount), formatNumber(d.TotalHectares)}},
		0, 1,
	))
	for _, section := range []struct {
		title string
		chart statistics.PieChart
	}{
		{"By state", d.ByState},
		{"By crop", d.ByCrop},
		{"By land use", d.LandUse.Chart()},
	} {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render(section.title))
		b.WriteString("\n")
		b.WriteString(pieTable(section.chart))
	}
	return b.String()
}

func pieTable(chart statistics.PieChart) string {
	slices := chart.Slices()
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, []string{s.Label, formatNumber(s.Value), formatPercent(s.Percent)})
	}
	return newTable([]string{"Label", "Value", "Share"}, rows, 1, 2)
}
