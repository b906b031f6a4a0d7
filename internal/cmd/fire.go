package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/i474232898/point-forecast/internal/forecast"
)

var fireFlags queryFlags

var fireCmd = &cobra.Command{
	Use:       "fire <daily|hourly>",
	Short:     "Print the fire-risk forecast for one or more coordinates",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(forecast.ClassDaily), string(forecast.ClassHourly)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fireFlags.validate(); err != nil {
			return err
		}
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		rt, err := newStack(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		results, err := queryPoints(cmd.Context(), fireFlags.points, forecast.Class(args[0]),
			func(lon, lat string) (facade[forecast.FireRecord], error) {
				return forecast.NewFirePointForecast(lon, lat, rt.deps)
			})
		if err != nil {
			return err
		}

		if fireFlags.output == "json" {
			return renderJSON(cmd.OutOrStdout(), results)
		}
		renderTable(cmd.OutOrStdout(), results,
			table.Row{"Valid time", "Risk", "FWI", "ISI", "BUI", "Temp °C", "Wind m/s", "Humidity %", "Precip mm"},
			fireRow)
		return nil
	},
}

func fireRow(r forecast.FireRecord) table.Row {
	return table.Row{
		r.ValidTime.Format(time.RFC3339),
		r.FWIIndex,
		fmt.Sprintf("%.1f", r.FWI),
		fmt.Sprintf("%.1f", r.ISI),
		fmt.Sprintf("%.1f", r.BUI),
		fmt.Sprintf("%.1f", r.Temperature),
		fmt.Sprintf("%.1f", r.WindSpeed),
		r.Humidity,
		fmt.Sprintf("%.1f", r.Precipitation),
	}
}

func init() {
	fireFlags.register(fireCmd)
	rootCmd.AddCommand(fireCmd)
}
