package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/i474232898/point-forecast/internal/forecast"
)

var forecastFlags queryFlags

var forecastCmd = &cobra.Command{
	Use:       "forecast <daily|twice-daily|hourly>",
	Short:     "Print the point forecast for one or more coordinates",
	Example:   "  point-forecast forecast daily --point 16.15035,58.570784 --output json",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(forecast.ClassDaily), string(forecast.ClassTwiceDaily), string(forecast.ClassHourly)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := forecastFlags.validate(); err != nil {
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

		results, err := queryPoints(cmd.Context(), forecastFlags.points, forecast.Class(args[0]),
			func(lon, lat string) (facade[forecast.Record], error) {
				return forecast.NewPointForecast(lon, lat, rt.deps)
			})
		if err != nil {
			return err
		}

		if forecastFlags.output == "json" {
			return renderJSON(cmd.OutOrStdout(), results)
		}
		renderTable(cmd.OutOrStdout(), results,
			table.Row{"Valid time", "Temp °C", "Humidity %", "Wind m/s", "Gust m/s", "Cloud %", "Precip mm/h", "Total mm", "Symbol"},
			recordRow)
		return nil
	},
}

func recordRow(r forecast.Record) table.Row {
	total := "-"
	if r.TotalPrecipitation != nil {
		total = fmt.Sprintf("%.1f", *r.TotalPrecipitation)
	}
	return table.Row{
		r.ValidTime.Format(time.RFC3339),
		fmt.Sprintf("%.1f", r.Temperature),
		r.Humidity,
		fmt.Sprintf("%.1f", r.WindSpeed),
		fmt.Sprintf("%.1f", r.WindGust),
		r.TotalCloud,
		fmt.Sprintf("%.1f", r.MeanPrecipitation),
		total,
		r.Symbol,
	}
}

func init() {
	forecastFlags.register(forecastCmd)
	rootCmd.AddCommand(forecastCmd)
}
