package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/point-forecast/internal/forecast"
)

// maxConcurrentPoints bounds how many points are fetched at once.
const maxConcurrentPoints = 4

type queryFlags struct {
	points []string
	output string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.points, "point", "p", nil, "coordinate as lon,lat (repeatable)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "table", "output format: table, json")
	_ = cmd.MarkFlagRequired("point")
}

func (f *queryFlags) validate() error {
	switch f.output {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output format %q", f.output)
	}
	for _, p := range f.points {
		if _, _, err := parsePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// pointResult is one coordinate's forecast.
type pointResult[T any] struct {
	Coordinate forecast.Coordinate `json:"coordinate"`
	Class      forecast.Class      `json:"class"`
	Records    []T                 `json:"records"`
}

// parsePoint splits "lon,lat".
func parsePoint(s string) (string, string, error) {
	lon, lat, ok := strings.Cut(s, ",")
	if !ok || strings.TrimSpace(lon) == "" || strings.TrimSpace(lat) == "" {
		return "", "", fmt.Errorf("invalid point %q, want lon,lat", s)
	}
	return strings.TrimSpace(lon), strings.TrimSpace(lat), nil
}

// facade is satisfied by both forecast facades.
type facade[T any] interface {
	Coordinate() forecast.Coordinate
	Forecast(ctx context.Context, class forecast.Class) ([]T, error)
}

// queryPoints runs one facade per point, at most maxConcurrentPoints at a
// time. Results keep the order of points; the first error cancels the rest.
func queryPoints[T any](ctx context.Context, points []string, class forecast.Class, open func(lon, lat string) (facade[T], error)) ([]pointResult[T], error) {
	results := make([]pointResult[T], len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPoints)
	for i, p := range points {
		g.Go(func() error {
			lon, lat, err := parsePoint(p)
			if err != nil {
				return err
			}
			f, err := open(lon, lat)
			if err != nil {
				return err
			}
			records, err := f.Forecast(gctx, class)
			if err != nil {
				return err
			}
			results[i] = pointResult[T]{Coordinate: f.Coordinate(), Class: class, Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderJSON(w io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func renderTable[T any](w io.Writer, results []pointResult[T], header table.Row, row func(T) table.Row) {
	for _, res := range results {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("%s forecast, lon %s lat %s", res.Class, res.Coordinate.Lon, res.Coordinate.Lat))
		t.AppendHeader(header)
		for _, r := range res.Records {
			t.AppendRow(row(r))
		}
		t.Render()
	}
}
