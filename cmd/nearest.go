/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/format"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/spf13/cobra"
)

// getNearestCmd returns the nearest command.
func getNearestCmd() *cobra.Command {
	var (
		srid      int
		tolerance float64
	)

	nearestCmd := &cobra.Command{
		Use:   "nearest X Y",
		Short: "Find the stored location a point would be matched to",
		Long: `Nearest shows which existing location a submitted point would
resolve to. Nothing is written.

Coordinates are longitude and latitude unless --srid says otherwise.

Examples:
  gnocc nearest 10.75 59.91
  gnocc nearest 262000 6650000 --srid 25833 --tolerance 100`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1], srid)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			if tolerance <= 0 {
				tolerance = cfg.Spatial.Tolerance
			}
			err = runNearest(cmd.OutOrStdout(), p, tolerance)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	nearestCmd.Flags().IntVarP(&srid, "srid", "s", 0,
		"reference system of the point (default from config)")
	nearestCmd.Flags().Float64VarP(&tolerance, "tolerance", "t", 0,
		"matching distance in meters (default from config)")

	return nearestCmd
}

func parsePoint(xs, ys string, srid int) (occur.Point, error) {
	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	if errX != nil || errY != nil {
		return occur.Point{}, usageError(
			"Coordinates <em>%s %s</em> are not numbers", xs, ys,
		)
	}
	return occur.Point{X: x, Y: y, SRID: srid}, nil
}

func runNearest(w io.Writer, p occur.Point, tolerance float64) error {
	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	q := svc.op.Pool()

	store, err := svc.matcher.Transform(ctx, q, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Point in EPSG:%d: %.1f %.1f\n",
		config.StoreSRID, store.X, store.Y)

	m, ok, err := svc.matcher.FindNearest(ctx, q, p, tolerance)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "No location within %gm, a new one would be created\n",
			tolerance)
		return nil
	}

	loc, err := svc.lookup.Location(ctx, q, m.LocationID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\t%.1fm\n", format.LocationLabel(loc), m.Distance)
	return nil
}
