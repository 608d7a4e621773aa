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
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnocc/internal/iosubmit"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/spf13/cobra"
)

type submitFlags struct {
	tolerance     float64
	srid          int
	forceLocation bool
	check         bool
	keepGoing     bool
}

// getSubmitCmd returns the submit command.
func getSubmitCmd() *cobra.Command {
	var flags submitFlags

	submitCmd := &cobra.Command{
		Use:   "submit FILE.yaml",
		Short: "Write submissions from a YAML file",
		Long: `Submit writes entity chains from a YAML file.

Every submission is written in its own transaction: dataset, project
and reference are resolved by name or created, the location is reused
when an existing one lies within the matching tolerance, then the event
and its occurrences are inserted. Each created row is recorded in the
audit log of its kind.

A failed submission leaves no trace in the database. By default the
command stops at the first failure, use --keep-going to continue.

Examples:
  gnocc submit survey.yaml
  gnocc submit survey.yaml --tolerance 20 --srid 25833
  gnocc submit survey.yaml --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSubmit(args[0], flags)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := submitCmd.Flags()
	f.Float64VarP(&flags.tolerance, "tolerance", "t", 0,
		"location matching distance in meters (default from config)")
	f.IntVarP(&flags.srid, "srid", "s", 0,
		"reference system of points without one (default from config)")
	f.BoolVarP(&flags.forceLocation, "force-location", "n", false,
		"always create new locations")
	f.BoolVarP(&flags.check, "check", "c", false,
		"validate submissions without writing them")
	f.BoolVarP(&flags.keepGoing, "keep-going", "k", false,
		"continue after a failed submission")

	return submitCmd
}

// submitStats summarize a batch.
type submitStats struct {
	submitted int
	failed    int
	created   map[occur.Kind]int
	reused    int
}

func runSubmit(path string, flags submitFlags) error {
	subs, err := iosubmit.Read(path)
	if err != nil {
		return err
	}
	subs = prepareSubmissions(subs, flags)
	gn.Info("Read <em>%s</em> submissions from %s",
		humanize.Comma(int64(len(subs))), path)

	if flags.check {
		return checkSubmissions(subs)
	}

	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	start := time.Now()
	var stats submitStats
	err = svc.op.WithSession(ctx, cfg.Identity(), func(s db.Session) error {
		stats, err = submitAll(ctx, svc, s, subs, flags.keepGoing)
		return err
	})

	gn.Info(submitReport(stats, time.Since(start)))
	return err
}

// prepareSubmissions applies command line overrides.
func prepareSubmissions(
	subs []occur.Submission,
	flags submitFlags,
) []occur.Submission {
	for i := range subs {
		s := &subs[i]
		if flags.tolerance > 0 {
			s.Tolerance = flags.tolerance
		}
		if flags.forceLocation {
			s.ForceNewLocation = true
		}
		if flags.srid > 0 && s.Location.Point != nil &&
			s.Location.Point.SRID == 0 {
			p := *s.Location.Point
			p.SRID = flags.srid
			s.Location.Point = &p
		}
	}
	return subs
}

func checkSubmissions(subs []occur.Submission) error {
	m := cfg.MandatoryFields()
	var res error
	for i, s := range subs {
		s.Normalize()
		if err := s.Validate(m); err != nil {
			gn.Warn("Submission <em>%d</em> is invalid", i+1)
			gn.PrintErrorMessage(err)
			res = err
		}
	}
	if res == nil {
		gn.Info("All submissions are valid")
	}
	return res
}

func submitAll(
	ctx context.Context,
	svc *services,
	s db.Session,
	subs []occur.Submission,
	keepGoing bool,
) (submitStats, error) {
	stats := submitStats{created: make(map[occur.Kind]int)}

	bar := pb.Full.Start(len(subs))
	bar.Set("prefix", "Submitting: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	var res error
	for i, sub := range subs {
		ids, err := svc.writer.Submit(ctx, s, sub)
		bar.Increment()
		if err != nil {
			stats.failed++
			slog.Error("Submission failed", "number", i+1, "error", err)
			res = err
			if !keepGoing {
				return stats, err
			}
			continue
		}

		stats.submitted++
		for _, k := range ids.Created {
			stats.created[k]++
		}
		if ids.CreatedCount(occur.KindLocation) == 0 {
			stats.reused++
		}
	}
	return stats, res
}

func submitReport(stats submitStats, dur time.Duration) string {
	res := fmt.Sprintf(
		"Submitted <em>%s</em>, failed <em>%s</em> in %s",
		humanize.Comma(int64(stats.submitted)),
		humanize.Comma(int64(stats.failed)),
		gnfmt.TimeString(dur.Seconds()),
	)
	for _, k := range occur.Kinds {
		if n := stats.created[k]; n > 0 {
			res += fmt.Sprintf("\n  new %-11s %s", k, humanize.Comma(int64(n)))
		}
	}
	if stats.reused > 0 {
		res += fmt.Sprintf("\n  existing locations used %s",
			humanize.Comma(int64(stats.reused)))
	}
	return res
}
