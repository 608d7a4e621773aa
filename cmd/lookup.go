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
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/spf13/cobra"
)

type lookupFlags struct {
	dataset      string
	project      int64
	country      string
	county       string
	municipality string
	waterBody    string
	limit        int
	json         bool
}

// lister produces one selection list.
type lister func(
	ctx context.Context,
	l gnocc.Lookup,
	q db.Querier,
	arg string,
	f lookupFlags,
) ([]occur.IDLabel, error)

var listers = map[string]lister{
	"datasets": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Datasets(ctx, q)
	},
	"projects": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, f lookupFlags) ([]occur.IDLabel, error) {
		return l.Projects(ctx, q, f.dataset)
	},
	"references": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, f lookupFlags) ([]occur.IDLabel, error) {
		return l.References(ctx, q, f.project)
	},
	"taxa": func(ctx context.Context, l gnocc.Lookup, q db.Querier, arg string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Taxa(ctx, q, arg)
	},
	"ecotypes": func(ctx context.Context, l gnocc.Lookup, q db.Querier, arg string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Ecotypes(ctx, q, arg)
	},
	"terms": func(ctx context.Context, l gnocc.Lookup, q db.Querier, arg string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Terms(ctx, q, arg)
	},
	"institutions": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Institutions(ctx, q)
	},
	"access-rights": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.AccessRights(ctx, q)
	},
	"countries": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Countries(ctx, q)
	},
	"counties": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, f lookupFlags) ([]occur.IDLabel, error) {
		return l.Counties(ctx, q, f.country)
	},
	"municipalities": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, f lookupFlags) ([]occur.IDLabel, error) {
		return l.Municipalities(ctx, q, f.country, f.county)
	},
	"locations": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, f lookupFlags) ([]occur.IDLabel, error) {
		return l.Locations(ctx, q, occur.LocationFilter{
			CountryCode:  f.country,
			County:       f.county,
			Municipality: f.municipality,
			WaterBody:    f.waterBody,
			Limit:        f.limit,
		})
	},
	"users": func(ctx context.Context, l gnocc.Lookup, q db.Querier, _ string, _ lookupFlags) ([]occur.IDLabel, error) {
		return l.Users(ctx, q)
	},
}

// needsArg lists kinds that take a positional argument.
var needsArg = map[string]string{
	"taxa":     "name fragment",
	"ecotypes": "taxon name",
	"terms":    "vocabulary",
}

func lookupKinds() []string {
	res := []string{"families"}
	for k := range listers {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// getLookupCmd returns the lookup command.
func getLookupCmd() *cobra.Command {
	var flags lookupFlags

	lookupCmd := &cobra.Command{
		Use:   "lookup KIND [ARG]",
		Short: "Print selection lists of stored values",
		Long: fmt.Sprintf(`Lookup prints identifiers and labels of stored values,
one per line, separated by a tab.

Kinds: %s

Examples:
  gnocc lookup datasets
  gnocc lookup projects --dataset 5c1b...
  gnocc lookup taxa salmo
  gnocc lookup terms sampling_protocol
  gnocc lookup locations --country NO --water-body mjø --limit 20`,
			strings.Join(lookupKinds(), ", ")),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runLookup(cmd.OutOrStdout(), args, flags)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := lookupCmd.Flags()
	f.StringVarP(&flags.dataset, "dataset", "d", "", "dataset ID")
	f.Int64VarP(&flags.project, "project", "p", 0, "project ID")
	f.StringVar(&flags.country, "country", "", "country code")
	f.StringVar(&flags.county, "county", "", "county")
	f.StringVar(&flags.municipality, "municipality", "", "municipality")
	f.StringVarP(&flags.waterBody, "water-body", "w", "",
		"beginning of a water body name")
	f.IntVarP(&flags.limit, "limit", "l", 0, "maximum number of locations")
	f.BoolVarP(&flags.json, "json", "j", false, "print JSON")

	return lookupCmd
}

// lookupArg checks the positional argument of a kind.
func lookupArg(args []string) (kind, arg string, err error) {
	kind = strings.ToLower(args[0])
	if len(args) > 1 {
		arg = args[1]
	}

	if _, ok := listers[kind]; !ok && kind != "families" {
		return "", "", usageError(
			"Unknown lookup kind <em>%s</em>, use one of: %s",
			kind, strings.Join(lookupKinds(), ", "),
		)
	}
	if what, ok := needsArg[kind]; ok && arg == "" {
		return "", "", usageError("Lookup of <em>%s</em> needs a %s", kind, what)
	}
	return kind, arg, nil
}

func runLookup(w io.Writer, args []string, flags lookupFlags) error {
	kind, arg, err := lookupArg(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	q := svc.op.Pool()

	if kind == "families" {
		fams, err := svc.lookup.Families(ctx, q)
		if err != nil {
			return err
		}
		if flags.json {
			return printJSON(w, fams)
		}
		for _, k := range slices.Sorted(maps.Keys(fams)) {
			fmt.Fprintf(w, "%s\t%s\n", k, strings.Join(fams[k], ", "))
		}
		return nil
	}

	res, err := listers[kind](ctx, svc.lookup, q, arg, flags)
	if err != nil {
		return err
	}
	if flags.json {
		return printJSON(w, res)
	}
	printIDLabels(w, res)
	return nil
}

func printIDLabels(w io.Writer, ls []occur.IDLabel) {
	for _, v := range ls {
		fmt.Fprintf(w, "%s\t%s\n", v.ID, v.Label)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bs))
	return err
}

var untag = strings.NewReplacer("<em>", "", "</em>", "")

func usageError(msg string, vars ...any) error {
	plain := fmt.Sprintf(untag.Replace(msg), vars...)
	return &gn.Error{
		Code: errcode.UsageError,
		Msg:  msg,
		Vars: vars,
		Err:  errors.New(plain),
	}
}

func parseID(s string) (int64, error) {
	res, err := strconv.ParseInt(s, 10, 64)
	if err != nil || res <= 0 {
		return 0, usageError("<em>%s</em> is not a valid numeric ID", s)
	}
	return res, nil
}
