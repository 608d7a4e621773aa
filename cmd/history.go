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
	"strings"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/format"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/spf13/cobra"
)

type historyFlags struct {
	user      string
	entity    string
	operation string
	from      string
	to        string
	limit     int
	json      bool
}

// getHistoryCmd returns the history command.
func getHistoryCmd() *cobra.Command {
	var flags historyFlags

	historyCmd := &cobra.Command{
		Use:   "history KIND",
		Short: "Print the audit log of an entity kind",
		Long: fmt.Sprintf(`History prints changes recorded in the audit log of one
entity kind, oldest first.

Kinds: %s

Dates are YYYY-MM-DD or RFC 3339 timestamps. --to is exclusive.
--user accepts SQL LIKE patterns.

Examples:
  gnocc history location
  gnocc history occurrence --by 'ola%%' --from 2024-01-01
  gnocc history dataset --entity 5c1b... --json`, kindNames()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runHistory(cmd.OutOrStdout(), args[0], flags)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := historyCmd.Flags()
	f.StringVar(&flags.user, "by", "", "user name or LIKE pattern")
	f.StringVarP(&flags.entity, "entity", "e", "", "entity ID")
	f.StringVarP(&flags.operation, "op", "o", "", "insert or update")
	f.StringVar(&flags.from, "from", "", "earliest date")
	f.StringVar(&flags.to, "to", "", "date after the last one")
	f.IntVarP(&flags.limit, "limit", "l", 0, "maximum number of entries")
	f.BoolVarP(&flags.json, "json", "j", false, "print JSON")

	return historyCmd
}

func kindNames() string {
	res := make([]string, len(occur.Kinds))
	for i, k := range occur.Kinds {
		res[i] = string(k)
	}
	return strings.Join(res, ", ")
}

func parseKind(s string) (occur.Kind, error) {
	k, ok := occur.ParseKind(strings.ToLower(s))
	if !ok {
		return "", usageError(
			"Unknown entity kind <em>%s</em>, use one of: %s", s, kindNames(),
		)
	}
	return k, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, usageError("Cannot read date <em>%s</em>", s)
}

// historyFilter converts flags to a filter.
func historyFilter(flags historyFlags) (occur.HistoryFilter, error) {
	var res occur.HistoryFilter
	var err error

	switch op := occur.Operation(strings.ToLower(flags.operation)); op {
	case "", occur.OpInsert, occur.OpUpdate:
		res.Operation = op
	default:
		return res, usageError(
			"Unknown operation <em>%s</em>, use insert or update", flags.operation,
		)
	}

	if res.From, err = parseDate(flags.from); err != nil {
		return res, err
	}
	if res.To, err = parseDate(flags.to); err != nil {
		return res, err
	}
	if !res.From.IsZero() && !res.To.IsZero() && !res.From.Before(res.To) {
		return res, usageError("<em>--from</em> must be earlier than <em>--to</em>")
	}

	res.User = flags.user
	res.EntityID = flags.entity
	res.Limit = flags.limit
	return res, nil
}

func runHistory(w io.Writer, kindStr string, flags historyFlags) error {
	kind, err := parseKind(kindStr)
	if err != nil {
		return err
	}
	f, err := historyFilter(flags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.auditor.History(ctx, svc.op.Pool(), kind, f)
	if err != nil {
		return err
	}

	if flags.json {
		return printJSON(w, res)
	}
	for _, v := range res {
		fmt.Fprintln(w, format.HistoryLine(v))
	}
	return nil
}
