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

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/format"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/spf13/cobra"
)

// getShowCmd returns the show command.
func getShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show KIND ID",
		Short: "Print a stored entity",
		Long: fmt.Sprintf(`Show prints one stored entity as JSON. Datasets and
projects are preceded by a summary of their content.

Kinds: %s

Examples:
  gnocc show dataset 5c1b...
  gnocc show project 12`, kindNames()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runShow(cmd.OutOrStdout(), args[0], args[1])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return showCmd
}

func runShow(w io.Writer, kindStr, id string) error {
	kind, err := parseKind(kindStr)
	if err != nil {
		return err
	}

	var num int64
	if kind == occur.KindProject || kind == occur.KindReference {
		if num, err = parseID(id); err != nil {
			return err
		}
	}

	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	l, q := svc.lookup, svc.op.Pool()

	var res any
	switch kind {
	case occur.KindDataset:
		d, err := l.Dataset(ctx, q, id)
		if err != nil {
			return err
		}
		c, err := l.Counts(ctx, q, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, format.DatasetSummary(d, c))
		res = d
	case occur.KindProject:
		p, err := l.Project(ctx, q, num)
		if err != nil {
			return err
		}
		c, err := l.ProjectCounts(ctx, q, num)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, format.ProjectSummary(p, c))
		res = p
	case occur.KindReference:
		res, err = l.Reference(ctx, q, num)
	case occur.KindLocation:
		res, err = l.Location(ctx, q, id)
	case occur.KindEvent:
		res, err = l.Event(ctx, q, id)
	case occur.KindOccurrence:
		res, err = l.Occurrence(ctx, q, id)
	}
	if err != nil {
		return err
	}
	return printJSON(w, res)
}
