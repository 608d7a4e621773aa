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

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnocc/internal/iotaxa"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/spf13/cobra"
)

// getTaxaCmd returns the taxa command with its subcommands.
func getTaxaCmd() *cobra.Command {
	taxaCmd := &cobra.Command{
		Use:   "taxa",
		Short: "Maintain the reference list of taxa",
		Long: `Taxa maintains the list of taxa that occurrences can name.

Submissions cannot add taxa, they must be imported first.`,
	}

	importCmd := &cobra.Command{
		Use:   "import FILE.yaml",
		Short: "Add taxa and ecotypes from a YAML file",
		Long: `Import adds taxa and their ecotypes in one transaction.
Taxa with a known scientific name are not added again, their new
ecotypes are.

Examples:
  gnocc taxa import fishes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runTaxaImport(args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	var jobs int
	reparseCmd := &cobra.Command{
		Use:   "reparse",
		Short: "Recompute canonical forms of scientific names",
		Long: `Reparse parses all scientific names again and stores their
canonical forms. Run it after updating gnocc to get parser improvements.

Examples:
  gnocc taxa reparse
  gnocc taxa reparse --jobs 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runTaxaReparse(jobs)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	reparseCmd.Flags().IntVarP(&jobs, "jobs", "j", 4,
		"number of concurrent parsers")

	taxaCmd.AddCommand(importCmd, reparseCmd)
	return taxaCmd
}

func runTaxaImport(path string) error {
	taxa, err := iotaxa.Read(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	tm := iotaxa.New(svc.op, svc.norm, parserJobs)
	var n int
	err = svc.op.WithSession(ctx, cfg.Identity(), func(s db.Session) error {
		n, err = tm.Import(ctx, s, taxa)
		return err
	})
	if err != nil {
		return err
	}

	gn.Info("Imported <em>%s</em> new taxa of %s",
		humanize.Comma(int64(n)), humanize.Comma(int64(len(taxa))))
	return nil
}

func runTaxaReparse(jobs int) error {
	ctx := context.Background()
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	tm := iotaxa.New(svc.op, svc.norm, jobs)
	n, err := tm.Reparse(ctx)
	if err != nil {
		return err
	}

	gn.Info("Updated canonical forms of <em>%s</em> taxa",
		humanize.Comma(int64(n)))
	return nil
}
