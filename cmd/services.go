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

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/internal/ioaudit"
	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/internal/iolookup"
	"github.com/gnames/gnocc/internal/iospatial"
	"github.com/gnames/gnocc/internal/iowriter"
	"github.com/gnames/gnocc/pkg/canonical"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/gnocc"
)

// parserJobs is the number of name parsers kept for taxon resolution.
const parserJobs = 2

// services bundles components used by commands that read or write
// entities.
type services struct {
	op      db.Operator
	norm    canonical.Normalizer
	lookup  gnocc.Lookup
	matcher gnocc.Matcher
	auditor gnocc.Auditor
	writer  gnocc.Writer
}

func (s *services) Close() {
	if s.norm != nil {
		s.norm.Close()
	}
	s.op.Close()
}

// connect opens the database and reports where it is.
func connect(ctx context.Context) (db.Operator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// newServices connects to a database that has a schema already.
func newServices(ctx context.Context) (*services, error) {
	op, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		op.Close()
		return nil, err
	}
	if !hasTables {
		op.Close()
		return nil, &gn.Error{
			Code: errcode.DBEmptyDatabaseError,
			Msg: `<err>Database appears to be empty.</err>
   Run <em>'gnocc create'</em> first to initialize the schema.`,
			Err: errors.New("database has no tables"),
		}
	}

	res := &services{
		op:      op,
		norm:    canonical.New(parserJobs),
		matcher: iospatial.New(cfg),
		auditor: ioaudit.New(),
	}
	res.lookup = iolookup.New(cfg, res.norm)
	res.writer = iowriter.New(cfg, res.lookup, res.matcher, res.auditor)
	return res, nil
}
