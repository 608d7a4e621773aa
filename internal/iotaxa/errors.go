package iotaxa

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
)

// TaxaFileError is returned when a taxa file cannot be parsed.
func TaxaFileError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TaxaFileError,
		Msg:  "Cannot use taxa file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: bad taxa file %s: %w", fn.Name(), path, err),
	}
}

// ReparseError is returned when canonical forms cannot be recomputed.
func ReparseError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReparseError,
		Msg:  "Cannot update canonical forms of taxa",
		Err:  fmt.Errorf("from %s: reparse failed: %w", fn.Name(), err),
	}
}
