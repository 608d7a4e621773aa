package iosubmit

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
)

// SubmitFileError is returned for submission files that cannot be
// parsed or contain no submissions.
func SubmitFileError(path string, err error) error {
	msg := "Cannot use submission file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SubmitFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: bad submission file %s: %w", fn.Name(), path, err),
	}
}
