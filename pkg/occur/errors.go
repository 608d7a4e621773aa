package occur

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
)

// ValidationError is returned when mandatory fields are missing or
// malformed. Nothing is written to the store in this case.
func ValidationError(problems []string) error {
	msg := "Submission is not valid:\n<em>%s</em>"
	details := strings.Join(problems, "\n")
	vars := []any{details}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: validation failed: %s",
			fn.Name(), strings.Join(problems, "; ")),
	}
}
