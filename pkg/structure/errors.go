package structure

import (
	"errors"
	"fmt"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// ParseError reports an atom row whose trailing model-number field is not a
// positive integer. It unwraps to domain.ErrParse.
type ParseError struct {
	Source string
	Line   int
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s (%q)", domain.ErrParse, e.Reason, e.Token)
	}
	return fmt.Sprintf("%s: %s: %s (%q)", domain.ErrParse, loc, e.Reason, e.Token)
}

func (e *ParseError) Unwrap() error { return domain.ErrParse }

func asParseError(err error, target **ParseError) bool {
	return errors.As(err, target)
}
