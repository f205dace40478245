package subr

import (
	"github.com/go-cff/subr/assemble"
	"github.com/go-cff/subr/token"
)

// IsMalformedInput reports whether err indicates a de-subroutinized-
// input contract violation (§7 MalformedInput): a forbidden operator,
// a non-final endchar, or an unrecognized token kind.
func IsMalformedInput(err error) bool {
	_, ok := err.(*token.MalformedError)
	return ok
}

// IsInvariantViolation reports whether err indicates a failed post-
// assignment consistency check (§7 InvariantViolation) — a bug in
// assignment or depth control, not a condition callers can work
// around.
func IsInvariantViolation(err error) bool {
	_, ok := err.(*assemble.InvariantViolationError)
	return ok
}
