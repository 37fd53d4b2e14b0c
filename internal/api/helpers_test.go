package api

import "github.com/arc-self/bakery/internal/apperr"

func conflictErr(format string, args ...any) error {
	return apperr.Conflict(format, args...)
}
