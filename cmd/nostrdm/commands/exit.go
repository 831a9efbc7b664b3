package commands

import (
	"errors"

	"nostrdm/internal/domain"
)

// Exit codes for scripting. Anything that smells like bad input is 1;
// partial delivery or partially skipped batches are 2; a send or fetch
// where no destination worked is 3.
const (
	ExitOK        = 0
	ExitBadInput  = 1
	ExitPartial   = 2
	ExitAllFailed = 3
)

// ExitCode maps an Execute error onto the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errAllDeliveryFailed),
		errors.Is(err, domain.ErrAllRelaysFailed):
		return ExitAllFailed
	case errors.Is(err, errPartialDelivery),
		errors.Is(err, domain.ErrPartialFetch),
		errors.Is(err, domain.ErrRelayUnreachable):
		return ExitPartial
	default:
		// Bad keys, malformed JSON, usage errors.
		return ExitBadInput
	}
}
