package turnover

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEntryFinalized is returned when changing an entry of a finalized turnover.
	ErrEntryFinalized = errors.New("turnover entry is finalized")

	// ErrNothingToFinalize is returned when a team has no open entries.
	ErrNothingToFinalize = errors.New("no open turnover entries to finalize")

	// ErrCooldownActive matches every *CooldownError.
	ErrCooldownActive = errors.New("turnover finalize cooldown active")
)

// CooldownError reports how long a team must wait before finalizing again.
type CooldownError struct {
	LastFinalizedAt time.Time
	RetryAfter      time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: last finalized at %s, retry in %s",
		ErrCooldownActive, e.LastFinalizedAt.Format(time.RFC3339), e.RetryAfter.Round(time.Second))
}

// Is makes errors.Is(err, ErrCooldownActive) true.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}
