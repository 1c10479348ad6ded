package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptpik/amanat/internal/application/port"
)

// ErrInvalidArgument is returned for malformed caller input (unknown
// disposition kind, empty instruction, bad pagination). It is distinct from
// the workflow taxonomy: the request never reached a transition decision.
var ErrInvalidArgument = errors.New("invalid argument")

// Logger is the minimal logging dependency services require
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// storeErr maps a deadline-exceeded store failure onto the Timeout kind so
// callers can tell a slow store from a failed one. Other errors pass through.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", port.ErrTimeout, err)
	}
	return err
}
