package service

import (
	"errors"
	"fmt"

	"registrar/internal/domains/models"
)

// TransitionNotAllowedError is raised when a lifecycle event is attempted
// from a state outside its declared source set. It is raised before any side
// effect: no registry command is issued and nothing is persisted.
type TransitionNotAllowedError struct {
	Event Event
	From  models.State
}

func (e *TransitionNotAllowedError) Error() string {
	return fmt.Sprintf("transition %q not allowed from state %q", e.Event, e.From)
}

// IsTransitionNotAllowed reports whether err is an illegal-transition error.
func IsTransitionNotAllowed(err error) bool {
	var te *TransitionNotAllowedError
	return errors.As(err, &te)
}
