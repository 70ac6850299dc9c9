package service

import (
	"errors"
	"fmt"

	"registrar/internal/requests/models"
)

// TransitionNotAllowedError is raised when a workflow event is attempted
// from a status outside its declared source set, before any side effect.
type TransitionNotAllowedError struct {
	Event Event
	From  models.Status
}

func (e *TransitionNotAllowedError) Error() string {
	return fmt.Sprintf("request transition %q not allowed from status %q", e.Event, e.From)
}

// IsTransitionNotAllowed reports whether err is an illegal-transition error.
func IsTransitionNotAllowed(err error) bool {
	var te *TransitionNotAllowedError
	return errors.As(err, &te)
}

// DomainInUseError is raised when approval targets a name that already
// exists as a domain. It is raised before any mutation: the request status,
// the domain table, and the registry are all untouched.
type DomainInUseError struct {
	Domain string
}

func (e *DomainInUseError) Error() string {
	return fmt.Sprintf("cannot approve: domain %s is already in use", e.Domain)
}

// IsDomainInUse reports whether err is an approval-into-existing-domain
// error.
func IsDomainInUse(err error) bool {
	var de *DomainInUseError
	return errors.As(err, &de)
}
