// Package service implements the domain lifecycle state machine.
//
// Transitions are an explicit table: event -> (source states, guard, effect,
// target). Legality is checked before anything else, so an illegal event
// fails fast with zero registry calls. Effects run before the local row is
// committed; the registry call and the local save are two steps of a saga,
// not one transaction, and Reconcile resolves ambiguous outcomes from the
// registry's authoritative view.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"registrar/internal/domains/cache"
	"registrar/internal/domains/metrics"
	"registrar/internal/domains/models"
	"registrar/internal/epp"
	"registrar/pkg/derrors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Event names a domain lifecycle transition.
type Event string

const (
	// EventProvision takes an approved domain from unknown to dns needed,
	// creating the registry object and its default contacts.
	EventProvision Event = "provision"
	// EventAddMissingContacts backfills absent default contact roles for a
	// domain still in unknown.
	EventAddMissingContacts Event = "add_missing_contacts"
	// EventReady marks a delegated domain ready. The nameserver check is
	// the caller's responsibility.
	EventReady Event = "ready"
	// EventDNSNeeded returns a ready domain to dns needed after its
	// delegation breaks.
	EventDNSNeeded Event = "dns_needed"
	// EventPlaceClientHold suspends resolution. Idempotent from ready or
	// on hold, to tolerate retries after ambiguous registry responses.
	EventPlaceClientHold Event = "place_client_hold"
	// EventRevertClientHold resumes resolution. Idempotent likewise.
	EventRevertClientHold Event = "revert_client_hold"
	// EventDelete removes the domain at the registry and finalizes the
	// local row. Terminal.
	EventDelete Event = "delete"
)

// TransitionOpts carries per-event options.
type TransitionOpts struct {
	// IgnoreEPP skips the registry call for hold transitions, used when
	// the registry is known to already reflect the target state.
	IgnoreEPP bool
}

type transition struct {
	sources []models.State
	target  models.State
	guard   func(ctx context.Context, s *Service, d *models.Domain) error
	effect  func(ctx context.Context, s *Service, d *models.Domain, opts TransitionOpts) error
	apply   func(d *models.Domain, now time.Time)
}

func (t transition) allows(state models.State) bool {
	for _, src := range t.sources {
		if src == state {
			return true
		}
	}
	return false
}

var transitions = map[Event]transition{
	EventProvision: {
		sources: []models.State{models.StateUnknown},
		target:  models.StateDNSNeeded,
		effect: func(ctx context.Context, s *Service, d *models.Domain, _ TransitionOpts) error {
			return s.provisionAtRegistry(ctx, d)
		},
	},
	EventAddMissingContacts: {
		sources: []models.State{models.StateUnknown},
		target:  models.StateDNSNeeded,
		guard: func(ctx context.Context, s *Service, d *models.Domain) error {
			existing, err := s.contacts.ListByDomain(ctx, d.ID)
			if err != nil {
				return err
			}
			missing := missingDefaultTypes(existing)
			if len(missing) == 0 {
				return derrors.New(derrors.CodeInvariantViolation,
					"all default contacts already present")
			}
			return nil
		},
		effect: func(ctx context.Context, s *Service, d *models.Domain, _ TransitionOpts) error {
			return s.createMissingDefaultContacts(ctx, d)
		},
	},
	EventReady: {
		sources: []models.State{models.StateDNSNeeded, models.StateReady},
		target:  models.StateReady,
		apply: func(d *models.Domain, now time.Time) {
			d.State = models.StateReady
			d.MarkFirstReady(now)
		},
	},
	EventDNSNeeded: {
		sources: []models.State{models.StateReady},
		target:  models.StateDNSNeeded,
	},
	EventPlaceClientHold: {
		sources: []models.State{models.StateReady, models.StateOnHold},
		target:  models.StateOnHold,
		effect: func(ctx context.Context, s *Service, d *models.Domain, opts TransitionOpts) error {
			if opts.IgnoreEPP {
				return nil
			}
			return s.registry.PlaceClientHold(ctx, d.Name)
		},
	},
	EventRevertClientHold: {
		sources: []models.State{models.StateReady, models.StateOnHold},
		target:  models.StateReady,
		effect: func(ctx context.Context, s *Service, d *models.Domain, opts TransitionOpts) error {
			if opts.IgnoreEPP {
				return nil
			}
			return s.registry.RemoveClientHold(ctx, d.Name)
		},
	},
	EventDelete: {
		sources: []models.State{models.StateOnHold, models.StateDNSNeeded},
		target:  models.StateDeleted,
		effect: func(ctx context.Context, s *Service, d *models.Domain, _ TransitionOpts) error {
			if err := s.registry.DeleteDomain(ctx, d.Name); err != nil {
				// Deletion must never silently appear to succeed.
				var re *epp.RegistryError
				if errors.As(err, &re) {
					s.logger.Error("registry refused domain deletion",
						"domain", d.Name, "code", re.Code, "note", re.Note)
				} else {
					s.logger.Error("domain deletion failed", "domain", d.Name, "error", err)
				}
				return err
			}
			s.cache.Invalidate(ctx, d.Name)
			return nil
		},
		apply: func(d *models.Domain, now time.Time) {
			d.MarkDeleted(now)
		},
	},
}

// Service drives domains through their lifecycle against the registry.
type Service struct {
	domains  DomainStore
	contacts ContactStore
	registry RegistryClient
	cache    cache.Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// New constructs the domain lifecycle service.
func New(domains DomainStore, contacts ContactStore, registry RegistryClient, opts ...Option) (*Service, error) {
	if domains == nil {
		return nil, errors.New("domain store is required")
	}
	if contacts == nil {
		return nil, errors.New("contact store is required")
	}
	if registry == nil {
		return nil, errors.New("registry client is required")
	}
	s := &Service{
		domains:  domains,
		contacts: contacts,
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cache == nil {
		s.cache = (*cache.Redis)(nil)
	}
	return s, nil
}

// CreateDomain persists a new domain row in the unknown state. Request
// approval is the only caller; there is no other path to a Domain.
func (s *Service) CreateDomain(ctx context.Context, name string) (*models.Domain, error) {
	d, err := models.NewDomain(newDomainID(), name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.domains.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, derrors.Newf(derrors.CodeConflict, "domain %s already exists", d.Name)
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create domain")
	}
	return d, nil
}

// Get returns a domain by name.
func (s *Service) Get(ctx context.Context, name string) (*models.Domain, error) {
	d, err := s.domains.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.Newf(derrors.CodeNotFound, "domain %s not found", name)
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load domain")
	}
	return d, nil
}

// Transition runs one lifecycle event against a domain.
//
// Order of operations: load, legality check (fail fast, zero side effects),
// guard, registry effect, then the local commit under the store's row lock.
// The commit re-checks legality so two racing transitions cannot both apply
// against stale state; the loser gets TransitionNotAllowedError.
func (s *Service) Transition(ctx context.Context, name string, event Event, opts TransitionOpts) (*models.Domain, error) {
	t, ok := transitions[event]
	if !ok {
		return nil, derrors.Newf(derrors.CodeBadRequest, "unknown lifecycle event %q", event)
	}

	d, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	stateBefore := d.State
	if !t.allows(stateBefore) {
		s.metrics.ObserveTransitionFailure(string(event))
		return nil, &TransitionNotAllowedError{Event: event, From: stateBefore}
	}

	if t.guard != nil {
		if err := t.guard(ctx, s, d); err != nil {
			s.metrics.ObserveTransitionFailure(string(event))
			return nil, err
		}
	}

	if t.effect != nil {
		if err := t.effect(ctx, s, d, opts); err != nil {
			s.metrics.ObserveTransitionFailure(string(event))
			s.logger.Error("domain transition effect failed",
				"domain", name, "event", event,
				"state_before", stateBefore, "error", err)
			return nil, err
		}
	}

	updated, err := s.domains.Execute(ctx, name,
		func(cur *models.Domain) error {
			if !t.allows(cur.State) {
				return &TransitionNotAllowedError{Event: event, From: cur.State}
			}
			return nil
		},
		func(cur *models.Domain) {
			if t.apply != nil {
				t.apply(cur, requestcontext.Now(ctx))
				return
			}
			cur.State = t.target
		})
	if err != nil {
		s.metrics.ObserveTransitionFailure(string(event))
		return nil, err
	}

	s.metrics.ObserveTransition(string(event))
	s.logger.Info("domain transition",
		"domain", name, "event", event,
		"state_before", stateBefore, "state_after", updated.State)
	return updated, nil
}

// Available reports whether the registry would let the name be registered.
// The availability answer is cached briefly; every miss is a live
// CheckDomain, and the registry's answer is returned as-is.
func (s *Service) Available(ctx context.Context, name string) (bool, error) {
	if err := models.ValidateDomainName(name); err != nil {
		return false, err
	}

	if available, ok := s.cache.GetAvailability(ctx, name); ok {
		s.metrics.ObserveAvailabilityCacheHit()
		return available, nil
	}

	available, err := s.registry.IsDomainAvailable(ctx, name)
	if err != nil {
		s.metrics.ObserveAvailabilityCheck("error")
		return false, err
	}

	s.cache.SetAvailability(ctx, name, available)
	if available {
		s.metrics.ObserveAvailabilityCheck("available")
	} else {
		s.metrics.ObserveAvailabilityCheck("unavailable")
	}
	return available, nil
}

// Renew extends the registration and records the registry-confirmed
// expiration date; the local value is never computed.
func (s *Service) Renew(ctx context.Context, name string, years int) (*models.Domain, error) {
	d, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if d.ExpirationDate == nil {
		return nil, derrors.Newf(derrors.CodeInvariantViolation,
			"domain %s has no expiration date to renew from", name)
	}

	newExp, err := s.registry.RenewDomain(ctx, name, *d.ExpirationDate, years)
	if err != nil {
		return nil, err
	}

	return s.domains.Execute(ctx, name,
		func(*models.Domain) error { return nil },
		func(cur *models.Domain) {
			exp := newExp
			cur.ExpirationDate = &exp
		})
}

// Reconcile refreshes the local projection from the registry's
// authoritative view, for use after an ambiguous failure (timeout with
// unknown registry-side outcome). Connection errors propagate; they say
// nothing about the domain.
func (s *Service) Reconcile(ctx context.Context, name string) (*models.Domain, error) {
	d, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if d.State == models.StateDeleted {
		return d, nil
	}

	exists, err := s.registry.DomainExists(ctx, name)
	if err != nil {
		return nil, err
	}

	if !exists {
		if d.State == models.StateUnknown {
			// Never provisioned; nothing to reconcile.
			return d, nil
		}
		s.logger.Warn("registry no longer knows domain; finalizing local deletion", "domain", name)
		s.cache.Invalidate(ctx, name)
		return s.domains.Execute(ctx, name,
			func(*models.Domain) error { return nil },
			func(cur *models.Domain) { cur.MarkDeleted(requestcontext.Now(ctx)) })
	}

	info, err := s.registry.InfoDomain(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.domains.Execute(ctx, name,
		func(*models.Domain) error { return nil },
		func(cur *models.Domain) {
			if info.ExpirationDate != nil {
				exp := *info.ExpirationDate
				cur.ExpirationDate = &exp
			}
			switch {
			case info.HasStatus(epp.StatusPendingDelete):
				cur.MarkDeleted(requestcontext.Now(ctx))
			case info.HasStatus(epp.StatusClientHold) && cur.State == models.StateReady:
				cur.State = models.StateOnHold
			case !info.HasStatus(epp.StatusClientHold) && cur.State == models.StateOnHold:
				cur.State = models.StateReady
			}
		})
}

// DeleteLocal removes the domain row entirely. Only the request workflow
// uses this, when approval is reversed before any registry object exists.
func (s *Service) DeleteLocal(ctx context.Context, d *models.Domain) error {
	if err := s.contacts.DeleteByDomain(ctx, d.ID); err != nil {
		return err
	}
	return s.domains.Delete(ctx, d.ID)
}
