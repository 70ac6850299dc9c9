package service

import (
	"context"
	"strings"

	"registrar/internal/domains/models"
	"registrar/internal/epp"
	"registrar/pkg/derrors"
)

// Nameservers returns the registry's current view of the domain's
// delegation.
func (s *Service) Nameservers(ctx context.Context, domainName string) ([]models.Host, error) {
	wire, err := s.registry.FetchHosts(ctx, domainName)
	if err != nil {
		return nil, err
	}
	hosts := make([]models.Host, 0, len(wire))
	for _, h := range wire {
		hosts = append(hosts, models.Host{Name: h.Name, IPs: h.IPs})
	}
	return hosts, nil
}

// SetNameservers replaces the domain's delegation with the given host set.
//
// Glue hosts are created as registry host objects before the domain update
// references them; hosts dropped from the set are detached first and their
// glue objects deleted after, so the registry never sees a dangling
// reference. An already-exists on host creation is fine, it means a prior
// attempt got that far.
func (s *Service) SetNameservers(ctx context.Context, domainName string, hosts []models.Host) error {
	d, err := s.Get(ctx, domainName)
	if err != nil {
		return err
	}
	if !d.IsActive() {
		return derrors.Newf(derrors.CodeInvariantViolation,
			"domain %s is deleted and cannot be delegated", domainName)
	}

	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if err := h.Validate(domainName); err != nil {
			return err
		}
		if seen[normalizeHostName(h.Name)] {
			return derrors.Newf(derrors.CodeInvalidInput, "duplicate nameserver %s", h.Name)
		}
		seen[normalizeHostName(h.Name)] = true
	}

	current, err := s.registry.FetchHosts(ctx, domainName)
	if err != nil {
		return err
	}
	currentNames := make(map[string]bool, len(current))
	for _, h := range current {
		currentNames[normalizeHostName(h.Name)] = true
	}

	var add, remove []string
	for _, h := range hosts {
		if !currentNames[normalizeHostName(h.Name)] {
			add = append(add, h.Name)
		}
	}
	for _, h := range current {
		if !seen[normalizeHostName(h.Name)] {
			remove = append(remove, h.Name)
		}
	}

	for _, h := range hosts {
		if !h.IsGlue(domainName) {
			continue
		}
		if _, err := s.registry.CreateHost(ctx, epp.Host{Name: h.Name, IPs: h.IPs}); err != nil {
			return err
		}
	}

	if _, err := s.registry.UpdateDomainHosts(ctx, domainName, add, remove); err != nil {
		return err
	}

	// Orphaned glue objects block a later domain delete; clean them up now.
	// Failures here are logged, not fatal: the delegation already changed.
	removeHost := models.Host{}
	for _, name := range remove {
		removeHost.Name = name
		if !removeHost.IsGlue(domainName) {
			continue
		}
		if err := s.registry.DeleteHost(ctx, name); err != nil {
			s.logger.Warn("failed to delete detached glue host",
				"domain", domainName, "host", name, "error", err)
		}
	}
	return nil
}

func normalizeHostName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}
