// Package agencies resolves federal agency names for request approval.
// A request approved without a federal agency gets the non-federal
// placeholder, never an empty value.
package agencies

import (
	"context"
	"sort"
	"strings"
	"sync"

	"registrar/pkg/platform/sentinel"
)

// NonFederalAgency is the default agency applied at approval time when the
// requester did not pick one.
const NonFederalAgency = "Non-Federal Agency"

// DefaultFederalAgencies seeds the directory when no external list is
// provided. A deployment can replace it with the full CISA-published list.
var DefaultFederalAgencies = []string{
	"Department of Agriculture",
	"Department of Commerce",
	"Department of Defense",
	"Department of Education",
	"Department of Energy",
	"Department of Health and Human Services",
	"Department of Homeland Security",
	"Department of Housing and Urban Development",
	"Department of Justice",
	"Department of Labor",
	"Department of State",
	"Department of Transportation",
	"Department of Veterans Affairs",
	"Department of the Interior",
	"Department of the Treasury",
	"Environmental Protection Agency",
	"General Services Administration",
	"National Aeronautics and Space Administration",
	"National Science Foundation",
	"Small Business Administration",
	"Social Security Administration",
}

// Directory looks up and defaults agency names.
type Directory interface {
	Resolve(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
}

// Static is an in-process agency directory seeded at startup. The agency
// list changes by act of Congress, not at runtime, so a static set with the
// non-federal placeholder is enough.
type Static struct {
	mu     sync.RWMutex
	byName map[string]string
}

func NewStatic(names []string) *Static {
	s := &Static{byName: make(map[string]string, len(names)+1)}
	s.byName[strings.ToLower(NonFederalAgency)] = NonFederalAgency
	for _, n := range names {
		s.byName[strings.ToLower(n)] = n
	}
	return s
}

// Resolve maps a user-entered agency name to its canonical form. An empty
// name resolves to the non-federal placeholder.
func (s *Static) Resolve(_ context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return NonFederalAgency, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	canonical, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return canonical, nil
}

func (s *Static) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.byName))
	for _, n := range s.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
