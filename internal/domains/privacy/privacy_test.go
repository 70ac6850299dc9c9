package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"registrar/internal/domains/models"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name    string
		contact *models.PublicContact
		want    Settings
	}{
		{
			name:    "registrant discloses name and org",
			contact: &models.PublicContact{Type: models.ContactRegistrant, Email: "clerk@example.gov"},
			want:    Settings{Name: true, Org: true},
		},
		{
			name:    "security with custom email discloses email only",
			contact: &models.PublicContact{Type: models.ContactSecurity, Email: "soc@example.gov"},
			want:    Settings{Email: true},
		},
		{
			name:    "security on registry default discloses nothing",
			contact: &models.PublicContact{Type: models.ContactSecurity, Email: "help@get.gov"},
			want:    Settings{},
		},
		{
			name:    "administrative discloses nothing",
			contact: &models.PublicContact{Type: models.ContactAdministrative, Email: "admin@example.gov"},
			want:    Settings{},
		},
		{
			name:    "technical discloses nothing",
			contact: &models.PublicContact{Type: models.ContactTechnical, Email: "it@example.gov"},
			want:    Settings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.contact))
		})
	}
}

// The policy is deterministic: applying it twice to the same contact yields
// identical flags.
func TestForIdempotent(t *testing.T) {
	contact := &models.PublicContact{Type: models.ContactSecurity, Email: "soc@example.gov"}
	first := For(contact)
	second := For(contact)
	assert.Equal(t, first, second)
}
