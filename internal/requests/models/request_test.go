package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
)

func TestNewDomainRequest(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	requester := id.UserID(uuid.New())

	t.Run("normalizes the requested name", func(t *testing.T) {
		r, err := NewDomainRequest(id.RequestID{}, requester, "  Springfield.GOV ", "City of Springfield", now)
		require.NoError(t, err)
		assert.Equal(t, "springfield.gov", r.RequestedDomain)
		assert.Equal(t, StatusStarted, r.Status)
		assert.False(t, r.ID.IsZero(), "id is generated when absent")
	})

	t.Run("rejects a non-gov name", func(t *testing.T) {
		_, err := NewDomainRequest(id.RequestID{}, requester, "springfield.com", "City of Springfield", now)
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("requires a requester", func(t *testing.T) {
		_, err := NewDomainRequest(id.RequestID{}, id.UserID{}, "springfield.gov", "City of Springfield", now)
		require.Error(t, err)
	})

	t.Run("requires an organization", func(t *testing.T) {
		_, err := NewDomainRequest(id.RequestID{}, requester, "springfield.gov", "", now)
		require.Error(t, err)
	})
}

func TestMarkSubmittedTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	r, err := NewDomainRequest(id.RequestID{}, id.UserID(uuid.New()), "stamps.gov", "Org", now)
	require.NoError(t, err)

	r.MarkSubmitted(now)
	require.NotNil(t, r.FirstSubmitted)
	assert.Equal(t, now, *r.FirstSubmitted)

	later := now.Add(72 * time.Hour)
	r.Status = StatusActionNeeded
	r.ActionNeededReason = "purpose statement missing"
	r.MarkSubmitted(later)
	assert.Equal(t, now, *r.FirstSubmitted, "first submission never moves")
	assert.Equal(t, later, *r.LastSubmitted, "last submission moves every time")
	assert.Empty(t, r.ActionNeededReason, "resubmission clears the review reason")
}
