package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

const (
	subjectID  = "pat-1"
	delegateID = "pharm-1"
)

func TestGiveConsentRejectsBadDelegate(t *testing.T) {
	f := newFixture(t)

	_, err := f.consents.GiveConsent(f.ctx, subjectID, "", 5)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidDelegate, apperrors.CodeOf(err))

	_, err = f.consents.GiveConsent(f.ctx, subjectID, subjectID, 5)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidDelegate, apperrors.CodeOf(err))
}

func TestGiveConsentRejectsNonPositiveDuration(t *testing.T) {
	f := newFixture(t)

	for _, days := range []int{0, -3} {
		_, err := f.consents.GiveConsent(f.ctx, subjectID, delegateID, days)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidDuration, apperrors.CodeOf(err))
	}
}

func TestConsentExpiresLazily(t *testing.T) {
	f := newFixture(t)

	grant, err := f.consents.GiveConsent(f.ctx, subjectID, delegateID, 2)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(48*time.Hour), grant.ExpiresAt)

	ok, err := f.consents.CheckConsent(f.ctx, subjectID, delegateID)
	require.NoError(t, err)
	assert.True(t, ok)

	// expiry is exclusive: at exactly the boundary the grant no longer holds
	f.clock.Advance(48 * time.Hour)
	ok, err = f.consents.CheckConsent(f.ctx, subjectID, delegateID)
	require.NoError(t, err)
	assert.False(t, ok, "lapsed grant must read as false with no revoke call")

	// the active flag survives expiry, so an explicit revoke still works
	require.NoError(t, f.consents.RevokeConsent(f.ctx, subjectID, delegateID))
}

func TestRegrantOverwritesWindow(t *testing.T) {
	f := newFixture(t)

	_, err := f.consents.GiveConsent(f.ctx, subjectID, delegateID, 5)
	require.NoError(t, err)
	second, err := f.consents.GiveConsent(f.ctx, subjectID, delegateID, 1)
	require.NoError(t, err)

	// the second call replaced the window outright, it did not extend it
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), second.ExpiresAt)

	grants, err := f.consents.ListForSubject(f.ctx, subjectID)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	f.clock.Advance(2 * 24 * time.Hour)
	ok, err := f.consents.CheckConsent(f.ctx, subjectID, delegateID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokeConsent(t *testing.T) {
	f := newFixture(t)

	err := f.consents.RevokeConsent(f.ctx, subjectID, delegateID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoActiveConsent, apperrors.CodeOf(err))

	_, err = f.consents.GiveConsent(f.ctx, subjectID, delegateID, 5)
	require.NoError(t, err)
	require.NoError(t, f.consents.RevokeConsent(f.ctx, subjectID, delegateID))

	ok, err := f.consents.CheckConsent(f.ctx, subjectID, delegateID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.consents.RevokeConsent(f.ctx, subjectID, delegateID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoActiveConsent, apperrors.CodeOf(err))
}

func TestCheckConsentUnknownPairIsFalse(t *testing.T) {
	f := newFixture(t)

	ok, err := f.consents.CheckConsent(f.ctx, "nobody", "no-one")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegrantAfterRevokeStartsFresh(t *testing.T) {
	f := newFixture(t)

	_, err := f.consents.GiveConsent(f.ctx, subjectID, delegateID, 5)
	require.NoError(t, err)
	require.NoError(t, f.consents.RevokeConsent(f.ctx, subjectID, delegateID))

	_, err = f.consents.GiveConsent(f.ctx, subjectID, delegateID, 3)
	require.NoError(t, err)

	ok, err := f.consents.CheckConsent(f.ctx, subjectID, delegateID)
	require.NoError(t, err)
	assert.True(t, ok)
}
